package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Auth struct {
		// JWTSecret enables HS256 token verification. Empty falls back to the
		// insecure dev authorizer (token = player id).
		JWTSecret string `yaml:"jwtSecret"`
	} `yaml:"auth"`
	Quiz struct {
		QuestionSeconds int    `yaml:"questionSeconds"`
		AdvanceDelay    string `yaml:"advanceDelay"`
		BatchSize       int    `yaml:"batchSize"`
		PoolTTL         string `yaml:"poolTTL"`
	} `yaml:"quiz"`
	Ranking struct {
		WindowTTL string `yaml:"windowTTL"`
	} `yaml:"ranking"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
