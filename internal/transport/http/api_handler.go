package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"ggquiz-engine/internal/auth"
	"ggquiz-engine/internal/domain"
	"ggquiz-engine/internal/ranking"
)

// RegionSource lists the selectable regions for REGIONAL sessions.
type RegionSource interface {
	ListRegions(ctx context.Context) ([]domain.Region, error)
}

// APIHandler serves the read-side JSON endpoints: leaderboards, the caller's
// own position, and the region list.
type APIHandler struct {
	rankings   *ranking.Service
	regions    RegionSource
	authorizer auth.Authorizer
}

func NewAPIHandler(rankings *ranking.Service, regions RegionSource, authorizer auth.Authorizer) *APIHandler {
	return &APIHandler{rankings: rankings, regions: regions, authorizer: authorizer}
}

// Register attaches the handler's routes to mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/ranking", h.Ranking)
	mux.HandleFunc("/api/ranking/me", h.MyRanking)
	mux.HandleFunc("/api/regions", h.Regions)
}

type positionResponse struct {
	domain.RankingEntry
	Position int `json:"position"`
}

// Ranking returns one leaderboard page:
// GET /api/ranking?period=ALLTIME&regionId=0&page=0&size=10
func (h *APIHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	period := domain.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = domain.PeriodAllTime
	}
	regionID, _ := strconv.ParseInt(r.URL.Query().Get("regionId"), 10, 64)
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))

	entries, err := h.rankings.Top(r.Context(), period, regionID, page, size)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if entries == nil {
		entries = []domain.RankingEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// MyRanking returns the caller's entry and 1-based position:
// GET /api/ranking/me?period=DAILY&regionId=0 with a bearer token.
func (h *APIHandler) MyRanking(w http.ResponseWriter, r *http.Request) {
	playerID, err := h.authorizer.PlayerID(bearerToken(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	period := domain.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = domain.PeriodAllTime
	}
	regionID, _ := strconv.ParseInt(r.URL.Query().Get("regionId"), 10, 64)

	entry, position, err := h.rankings.Position(r.Context(), playerID, period, regionID)
	if errors.Is(err, domain.ErrPlayerNotRanked) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, positionResponse{RankingEntry: entry, Position: position})
}

// Regions lists the available regions: GET /api/regions
func (h *APIHandler) Regions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.regions.ListRegions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load regions")
		log.Printf("list regions: %v", err)
		return
	}
	if regions == nil {
		regions = []domain.Region{}
	}
	writeJSON(w, http.StatusOK, regions)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorPayload{Message: message})
}
