package engine

import "ggquiz-engine/internal/domain"

// EventType discriminates session events on the stream.
type EventType string

const (
	EventQuestion  EventType = "question"
	EventTick      EventType = "tick"
	EventAnswer    EventType = "answerResult"
	EventComputing EventType = "computing"
	EventResult    EventType = "result"
)

// Event is one session transition as seen by a consumer. Exactly one of the
// payload fields is set, matching Type.
type Event struct {
	Type      EventType
	Question  *QuestionView
	Remaining int
	Answer    *Answer
	Result    *domain.Result
}

// QuestionView is the player-facing projection of the active question.
// The correct option is deliberately absent.
type QuestionView struct {
	ID         int64  `json:"id"`
	Index      int    `json:"index"`
	Total      int    `json:"total"`
	Statement  string `json:"statement"`
	OptionA    string `json:"optionA"`
	OptionB    string `json:"optionB"`
	OptionC    string `json:"optionC"`
	OptionD    string `json:"optionD"`
	Difficulty int    `json:"difficulty"`
	Remaining  int    `json:"remaining"`
}

// Answer reports the evaluation of a locked pick, including the correct
// option for feedback highlighting.
type Answer struct {
	QuestionID    int64  `json:"questionId"`
	Selected      string `json:"selected,omitempty"`
	Correct       bool   `json:"correct"`
	CorrectOption string `json:"correctOption"`
}
