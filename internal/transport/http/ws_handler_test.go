package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ggquiz-engine/internal/auth"
	"ggquiz-engine/internal/domain"
	"ggquiz-engine/internal/engine"
	"ggquiz-engine/internal/infra/memory"
	"ggquiz-engine/internal/ranking"
	"github.com/gorilla/websocket"
)

func newGameServer(t *testing.T) *httptest.Server {
	t.Helper()
	questions := memory.NewStaticQuestions([]domain.Question{
		{ID: 1, Statement: "Which option is right?", OptionA: "no", OptionB: "yes", OptionC: "no", OptionD: "no", CorrectOption: "B", Difficulty: 4},
	}, []domain.Region{{ID: 7, Name: "EMEA"}})
	source := memory.NewQuestionCache(questions, time.Minute, 10)
	rankings := ranking.NewService(memory.NewRankingStore())
	authority := ranking.NewSubmitService(questions, rankings)

	handler := NewGameHandler(auth.Insecure{}, source, authority, engine.Config{
		QuestionSeconds: 20,
		AdvanceDelay:    0,
	})
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func dialGame(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, wantType string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		_ = conn.SetReadDeadline(deadline)
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read waiting for %q: %v", wantType, err)
		}
		if msg.Type == wantType {
			return msg.Payload
		}
		if msg.Type == "error" {
			t.Fatalf("unexpected error waiting for %q: %v", wantType, msg.Payload)
		}
	}
}

func TestWebSocketFullSession(t *testing.T) {
	server := newGameServer(t)
	conn := dialGame(t, server, "alice")

	start := map[string]any{"type": "start", "payload": map[string]any{"mode": "GLOBAL"}}
	if err := conn.WriteJSON(start); err != nil {
		t.Fatalf("write start: %v", err)
	}

	question := readUntil(t, conn, "question")
	if question["id"] != float64(1) {
		t.Fatalf("expected question 1, got %v", question["id"])
	}
	if _, ok := question["correctOption"]; ok {
		t.Fatalf("correct option must not be sent to the player")
	}

	pick := map[string]any{"type": "pick", "payload": map[string]any{"option": "B"}}
	if err := conn.WriteJSON(pick); err != nil {
		t.Fatalf("write pick: %v", err)
	}

	answer := readUntil(t, conn, "answerResult")
	if answer["correct"] != true {
		t.Fatalf("expected correct answer, got %v", answer)
	}

	result := readUntil(t, conn, "result")
	rating, ok := result["rating"].(float64)
	if !ok || rating <= 0 {
		t.Fatalf("expected positive rating, got %v", result)
	}
	if failed, ok := result["failed"].(bool); ok && failed {
		t.Fatalf("expected successful submission, got %v", result)
	}
}

func TestWebSocketWrongAnswerEndsSession(t *testing.T) {
	server := newGameServer(t)
	conn := dialGame(t, server, "bob")

	if err := conn.WriteJSON(map[string]any{"type": "start", "payload": map[string]any{"mode": "GLOBAL"}}); err != nil {
		t.Fatalf("write start: %v", err)
	}
	readUntil(t, conn, "question")

	if err := conn.WriteJSON(map[string]any{"type": "pick", "payload": map[string]any{"option": "A"}}); err != nil {
		t.Fatalf("write pick: %v", err)
	}

	answer := readUntil(t, conn, "answerResult")
	if answer["correct"] != false {
		t.Fatalf("expected incorrect answer, got %v", answer)
	}
	if answer["correctOption"] != "B" {
		t.Fatalf("expected correct option feedback, got %v", answer)
	}

	result := readUntil(t, conn, "result")
	if result["rating"] != float64(0) {
		t.Fatalf("missing the only question should score 0, got %v", result)
	}
}

func TestWebSocketCanStartFreshSessionAfterResult(t *testing.T) {
	server := newGameServer(t)
	conn := dialGame(t, server, "carol")

	for attempt := 0; attempt < 2; attempt++ {
		if err := conn.WriteJSON(map[string]any{"type": "start", "payload": map[string]any{"mode": "GLOBAL"}}); err != nil {
			t.Fatalf("write start: %v", err)
		}
		readUntil(t, conn, "question")
		if err := conn.WriteJSON(map[string]any{"type": "pick", "payload": map[string]any{"option": "B"}}); err != nil {
			t.Fatalf("write pick: %v", err)
		}
		readUntil(t, conn, "result")
	}
}

func TestWebSocketRejectsMissingToken(t *testing.T) {
	server := newGameServer(t)
	u := "ws" + server.URL[len("http"):] + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected dial to fail without a token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %+v", resp)
	}
}

func TestWebSocketEmptyRegionReportsNoQuestions(t *testing.T) {
	server := newGameServer(t)
	conn := dialGame(t, server, "dave")

	start := map[string]any{"type": "start", "payload": map[string]any{"mode": "REGIONAL", "regionId": 7}}
	if err := conn.WriteJSON(start); err != nil {
		t.Fatalf("write start: %v", err)
	}

	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "error" || msg.Payload["message"] != domain.ErrNoQuestions.Error() {
		t.Fatalf("expected no-questions error, got %+v", msg)
	}
}
