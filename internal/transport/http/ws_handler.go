package http

import (
	"encoding/json"
	"log"
	"net/http"

	"ggquiz-engine/internal/auth"
	"ggquiz-engine/internal/domain"
	"ggquiz-engine/internal/engine"
	"github.com/gorilla/websocket"
)

// GameHandler drives quiz sessions over a websocket. Each connection plays at
// most one session at a time; once a session reaches its result the client
// may start a fresh one on the same connection.
type GameHandler struct {
	authorizer auth.Authorizer
	source     engine.QuestionSource
	authority  engine.Submitter
	cfg        engine.Config
	upgrader   websocket.Upgrader
}

func NewGameHandler(authorizer auth.Authorizer, source engine.QuestionSource, authority engine.Submitter, cfg engine.Config) *GameHandler {
	return &GameHandler{
		authorizer: authorizer,
		source:     source,
		authority:  authority,
		cfg:        cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Mode     domain.Mode `json:"mode"`
	RegionID int64       `json:"regionId,omitempty"`
}

type pickPayload struct {
	Option string `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type tickPayload struct {
	Remaining int `json:"remaining"`
}

// ServeWS upgrades the request and wires the connection into the session
// engine. The player must present a valid token before any session starts.
func (h *GameHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID, err := h.authorizer.PlayerID(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})
	closeSignals := make(chan struct{})
	var forwarders []chan struct{}

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	var session *engine.Session
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid start payload")
				continue
			}
			if session != nil && session.Phase() == engine.PhasePlaying {
				send <- errorMessage(domain.ErrSessionActive.Error())
				continue
			}
			// A fresh session per attempt; the previous one is discarded.
			session = engine.New(h.cfg, h.source, h.authority)
			done := make(chan struct{})
			forwarders = append(forwarders, done)
			go forwardEvents(session, send, closeSignals, done)
			if err := session.Start(r.Context(), playerID, payload.Mode, payload.RegionID); err != nil {
				session = nil
				send <- errorMessage(err.Error())
				continue
			}
			go session.Run(r.Context())
		case "pick":
			var payload pickPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid pick payload")
				continue
			}
			if session == nil {
				send <- errorMessage("no active session")
				continue
			}
			// Duplicate or late picks are silently absorbed by the engine.
			session.Pick(r.Context(), payload.Option)
		default:
			send <- errorMessage("unsupported message type")
		}
	}

	close(closeSignals)
	for _, done := range forwarders {
		<-done
	}
	close(send)
	<-writerDone
}

// forwardEvents copies one session's event stream onto the connection. It
// exits when the session publishes its result and closes the stream, or when
// the connection is torn down.
func forwardEvents(session *engine.Session, send chan<- outboundMessage[any], closeSignals <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case ev, ok := <-session.Events():
			if !ok {
				return
			}
			select {
			case send <- translate(ev):
			case <-closeSignals:
				return
			}
		case <-closeSignals:
			return
		}
	}
}

func translate(ev engine.Event) outboundMessage[any] {
	switch ev.Type {
	case engine.EventQuestion:
		return outboundMessage[any]{Type: "question", Payload: ev.Question}
	case engine.EventTick:
		return outboundMessage[any]{Type: "tick", Payload: tickPayload{Remaining: ev.Remaining}}
	case engine.EventAnswer:
		return outboundMessage[any]{Type: "answerResult", Payload: ev.Answer}
	case engine.EventComputing:
		return outboundMessage[any]{Type: "computing", Payload: struct{}{}}
	case engine.EventResult:
		return outboundMessage[any]{Type: "result", Payload: ev.Result}
	}
	return errorMessage("unknown event")
}

func errorMessage(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}
