package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"movie-knowledge-service/internal/app"
	"movie-knowledge-service/internal/domain"
)

const writeWait = 10 * time.Second

type WSHandler struct {
	service  *app.LearnerService
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.LearnerService, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		service: service,
		logger:  logger,
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
	SubCategoryID string `json:"subCategoryId"`
}

type answerPayload struct {
	Text string `json:"text"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the learner use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	profileID := r.URL.Query().Get("profileId")
	if profileID == "" {
		http.Error(w, "missing profileId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	// Server read/write timeouts survive the hijack; play sessions outlive them.
	_ = conn.SetReadDeadline(time.Time{})

	ctx := r.Context()
	profile, err := h.service.Profile(ctx, profileID)
	if err != nil && !errors.Is(err, domain.ErrPersistence) {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: newErrorPayload(err)})
		return
	}

	events, cancel, err := h.service.Subscribe(ctx, profileID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: newErrorPayload(err)})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	// Only this goroutine writes to conn.
	go func() {
		defer close(writerDone)
		for msg := range send {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Warn("ws write error", "profile_id", profileID, "error", err)
				return
			}
		}
	}()

	go func() {
		defer close(eventsDone)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "event", Payload: ev}:
				case <-closeSignals:
					return
				case <-writerDone:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	enqueue := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		}
	}

	if enqueue(outboundMessage[any]{Type: "profile", Payload: profile}) {
	read:
		for {
			var inbound inboundMessage
			if err := conn.ReadJSON(&inbound); err != nil {
				break
			}
			for _, msg := range h.handle(r, profileID, inbound) {
				if !enqueue(msg) {
					break read
				}
			}
		}
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}

func (h *WSHandler) handle(r *http.Request, profileID string, inbound inboundMessage) []outboundMessage[any] {
	ctx := r.Context()

	switch inbound.Type {
	case "start":
		var payload startPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.SubCategoryID == "" {
			return []outboundMessage[any]{{Type: "error", Payload: errorPayload{Code: "invalid_input", Message: "invalid start payload"}}}
		}
		q, err := h.service.StartQuiz(ctx, profileID, payload.SubCategoryID)
		return reply(err, outboundMessage[any]{Type: "question", Payload: q})
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return []outboundMessage[any]{{Type: "error", Payload: errorPayload{Code: "invalid_input", Message: "invalid answer payload"}}}
		}
		feedback, err := h.service.SubmitAnswer(ctx, profileID, payload.Text)
		return reply(err, outboundMessage[any]{Type: "feedback", Payload: feedback})
	case "skip":
		out, err := h.service.SkipQuestion(ctx, profileID)
		return reply(err, outboundMessage[any]{Type: "feedback", Payload: out.Feedback}, stepMessage(out.StepOutcome))
	case "next":
		out, err := h.service.NextQuestion(ctx, profileID)
		return reply(err, stepMessage(out))
	case "retry":
		q, err := h.service.RetryMistakes(ctx, profileID)
		return reply(err, outboundMessage[any]{Type: "question", Payload: q})
	case "abandon":
		if err := h.service.Abandon(ctx, profileID); err != nil && !errors.Is(err, domain.ErrPersistence) {
			return reply(err)
		}
		profile, err := h.service.Profile(ctx, profileID)
		return reply(err, outboundMessage[any]{Type: "profile", Payload: profile})
	case "focus":
		focus, err := h.service.TodayFocus(ctx, profileID)
		return reply(err, outboundMessage[any]{Type: "focus", Payload: focus})
	default:
		return []outboundMessage[any]{{Type: "error", Payload: errorPayload{Code: "invalid_input", Message: "unsupported message type"}}}
	}
}

// reply sends msgs on success. A persistence error means the step was applied
// but not saved, so the client gets the result followed by the error.
func reply(err error, msgs ...outboundMessage[any]) []outboundMessage[any] {
	if err == nil {
		return msgs
	}
	failure := outboundMessage[any]{Type: "error", Payload: newErrorPayload(err)}
	if errors.Is(err, domain.ErrPersistence) {
		return append(msgs, failure)
	}
	return []outboundMessage[any]{failure}
}

func stepMessage(out app.StepOutcome) outboundMessage[any] {
	if out.Result != nil {
		return outboundMessage[any]{Type: "completed", Payload: out.Result}
	}
	return outboundMessage[any]{Type: "question", Payload: out.Question}
}
