package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"movie-knowledge-service/internal/app"
	"movie-knowledge-service/internal/domain"
	"movie-knowledge-service/internal/infra/memory"
	"movie-knowledge-service/internal/progression"
)

func TestWebSocketQuizFlow(t *testing.T) {
	server := httptest.NewServer(newTestMux())
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?profileId=p1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Expect the profile snapshot first.
	_, payload := readNext(conn, t, "profile")
	if payload["level"] != float64(1) {
		t.Fatalf("expected level 1 profile, got %v", payload)
	}

	send(conn, t, "start", map[string]any{"subCategoryId": "trivia-0"})
	_, payload = readNext(conn, t, "question")
	if payload["challengeId"] != "q1" {
		t.Fatalf("expected first question q1, got %v", payload)
	}
	if options, _ := payload["options"].([]any); len(options) != 2 {
		t.Fatalf("expected 2 options, got %v", payload["options"])
	}
	if _, leaked := payload["correctAnswer"]; leaked {
		t.Fatalf("question must not carry the answer")
	}

	send(conn, t, "answer", map[string]any{"text": "Steven Spielberg"})
	feedback := readUntil(conn, t, "feedback")
	if feedback["correct"] != true {
		t.Fatalf("expected correct feedback, got %v", feedback)
	}

	send(conn, t, "next", nil)
	completed := readUntil(conn, t, "completed")
	if completed["earnedXp"] != float64(10) {
		t.Fatalf("expected 10 xp, got %v", completed)
	}

	send(conn, t, "answer", map[string]any{"text": "again"})
	errPayload := readUntil(conn, t, "error")
	if errPayload["code"] != "invalid_state" {
		t.Fatalf("expected invalid_state error, got %v", errPayload)
	}
}

func TestWebSocketRejectsLockedLesson(t *testing.T) {
	server := httptest.NewServer(newTestMux())
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[len("http"):]+"/ws?profileId=p2", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readNext(conn, t, "profile")

	send(conn, t, "start", map[string]any{"subCategoryId": "trivia-1"})
	_, payload := readNext(conn, t, "error")
	if payload["code"] != "invalid_state" {
		t.Fatalf("expected locked lesson error, got %v", payload)
	}
}

func TestWebSocketRequiresProfile(t *testing.T) {
	server := httptest.NewServer(newTestMux())
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestReplyKeepsUnsavedResult(t *testing.T) {
	feedback := outboundMessage[any]{Type: "feedback", Payload: app.AnswerFeedback{Correct: true}}

	msgs := reply(fmt.Errorf("%w: store down", domain.ErrPersistence), feedback)
	if len(msgs) != 2 || msgs[0].Type != "feedback" || msgs[1].Type != "error" {
		t.Fatalf("expected feedback then error, got %+v", msgs)
	}
	if code := msgs[1].Payload.(errorPayload).Code; code != "persistence" {
		t.Fatalf("expected persistence code, got %s", code)
	}

	msgs = reply(domain.ErrNoActiveQuiz, feedback)
	if len(msgs) != 1 || msgs[0].Type != "error" {
		t.Fatalf("expected only an error, got %+v", msgs)
	}
}

func send(conn *websocket.Conn, t *testing.T, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

// readUntil skips pushed events until a message of type expect arrives.
func readUntil(conn *websocket.Conn, t *testing.T, expect string) map[string]any {
	t.Helper()
	for i := 0; i < 10; i++ {
		typ, payload := readNext(conn, t, "")
		if typ == expect {
			return payload
		}
	}
	t.Fatalf("no %s message received", expect)
	return nil
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s (%s)", expect, msg.Type, msg.Payload)
	}
	var payload map[string]any
	_ = json.Unmarshal(msg.Payload, &payload)
	return msg.Type, payload
}

func newTestMux() *http.ServeMux {
	content := memory.NewContentRepository(memory.NewStaticContentLoader(sampleCategories()), time.Minute)
	service := app.NewLearnerService(
		memory.NewLearnerStore(),
		memory.NewProfileStore(),
		content,
		progression.NewContext(time.UTC, nil),
		app.Options{},
	)

	mux := http.NewServeMux()
	NewAPIHandler(service, nil).Register(mux)
	mux.HandleFunc("/ws", NewWSHandler(service, nil).ServeWS)
	return mux
}

func sampleCategories() []domain.Category {
	return []domain.Category{
		{
			ID:    "trivia",
			Title: "Trivia",
			SubCategories: []domain.SubCategory{
				{
					ID:           "trivia-0",
					Title:        "Basics",
					DisplayOrder: 0,
					Challenges: []domain.Challenge{
						{
							ID:            "q1",
							QuestionText:  "Who directed Jaws?",
							QuestionType:  domain.QuestionMultipleChoice,
							CorrectAnswer: "Steven Spielberg",
							WrongAnswers:  []string{"George Lucas"},
							Difficulty:    domain.DifficultyEasy,
						},
					},
				},
				{
					ID:           "trivia-1",
					Title:        "Advanced",
					DisplayOrder: 1,
					Challenges: []domain.Challenge{
						{ID: "q2", CorrectAnswer: "1975", QuestionType: domain.QuestionPickYear, Difficulty: domain.DifficultyHard},
					},
				},
			},
		},
	}
}
