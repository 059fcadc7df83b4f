package domain

import "time"

// EventType names a feedback signal for the UI layer.
type EventType string

const (
	EventCorrectAnswer EventType = "correct_answer"
	EventWrongAnswer   EventType = "wrong_answer"
	EventLevelUp       EventType = "level_up"
	EventBadgeEarned   EventType = "badge_earned"
	EventQuizCompleted EventType = "quiz_completed"
)

// Event is emitted by operations alongside their results.
type Event struct {
	Type       EventType `json:"type"`
	ProfileID  string    `json:"profileId"`
	Level      int       `json:"level,omitempty"`
	Badge      *Badge    `json:"badge,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
