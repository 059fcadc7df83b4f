// Package progression holds the gamification rules: leveling, streaks, lesson
// unlocking, badges and the daily focus. Every component mutates the profile in
// memory only; committing it is up to the caller.
package progression

import (
	"log/slog"
	"time"
)

// Context bundles the services a quiz completion runs through.
type Context struct {
	Calendar Calendar
	Leveling *LevelingEngine
	Streaks  *StreakTracker
	Progress *ProgressTracker
	Badges   *BadgeEvaluator
	Focus    *DailyFocusSelector
}

// NewContext wires the progression services for one time zone.
func NewContext(loc *time.Location, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	cal := NewCalendar(loc)
	progress := NewProgressTracker()
	return &Context{
		Calendar: cal,
		Leveling: NewLevelingEngine(logger),
		Streaks:  NewStreakTracker(cal),
		Progress: progress,
		Badges:   NewBadgeEvaluator(progress, logger),
		Focus:    NewDailyFocusSelector(cal, progress),
	}
}
