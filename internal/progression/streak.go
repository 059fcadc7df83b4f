package progression

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"movie-knowledge-service/internal/domain"
)

// StreakChange classifies what RecordActivity did.
type StreakChange int

const (
	StreakUnchanged StreakChange = iota
	StreakStarted
	StreakExtended
	StreakReset
)

func (c StreakChange) String() string {
	switch c {
	case StreakStarted:
		return "started"
	case StreakExtended:
		return "extended"
	case StreakReset:
		return "reset"
	default:
		return "unchanged"
	}
}

func (c StreakChange) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// StreakTracker maintains the daily streak and the one-record-per-day history.
type StreakTracker struct {
	cal Calendar
}

func NewStreakTracker(cal Calendar) *StreakTracker {
	return &StreakTracker{cal: cal}
}

// RecordActivity applies today's activity to the streak. Re-entry on the same
// day, or a today earlier than the last active date, changes nothing.
func (t *StreakTracker) RecordActivity(p *domain.Profile, today time.Time) StreakChange {
	if p.LastActiveDate == nil {
		p.CurrentStreak = 1
		p.LastActiveDate = &today
		return StreakStarted
	}

	days := t.cal.DaysBetween(t.cal.StartOfDay(*p.LastActiveDate), today)
	switch {
	case days <= 0:
		return StreakUnchanged
	case days == 1:
		p.CurrentStreak++
		if p.CurrentStreak > p.LongestStreak {
			p.LongestStreak = p.CurrentStreak
		}
		p.LastActiveDate = &today
		return StreakExtended
	default:
		p.CurrentStreak = 1
		p.LastActiveDate = &today
		return StreakReset
	}
}

// RecordDailyLesson accumulates counts into today's record, creating it on
// first use, then records the activity.
func (t *StreakTracker) RecordDailyLesson(p *domain.Profile, today time.Time, questionsAnswered, correctAnswers, xpEarned int) (StreakChange, error) {
	if questionsAnswered < 0 || correctAnswers < 0 || xpEarned < 0 {
		return StreakUnchanged, domain.ErrNegativeCount
	}

	if i, ok := t.todayIndex(p, today); ok {
		rec := &p.DailyLessonHistory[i]
		rec.QuestionsAnswered += questionsAnswered
		rec.CorrectAnswers += correctAnswers
		rec.XPEarned += xpEarned
	} else {
		p.DailyLessonHistory = append(p.DailyLessonHistory, domain.DailyLessonRecord{
			ID:                uuid.NewString(),
			Date:              t.cal.StartOfDay(today),
			QuestionsAnswered: questionsAnswered,
			CorrectAnswers:    correctAnswers,
			XPEarned:          xpEarned,
		})
	}
	return t.RecordActivity(p, today), nil
}

// TodayRecord returns the record for today's calendar day if there is one.
func (t *StreakTracker) TodayRecord(p *domain.Profile, today time.Time) (domain.DailyLessonRecord, bool) {
	i, ok := t.todayIndex(p, today)
	if !ok {
		return domain.DailyLessonRecord{}, false
	}
	return p.DailyLessonHistory[i], true
}

// HasCompletedToday reports whether a lesson was recorded today.
func (t *StreakTracker) HasCompletedToday(p *domain.Profile, today time.Time) bool {
	_, ok := t.todayIndex(p, today)
	return ok
}

func (t *StreakTracker) todayIndex(p *domain.Profile, today time.Time) (int, bool) {
	for i := range p.DailyLessonHistory {
		if t.cal.SameDay(p.DailyLessonHistory[i].Date, today) {
			return i, true
		}
	}
	return -1, false
}

// StreakMessage is the short status line shown next to the streak counter.
func StreakMessage(p *domain.Profile) string {
	switch p.CurrentStreak {
	case 0:
		return "Start your streak today!"
	case 1:
		return "1 day streak"
	default:
		return fmt.Sprintf("%d day streak", p.CurrentStreak)
	}
}
