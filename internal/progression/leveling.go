package progression

import (
	"log/slog"

	"movie-knowledge-service/internal/domain"
)

// LevelStep is the per-level multiplier of the XP threshold.
const LevelStep = 100

// NextLevelXP is the XP needed to advance past level.
func NextLevelXP(level int) int {
	return level * LevelStep
}

// LevelChange describes the levels crossed by one award.
type LevelChange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Gained is the number of levels crossed.
func (c LevelChange) Gained() int {
	return c.To - c.From
}

// Reached lists every new level in ascending order.
func (c LevelChange) Reached() []int {
	if c.To <= c.From {
		return nil
	}
	levels := make([]int, 0, c.To-c.From)
	for l := c.From + 1; l <= c.To; l++ {
		levels = append(levels, l)
	}
	return levels
}

// LevelingEngine converts XP awards into level-ups.
type LevelingEngine struct {
	logger *slog.Logger
}

func NewLevelingEngine(logger *slog.Logger) *LevelingEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &LevelingEngine{logger: logger}
}

// AwardXP adds amount to the profile and applies every level-up it pays for.
// The threshold is recomputed per level so a large award cascades.
// Persisting the profile is the caller's job.
func (e *LevelingEngine) AwardXP(p *domain.Profile, amount int) (LevelChange, error) {
	if amount < 0 {
		return LevelChange{}, domain.ErrNegativeXP
	}
	if p.Level < 1 {
		p.Level = 1
	}
	change := LevelChange{From: p.Level, To: p.Level}

	p.XP += amount
	for p.XP >= NextLevelXP(p.Level) {
		p.XP -= NextLevelXP(p.Level)
		p.Level++
	}
	change.To = p.Level

	if change.Gained() > 0 {
		e.logger.Info("level up", "profile_id", p.ID, "from", change.From, "to", change.To, "xp", p.XP)
	}
	return change, nil
}

// ProgressToNextLevel is the fraction of the current level already earned.
func ProgressToNextLevel(p *domain.Profile) float64 {
	next := NextLevelXP(p.Level)
	if next <= 0 {
		return 0
	}
	return float64(p.XP) / float64(next)
}

// XPNeededForNextLevel is the XP still missing for the next level-up.
func XPNeededForNextLevel(p *domain.Profile) int {
	return NextLevelXP(p.Level) - p.XP
}
