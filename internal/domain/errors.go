package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match with errors.Is.
var (
	// ErrInvalidInput is a programmer error: an argument outside its domain.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidState is a programmer error: an operation called out of order.
	ErrInvalidState = errors.New("invalid state")
	// ErrNotFound reports a lookup of content or a profile that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPersistence reports a commit that kept failing after retries.
	ErrPersistence = errors.New("persistence error")
)

var (
	ErrNegativeXP          = fmt.Errorf("%w: xp award must not be negative", ErrInvalidInput)
	ErrNegativeCount       = fmt.Errorf("%w: lesson counts must not be negative", ErrInvalidInput)
	ErrDuplicateBadgeTitle = fmt.Errorf("%w: duplicate badge title", ErrInvalidInput)
	ErrEmptyQuiz           = fmt.Errorf("%w: quiz has no challenges", ErrInvalidInput)

	ErrSessionFinished = fmt.Errorf("%w: quiz session already finished", ErrInvalidState)
	ErrAwaitingNext    = fmt.Errorf("%w: answer already submitted, call next", ErrInvalidState)
	ErrNotAnswered     = fmt.Errorf("%w: current question not answered yet", ErrInvalidState)
	ErrNoActiveQuiz    = fmt.Errorf("%w: no active quiz", ErrInvalidState)
	ErrSessionNotOver  = fmt.Errorf("%w: quiz session still in progress", ErrInvalidState)
	ErrNoMistakes      = fmt.Errorf("%w: no mistakes to retry", ErrInvalidState)
	ErrLocked          = fmt.Errorf("%w: lesson is locked", ErrInvalidState)

	ErrProfileNotFound     = fmt.Errorf("profile %w", ErrNotFound)
	ErrCategoryNotFound    = fmt.Errorf("category %w", ErrNotFound)
	ErrSubCategoryNotFound = fmt.Errorf("subcategory %w", ErrNotFound)
)
