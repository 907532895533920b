package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	ErrDuplicateID      = errors.New("model: duplicate habit id")
	ErrInvalidGoal      = errors.New("model: habit goal must be positive")
	ErrNegativeProgress = errors.New("model: habit progress must not be negative")
	ErrNegativeStreak   = errors.New("model: habit streak must not be negative")
	ErrHistoryOrder     = errors.New("model: history must hold one point per day in chronological order")
)

const (
	DefaultIcon = "✨"
	DefaultUnit = "times"
	DefaultGoal = 1.0

	// HistoryLabelLayout matches the short "Jan 02" labels used on chart axes.
	HistoryLabelLayout = "Jan 02"
)

type HistoryPoint struct {
	Date  time.Time
	Value float64
}

func (p HistoryPoint) Label() string {
	return p.Date.Format(HistoryLabelLayout)
}

type Habit struct {
	ID       string
	Name     string
	Icon     string
	Goal     float64
	Unit     string
	Progress float64
	Streak   int
	History  []HistoryPoint
	Color    string
}

// Clone returns a copy that shares no backing arrays with h.
func (h Habit) Clone() Habit {
	out := h
	if h.History != nil {
		out.History = make([]HistoryPoint, len(h.History))
		copy(out.History, h.History)
	}
	return out
}

func (h Habit) Validate() error {
	if strings.TrimSpace(h.ID) == "" {
		return errors.New("model: habit id is required")
	}
	if strings.TrimSpace(h.Name) == "" {
		return errors.New("model: habit name is required")
	}
	if !(h.Goal > 0) || math.IsInf(h.Goal, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidGoal, h.Goal)
	}
	if h.Progress < 0 || math.IsNaN(h.Progress) {
		return fmt.Errorf("%w: %v", ErrNegativeProgress, h.Progress)
	}
	if h.Streak < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeStreak, h.Streak)
	}
	for i := 1; i < len(h.History); i++ {
		if !SameDay(h.History[i-1].Date, h.History[i].Date) && h.History[i-1].Date.Before(h.History[i].Date) {
			continue
		}
		return fmt.Errorf("%w: %s then %s", ErrHistoryOrder, h.History[i-1].Label(), h.History[i].Label())
	}
	return nil
}

// ValidateCollection checks every habit and id uniqueness across the slice.
func ValidateCollection(habits []Habit) error {
	seen := make(map[string]bool, len(habits))
	for _, h := range habits {
		if err := h.Validate(); err != nil {
			return err
		}
		if seen[h.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateID, h.ID)
		}
		seen[h.ID] = true
	}
	return nil
}

// NextStreak applies the all-or-nothing streak rule for a single progress update.
func NextStreak(current int, progress, goal float64) int {
	if current < 0 {
		current = 0
	}
	if progress >= goal {
		return current + 1
	}
	return 0
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
