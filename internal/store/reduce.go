package store

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/habitd/internal/history"
	"github.com/sandeepkv93/habitd/internal/model"
)

var ErrValidation = errors.New("store: validation failed")

const MsgEmptyName = "Please enter a habit name"

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("store: invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Snapshot is an immutable, ordered view of the habit collection. Reducers
// always build a new backing array, so a Snapshot never changes once handed out.
type Snapshot struct {
	habits []model.Habit
}

func NewSnapshot(habits []model.Habit) Snapshot {
	out := make([]model.Habit, 0, len(habits))
	for _, h := range habits {
		out = append(out, h.Clone())
	}
	return Snapshot{habits: out}
}

func (s Snapshot) Len() int { return len(s.habits) }

// Habits returns deep copies in insertion order.
func (s Snapshot) Habits() []model.Habit {
	out := make([]model.Habit, 0, len(s.habits))
	for _, h := range s.habits {
		out = append(out, h.Clone())
	}
	return out
}

func (s Snapshot) Find(id string) (model.Habit, bool) {
	if i := s.index(id); i >= 0 {
		return s.habits[i].Clone(), true
	}
	return model.Habit{}, false
}

func (s Snapshot) index(id string) int {
	for i := range s.habits {
		if s.habits[i].ID == id {
			return i
		}
	}
	return -1
}

// Effects are the side effects a reducer asks its caller to perform.
type Effects struct {
	Notification string
	ClearInput   bool
	Changed      bool
	HabitID      string
}

// Env carries the non-deterministic inputs reducers depend on.
type Env struct {
	Now    func() time.Time
	NewID  func() string
	Color  func() string
	Window int
}

func (e Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e Env) window() int {
	if e.Window <= 0 {
		return history.DefaultWindow
	}
	return e.Window
}

// Add appends a new habit named name. A blank name yields a *ValidationError,
// an unchanged snapshot and a prompt notification.
func Add(snap Snapshot, name string, env Env) (Snapshot, Effects, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return snap, Effects{Notification: MsgEmptyName}, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	color := "#6366f1"
	if env.Color != nil {
		color = env.Color()
	}
	h := model.Habit{
		ID:       uniqueID(snap, env.NewID),
		Name:     trimmed,
		Icon:     model.DefaultIcon,
		Goal:     model.DefaultGoal,
		Unit:     model.DefaultUnit,
		Progress: 0,
		Streak:   0,
		History:  history.Seed(env.now(), env.window(), history.Zero),
		Color:    color,
	}
	next := make([]model.Habit, 0, len(snap.habits)+1)
	next = append(next, snap.habits...)
	next = append(next, h)
	return Snapshot{habits: next}, Effects{
		Notification: "Added new habit: " + trimmed,
		ClearInput:   true,
		Changed:      true,
		HabitID:      h.ID,
	}, nil
}

// UpdateProgress sets today's progress for id, recomputes the streak and
// records the value in the history window. Unknown ids are a no-op.
func UpdateProgress(snap Snapshot, id string, value float64, env Env) (Snapshot, Effects) {
	i := snap.index(id)
	if i < 0 {
		return snap, Effects{}
	}
	value = ClampProgress(value)

	next := make([]model.Habit, len(snap.habits))
	copy(next, snap.habits)
	h := next[i]
	h.Streak = model.NextStreak(h.Streak, value, h.Goal)
	h.Progress = value
	h.History = history.Record(h.History, env.now(), value, env.window())
	next[i] = h

	return Snapshot{habits: next}, Effects{
		Notification: fmt.Sprintf("Updated %s progress to %s %s", h.Name, FormatValue(value), h.Unit),
		Changed:      true,
		HabitID:      h.ID,
	}
}

// Delete removes the habit with id. Unknown ids are a no-op.
func Delete(snap Snapshot, id string) (Snapshot, Effects) {
	i := snap.index(id)
	if i < 0 {
		return snap, Effects{}
	}
	removed := snap.habits[i]
	next := make([]model.Habit, 0, len(snap.habits)-1)
	next = append(next, snap.habits[:i]...)
	next = append(next, snap.habits[i+1:]...)
	return Snapshot{habits: next}, Effects{
		Notification: "Deleted habit: " + removed.Name,
		Changed:      true,
		HabitID:      removed.ID,
	}
}

// ClampProgress maps negative and non-finite values to zero.
func ClampProgress(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func uniqueID(snap Snapshot, newID func() string) string {
	if newID == nil {
		newID = defaultID
	}
	for attempt := 0; attempt < 8; attempt++ {
		id := strings.TrimSpace(newID())
		if id != "" && snap.index(id) < 0 {
			return id
		}
	}
	base := strings.TrimSpace(newID())
	if base == "" {
		base = "habit"
	}
	for n := 2; ; n++ {
		id := fmt.Sprintf("%s-%d", base, n)
		if snap.index(id) < 0 {
			return id
		}
	}
}
