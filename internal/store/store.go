package store

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sandeepkv93/habitd/internal/history"
	"github.com/sandeepkv93/habitd/internal/model"
	"github.com/sandeepkv93/habitd/internal/notify"
	"go.uber.org/zap"
)

type ChangeKind string

const (
	ChangeAdded        ChangeKind = "added"
	ChangeUpdated      ChangeKind = "updated"
	ChangeDeleted      ChangeKind = "deleted"
	ChangeRejected     ChangeKind = "rejected"
	ChangeNotification ChangeKind = "notification"
)

// Change is delivered to subscribers after an operation has completed.
type Change struct {
	Kind         ChangeKind
	HabitID      string
	Snapshot     Snapshot
	Notification string
}

// Recorder receives mutation and notification counts. The metrics package
// provides the Prometheus implementation.
type Recorder interface {
	ObserveMutation(op, result string)
	ObserveNotification(kind string)
	SetHabitCount(n int)
}

type noopRecorder struct{}

func (noopRecorder) ObserveMutation(string, string) {}
func (noopRecorder) ObserveNotification(string)     {}
func (noopRecorder) SetHabitCount(int)              {}

type Store struct {
	mu       sync.Mutex
	snap     atomic.Pointer[Snapshot]
	env      Env
	notifier *notify.Scheduler
	logger   *zap.Logger
	recorder Recorder
	initial  []model.Habit

	subMu   sync.Mutex
	subs    map[int]func(Change)
	subSeq  int
	subKeys []int
}

type Option func(*Store)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Store) {
		if r != nil {
			s.recorder = r
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.env.Now = now
		}
	}
}

func WithIDSource(newID func() string) Option {
	return func(s *Store) {
		if newID != nil {
			s.env.NewID = newID
		}
	}
}

// WithRand derives habit colors from rng instead of the process-wide source.
func WithRand(rng *rand.Rand) Option {
	return func(s *Store) {
		if rng != nil {
			s.env.Color = RandomColor(rng)
		}
	}
}

func WithWindow(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.env.Window = n
		}
	}
}

func WithScheduler(sched *notify.Scheduler) Option {
	return func(s *Store) {
		if sched != nil {
			s.notifier = sched
		}
	}
}

// WithHabits seeds the collection, e.g. from fixtures or a persisted snapshot.
func WithHabits(habits []model.Habit) Option {
	return func(s *Store) {
		s.initial = habits
	}
}

func New(opts ...Option) (*Store, error) {
	s := &Store{
		env: Env{
			Now:    time.Now,
			NewID:  defaultID,
			Color:  RandomColor(nil),
			Window: history.DefaultWindow,
		},
		logger:   zap.NewNop(),
		recorder: noopRecorder{},
		subs:     make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = notify.NewScheduler()
	}
	if err := model.ValidateCollection(s.initial); err != nil {
		return nil, fmt.Errorf("store: initial habits: %w", err)
	}
	snap := NewSnapshot(s.initial)
	s.initial = nil
	s.snap.Store(&snap)
	s.recorder.SetHabitCount(snap.Len())
	s.notifier.Observe(s.onNotification)
	return s, nil
}

func (s *Store) Snapshot() Snapshot {
	return *s.snap.Load()
}

// List returns the ordered habits of the current snapshot.
func (s *Store) List() []model.Habit {
	return s.Snapshot().Habits()
}

func (s *Store) Get(id string) (model.Habit, bool) {
	return s.Snapshot().Find(id)
}

func (s *Store) Stats() []history.Completion {
	return history.Summaries(s.List())
}

func (s *Store) Window() int {
	return s.env.window()
}

func (s *Store) CurrentNotification() string {
	return s.notifier.Current()
}

// Notify pushes a shell-originated message into the notification slot.
// A blank message clears the slot; that change is published by the
// scheduler's cleared event.
func (s *Store) Notify(msg string) {
	n := s.notifier.Notify(msg)
	if n.Active() {
		s.publish(Change{Kind: ChangeNotification, Snapshot: s.Snapshot(), Notification: n.Message})
	}
}

func (s *Store) ClearNotification() {
	s.notifier.Clear()
}

// AddHabit creates a habit named name. The returned error is a
// *ValidationError when the name is blank; the prompt is still shown.
func (s *Store) AddHabit(name string) (model.Habit, error) {
	s.mu.Lock()
	next, fx, err := Add(s.Snapshot(), name, s.env)
	if err != nil {
		s.notifier.Notify(fx.Notification)
		s.mu.Unlock()
		s.logger.Debug("Rejected habit", zap.String("reason", err.Error()))
		s.recorder.ObserveMutation("add", "rejected")
		s.publish(Change{Kind: ChangeRejected, Snapshot: s.Snapshot(), Notification: fx.Notification})
		return model.Habit{}, err
	}
	s.commitLocked(next, fx)
	s.mu.Unlock()

	h, _ := next.Find(fx.HabitID)
	s.logger.Info("Habit added", zap.String("id", h.ID), zap.String("name", h.Name), zap.String("color", h.Color))
	s.recorder.ObserveMutation("add", "ok")
	s.publish(Change{Kind: ChangeAdded, HabitID: h.ID, Snapshot: next, Notification: fx.Notification})
	return h, nil
}

// UpdateProgress reports false when id is unknown.
func (s *Store) UpdateProgress(id string, value float64) bool {
	s.mu.Lock()
	next, fx := UpdateProgress(s.Snapshot(), id, value, s.env)
	if !fx.Changed {
		s.mu.Unlock()
		s.logger.Debug("Progress update for unknown habit", zap.String("id", id))
		s.recorder.ObserveMutation("update_progress", "not_found")
		return false
	}
	s.commitLocked(next, fx)
	s.mu.Unlock()

	h, _ := next.Find(id)
	s.logger.Info("Habit progress updated",
		zap.String("id", id),
		zap.Float64("progress", h.Progress),
		zap.Int("streak", h.Streak),
	)
	s.recorder.ObserveMutation("update_progress", "ok")
	s.publish(Change{Kind: ChangeUpdated, HabitID: id, Snapshot: next, Notification: fx.Notification})
	return true
}

// DeleteHabit reports false when id is unknown.
func (s *Store) DeleteHabit(id string) bool {
	s.mu.Lock()
	next, fx := Delete(s.Snapshot(), id)
	if !fx.Changed {
		s.mu.Unlock()
		s.logger.Debug("Delete for unknown habit", zap.String("id", id))
		s.recorder.ObserveMutation("delete", "not_found")
		return false
	}
	s.commitLocked(next, fx)
	s.mu.Unlock()

	s.logger.Info("Habit deleted", zap.String("id", id))
	s.recorder.ObserveMutation("delete", "ok")
	s.publish(Change{Kind: ChangeDeleted, HabitID: id, Snapshot: next, Notification: fx.Notification})
	return true
}

// Subscribe registers fn for every state transition and returns a function
// that removes it. Subscribers run in registration order, never while the
// store is mid-update.
func (s *Store) Subscribe(fn func(Change)) func() {
	if fn == nil {
		return func() {}
	}
	s.subMu.Lock()
	s.subSeq++
	key := s.subSeq
	s.subs[key] = fn
	s.subKeys = append(s.subKeys, key)
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			delete(s.subs, key)
			for i, k := range s.subKeys {
				if k == key {
					s.subKeys = append(s.subKeys[:i:i], s.subKeys[i+1:]...)
					break
				}
			}
		})
	}
}

// Close cancels the pending notification expiry.
func (s *Store) Close() {
	s.notifier.Stop()
}

func (s *Store) commitLocked(next Snapshot, fx Effects) {
	s.snap.Store(&next)
	s.recorder.SetHabitCount(next.Len())
	if fx.Notification != "" {
		s.notifier.Notify(fx.Notification)
	}
}

func (s *Store) onNotification(ev notify.Event) {
	s.recorder.ObserveNotification(string(ev.Kind))
	switch ev.Kind {
	case notify.EventExpired, notify.EventCleared:
		s.publish(Change{Kind: ChangeNotification, Snapshot: s.Snapshot()})
	}
}

func (s *Store) publish(ch Change) {
	s.subMu.Lock()
	fns := make([]func(Change), 0, len(s.subKeys))
	for _, k := range s.subKeys {
		fns = append(fns, s.subs[k])
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(ch)
	}
}

func defaultID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// RandomColor returns a generator of "#rrggbb" colors drawn from rng, or from
// the global source when rng is nil.
func RandomColor(rng *rand.Rand) func() string {
	var mu sync.Mutex
	return func() string {
		var v int
		if rng == nil {
			v = rand.IntN(0x1000000)
		} else {
			mu.Lock()
			v = rng.IntN(0x1000000)
			mu.Unlock()
		}
		return fmt.Sprintf("#%06x", v)
	}
}
