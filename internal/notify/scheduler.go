// Package notify implements the single-slot notification scheduler. A slot is
// either idle or holds one message with a pending expiry. Every Notify call
// cancels the previous expiry and issues a new token; an expiry only clears
// the slot when it still carries the current token.
package notify

import (
	"strings"
	"sync"
	"time"
)

const DefaultTTL = 3 * time.Second

// Timer is the cancellable handle returned by an AfterFunc.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. It matches time.AfterFunc so tests can
// substitute a manual clock.
type AfterFunc func(d time.Duration, f func()) Timer

func systemAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type EventKind string

const (
	EventNotified EventKind = "notified"
	EventExpired  EventKind = "expired"
	EventCleared  EventKind = "cleared"
)

type Notification struct {
	Message string
	Token   uint64
}

func (n Notification) Active() bool {
	return n.Message != ""
}

type Event struct {
	Kind         EventKind
	Notification Notification
}

type Scheduler struct {
	mu        sync.Mutex
	current   Notification
	token     uint64
	timer     Timer
	ttl       time.Duration
	afterFunc AfterFunc
	observers []func(Event)
	stopped   bool
}

type Option func(*Scheduler)

func WithTTL(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.ttl = d
		}
	}
}

func WithAfterFunc(fn AfterFunc) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.afterFunc = fn
		}
	}
}

func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		ttl:       DefaultTTL,
		afterFunc: systemAfterFunc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Observe registers fn to run after every slot transition. Observers run
// outside the scheduler lock, on the goroutine that caused the transition.
func (s *Scheduler) Observe(fn func(Event)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// Notify replaces the slot with msg and restarts the expiry window. A blank
// message clears the slot.
func (s *Scheduler) Notify(msg string) Notification {
	if strings.TrimSpace(msg) == "" {
		s.Clear()
		return Notification{}
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return Notification{}
	}
	s.token++
	token := s.token
	stopTimer(s.timer)
	s.current = Notification{Message: msg, Token: token}
	s.timer = s.afterFunc(s.ttl, func() { s.expire(token) })
	n := s.current
	observers := s.observersLocked()
	s.mu.Unlock()

	emit(observers, Event{Kind: EventNotified, Notification: n})
	return n
}

// Current returns the live message, or "" when idle.
func (s *Scheduler) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Message
}

// Clear drops the live message and cancels its expiry.
func (s *Scheduler) Clear() {
	s.mu.Lock()
	if !s.current.Active() {
		s.mu.Unlock()
		return
	}
	s.token++
	stopTimer(s.timer)
	s.timer = nil
	prev := s.current
	s.current = Notification{}
	observers := s.observersLocked()
	s.mu.Unlock()

	emit(observers, Event{Kind: EventCleared, Notification: prev})
}

// Stop cancels any pending expiry and rejects further notifications.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	s.token++
	stopTimer(s.timer)
	s.timer = nil
}

func (s *Scheduler) expire(token uint64) {
	s.mu.Lock()
	if token != s.token || !s.current.Active() {
		s.mu.Unlock()
		return
	}
	prev := s.current
	s.current = Notification{}
	s.timer = nil
	observers := s.observersLocked()
	s.mu.Unlock()

	emit(observers, Event{Kind: EventExpired, Notification: prev})
}

func (s *Scheduler) observersLocked() []func(Event) {
	if len(s.observers) == 0 {
		return nil
	}
	out := make([]func(Event), len(s.observers))
	copy(out, s.observers)
	return out
}

func emit(observers []func(Event), ev Event) {
	for _, fn := range observers {
		fn(ev)
	}
}

func stopTimer(timer Timer) {
	if timer == nil {
		return
	}
	timer.Stop()
}
