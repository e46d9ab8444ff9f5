// Package store owns the in-memory counter list and the current-index cursor.
//
// Every state change is written through to the Persister before the mutating
// call returns. Callers address counters by display index; code that has to
// survive intervening inserts or deletes should hold the counter id and
// resolve it with IndexOf at call time.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/smantzavinos/tally/pkg/model"
)

var (
	ErrOutOfRange   = errors.New("counter index out of range")
	ErrLastCounter  = errors.New("at least one counter is required")
	ErrInvalidStyle = errors.New("invalid counter style")
)

// Persister is the durable side of the store. storage.Adapter implements it.
type Persister interface {
	Load() []model.Counter
	Save(counters []model.Counter) error
}

// Options tunes store behaviour.
type Options struct {
	// RandomStyle gives new counters a random style instead of the default.
	RandomStyle bool
	Logger      *slog.Logger
}

// Store is the ordered counter list plus the current-index cursor.
type Store struct {
	counters []model.Counter
	current  int
	persist  Persister
	opts     Options
	logger   *slog.Logger
	intn     func(n int) int
}

// Open loads the counters from p. When nothing usable is stored the list is
// seeded with one default counter and saved. A failed seed save is logged; the
// store is usable either way.
func Open(p Persister, opts Options) *Store {
	s := &Store{
		persist: p,
		opts:    opts,
		logger:  opts.Logger,
		intn:    rand.IntN,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.counters = p.Load()
	if len(s.counters) == 0 {
		s.counters = []model.Counter{s.newCounter()}
		if err := s.save(); err != nil {
			s.logger.Warn("seeding default counter", "error", err)
		}
	}
	return s
}

// Len returns the number of counters. It is always at least 1.
func (s *Store) Len() int { return len(s.counters) }

// Current returns the cursor position.
func (s *Store) Current() int { return s.current }

// SetCurrent moves the cursor. Invalid positions are ignored and reported as false.
func (s *Store) SetCurrent(index int) bool {
	if !s.valid(index) {
		return false
	}
	s.current = index
	return true
}

// At returns a copy of the counter at index.
func (s *Store) At(index int) (model.Counter, error) {
	if !s.valid(index) {
		return model.Counter{}, ErrOutOfRange
	}
	return s.counters[index], nil
}

// Counters returns a snapshot of the list in display order.
func (s *Store) Counters() []model.Counter {
	out := make([]model.Counter, len(s.counters))
	copy(out, s.counters)
	return out
}

// IndexOf resolves a counter id to its current display index.
func (s *Store) IndexOf(id string) (int, bool) {
	for i, c := range s.counters {
		if c.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Create appends a new counter and moves the cursor to it.
func (s *Store) Create() (model.Counter, error) {
	c := s.newCounter()
	s.counters = append(s.counters, c)
	s.current = len(s.counters) - 1
	return c, s.save()
}

// SetTitle trims title and stores it. A blank title is discarded and the old
// one kept; the return value reports whether anything changed.
func (s *Store) SetTitle(index int, title string) (bool, error) {
	if !s.valid(index) {
		return false, ErrOutOfRange
	}
	title = strings.TrimSpace(title)
	if title == "" || title == s.counters[index].Title {
		return false, nil
	}
	s.counters[index].Title = title
	return true, s.save()
}

// Increment adds exactly one to the counter's value.
func (s *Store) Increment(index int) (bool, error) {
	if !s.valid(index) {
		return false, ErrOutOfRange
	}
	s.counters[index].Value++
	return true, s.save()
}

// Decrement subtracts exactly one. At zero it is a no-op.
func (s *Store) Decrement(index int) (bool, error) {
	if !s.valid(index) {
		return false, ErrOutOfRange
	}
	if s.counters[index].Value == 0 {
		return false, nil
	}
	s.counters[index].Value--
	return true, s.save()
}

// Reset sets the value to zero. It is a no-op if the value already is zero.
func (s *Store) Reset(index int) (bool, error) {
	if !s.valid(index) {
		return false, ErrOutOfRange
	}
	if s.counters[index].Value == 0 {
		return false, nil
	}
	s.counters[index].Value = 0
	return true, s.save()
}

// SetStyle changes the counter's visual variant.
func (s *Store) SetStyle(index int, style model.Style) (bool, error) {
	if !s.valid(index) {
		return false, ErrOutOfRange
	}
	if !style.IsValid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidStyle, style)
	}
	if s.counters[index].Style == style {
		return false, nil
	}
	s.counters[index].Style = style
	return true, s.save()
}

// Delete removes the counter at index. The last remaining counter cannot be
// deleted. If the cursor was at or after the removed position it moves back
// by one, never below zero.
func (s *Store) Delete(index int) (model.Counter, error) {
	if !s.valid(index) {
		return model.Counter{}, ErrOutOfRange
	}
	if len(s.counters) == 1 {
		return model.Counter{}, ErrLastCounter
	}
	removed := s.counters[index]
	s.counters = append(s.counters[:index], s.counters[index+1:]...)
	if s.current >= index {
		s.current = max(0, s.current-1)
	}
	return removed, s.save()
}

func (s *Store) valid(index int) bool {
	return index >= 0 && index < len(s.counters)
}

func (s *Store) newCounter() model.Counter {
	style := model.DefaultStyle
	if s.opts.RandomStyle {
		style = model.Styles[s.intn(len(model.Styles))]
	}
	return model.NewCounter(style)
}

func (s *Store) save() error {
	if err := s.persist.Save(s.Counters()); err != nil {
		s.logger.Error("persisting counters", "error", err)
		return fmt.Errorf("persist counters: %w", err)
	}
	return nil
}
