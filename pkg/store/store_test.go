package store

import (
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/smantzavinos/tally/pkg/model"
	"github.com/smantzavinos/tally/pkg/storage"
)

// recordingPersister counts saves and can be told to fail.
type recordingPersister struct {
	loaded []model.Counter
	saved  [][]model.Counter
	err    error
}

func (p *recordingPersister) Load() []model.Counter { return p.loaded }

func (p *recordingPersister) Save(counters []model.Counter) error {
	if p.err != nil {
		return p.err
	}
	p.saved = append(p.saved, counters)
	return nil
}

func (p *recordingPersister) last() []model.Counter {
	if len(p.saved) == 0 {
		return nil
	}
	return p.saved[len(p.saved)-1]
}

func quiet() Options {
	return Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func openWith(t *testing.T, counters ...model.Counter) (*Store, *recordingPersister) {
	t.Helper()
	p := &recordingPersister{loaded: counters}
	return Open(p, quiet()), p
}

func counter(id string, value int) model.Counter {
	return model.Counter{ID: id, Title: "Counter " + id, Value: value, Style: model.StyleBlue}
}

// =============================================================================
// Open
// =============================================================================

func TestOpen_SeedsDefaultCounter(t *testing.T) {
	s, p := openWith(t)

	if s.Len() != 1 {
		t.Fatalf("Expected 1 seeded counter, got %d", s.Len())
	}
	c, _ := s.At(0)
	if c.Title != model.DefaultTitle || c.Value != 0 || c.Style != model.DefaultStyle || c.ID == "" {
		t.Errorf("Unexpected seed counter: %+v", c)
	}
	if len(p.saved) != 1 {
		t.Errorf("Expected seed to be saved once, got %d saves", len(p.saved))
	}
}

func TestOpen_KeepsLoadedCounters(t *testing.T) {
	s, p := openWith(t, counter("a", 1), counter("b", 2))

	if s.Len() != 2 || s.Current() != 0 {
		t.Errorf("Len=%d Current=%d", s.Len(), s.Current())
	}
	if len(p.saved) != 0 {
		t.Error("Loading existing counters should not save")
	}
}

// =============================================================================
// Value operations
// =============================================================================

func TestIncrementDecrement_NeverNegative(t *testing.T) {
	s, _ := openWith(t, counter("a", 0))

	for i := 0; i < 3; i++ {
		if _, err := s.Increment(0); err != nil {
			t.Fatal(err)
		}
	}
	if c, _ := s.At(0); c.Value != 3 {
		t.Fatalf("Expected value 3, got %d", c.Value)
	}

	for i := 0; i < 5; i++ {
		before, _ := s.At(0)
		changed, err := s.Decrement(0)
		if err != nil {
			t.Fatal(err)
		}
		after, _ := s.At(0)
		if after.Value < 0 {
			t.Fatalf("Value went negative: %d", after.Value)
		}
		if changed && before.Value-after.Value != 1 {
			t.Errorf("Decrement changed value by %d", before.Value-after.Value)
		}
		if !changed && before.Value != 0 {
			t.Errorf("Decrement reported no change at value %d", before.Value)
		}
	}
	if c, _ := s.At(0); c.Value != 0 {
		t.Errorf("Expected value clamped at 0, got %d", c.Value)
	}
}

func TestDecrementAtZero_DoesNotSave(t *testing.T) {
	s, p := openWith(t, counter("a", 0))

	changed, err := s.Decrement(0)
	if changed || err != nil {
		t.Errorf("Decrement at zero = %v, %v", changed, err)
	}
	if len(p.saved) != 0 {
		t.Error("No-op decrement should not save")
	}
}

func TestReset_Idempotent(t *testing.T) {
	s, p := openWith(t, counter("a", 9))

	if changed, _ := s.Reset(0); !changed {
		t.Error("First reset should change value")
	}
	if changed, _ := s.Reset(0); changed {
		t.Error("Second reset should be a no-op")
	}
	if c, _ := s.At(0); c.Value != 0 {
		t.Errorf("Expected 0 after reset, got %d", c.Value)
	}
	if len(p.saved) != 1 {
		t.Errorf("Expected exactly one save, got %d", len(p.saved))
	}
}

// =============================================================================
// Title and style
// =============================================================================

func TestSetTitle(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantTitle string
		changed   bool
	}{
		{"plain", "Laps", "Laps", true},
		{"trimmed", "  Laps  ", "Laps", true},
		{"blank", "   ", "Counter a", false},
		{"empty", "", "Counter a", false},
		{"same", "Counter a", "Counter a", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, p := openWith(t, counter("a", 0))
			changed, err := s.SetTitle(0, tt.input)
			if err != nil {
				t.Fatal(err)
			}
			c, _ := s.At(0)
			if changed != tt.changed || c.Title != tt.wantTitle {
				t.Errorf("SetTitle(%q) = %v, title %q; want %v, %q", tt.input, changed, c.Title, tt.changed, tt.wantTitle)
			}
			if tt.changed && len(p.saved) != 1 {
				t.Errorf("Expected a save, got %d", len(p.saved))
			}
		})
	}
}

func TestSetStyle(t *testing.T) {
	s, _ := openWith(t, counter("a", 0))

	if changed, err := s.SetStyle(0, model.StyleOrange); !changed || err != nil {
		t.Errorf("SetStyle(orange) = %v, %v", changed, err)
	}
	if c, _ := s.At(0); c.Style != model.StyleOrange {
		t.Errorf("Style = %q", c.Style)
	}
	if _, err := s.SetStyle(0, "6"); !errors.Is(err, ErrInvalidStyle) {
		t.Errorf("Expected ErrInvalidStyle, got %v", err)
	}
}

// =============================================================================
// Create and delete
// =============================================================================

func TestCreate_AppendsAndSelects(t *testing.T) {
	s, p := openWith(t, counter("a", 5))

	c, err := s.Create()
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 2 || s.Current() != 1 {
		t.Errorf("Len=%d Current=%d after create", s.Len(), s.Current())
	}
	if got, _ := s.At(1); got.ID != c.ID || got.Value != 0 || got.Title != model.DefaultTitle {
		t.Errorf("Unexpected created counter: %+v", got)
	}
	if len(p.last()) != 2 {
		t.Errorf("Expected saved list of 2, got %d", len(p.last()))
	}
}

func TestCreate_RandomStyle(t *testing.T) {
	p := &recordingPersister{loaded: []model.Counter{counter("a", 0)}}
	opts := quiet()
	opts.RandomStyle = true
	s := Open(p, opts)
	s.intn = func(n int) int { return n - 1 }

	c, _ := s.Create()
	if c.Style != model.StyleOrange {
		t.Errorf("Expected last style from picker, got %q", c.Style)
	}
}

func TestDelete_LastCounterRejected(t *testing.T) {
	s, p := openWith(t, counter("a", 3))

	if _, err := s.Delete(0); !errors.Is(err, ErrLastCounter) {
		t.Fatalf("Expected ErrLastCounter, got %v", err)
	}
	if s.Len() != 1 || len(p.saved) != 0 {
		t.Error("Rejected delete must leave store unchanged")
	}
}

func TestDelete_CursorAdjustment(t *testing.T) {
	tests := []struct {
		name        string
		size        int
		current     int
		remove      int
		wantCurrent int
		wantIDs     []string
	}{
		{"remove current at front", 2, 0, 0, 0, []string{"1"}},
		{"remove before current", 3, 2, 0, 1, []string{"1", "2"}},
		{"remove current in middle", 3, 1, 1, 0, []string{"0", "2"}},
		{"remove after current", 3, 0, 2, 0, []string{"0", "1"}},
		{"remove last while on it", 3, 2, 2, 1, []string{"0", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cs []model.Counter
			for i := 0; i < tt.size; i++ {
				cs = append(cs, counter(string(rune('0'+i)), i))
			}
			s, _ := openWith(t, cs...)
			s.SetCurrent(tt.current)

			if _, err := s.Delete(tt.remove); err != nil {
				t.Fatal(err)
			}
			if s.Current() != tt.wantCurrent {
				t.Errorf("Current = %d, want %d", s.Current(), tt.wantCurrent)
			}
			var ids []string
			for _, c := range s.Counters() {
				ids = append(ids, c.ID)
			}
			if !reflect.DeepEqual(ids, tt.wantIDs) {
				t.Errorf("ids = %v, want %v", ids, tt.wantIDs)
			}
		})
	}
}

// =============================================================================
// Range checks and lookups
// =============================================================================

func TestOutOfRange(t *testing.T) {
	s, _ := openWith(t, counter("a", 1))

	ops := map[string]func() error{
		"increment": func() error { _, err := s.Increment(1); return err },
		"decrement": func() error { _, err := s.Decrement(-1); return err },
		"reset":     func() error { _, err := s.Reset(5); return err },
		"title":     func() error { _, err := s.SetTitle(1, "x"); return err },
		"style":     func() error { _, err := s.SetStyle(1, model.StyleRed); return err },
		"delete":    func() error { _, err := s.Delete(1); return err },
		"at":        func() error { _, err := s.At(1); return err },
	}
	for name, op := range ops {
		if err := op(); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("%s: expected ErrOutOfRange, got %v", name, err)
		}
	}
	if s.SetCurrent(3) || s.Current() != 0 {
		t.Error("SetCurrent should ignore invalid index")
	}
}

func TestIndexOf(t *testing.T) {
	s, _ := openWith(t, counter("a", 0), counter("b", 0), counter("c", 0))

	if i, ok := s.IndexOf("c"); !ok || i != 2 {
		t.Errorf("IndexOf(c) = %d, %v", i, ok)
	}
	s.Delete(0)
	if i, ok := s.IndexOf("c"); !ok || i != 1 {
		t.Errorf("IndexOf(c) after delete = %d, %v", i, ok)
	}
	if _, ok := s.IndexOf("a"); ok {
		t.Error("Deleted id should not resolve")
	}
}

func TestCounters_ReturnsCopy(t *testing.T) {
	s, _ := openWith(t, counter("a", 1))
	snap := s.Counters()
	snap[0].Value = 100
	if c, _ := s.At(0); c.Value != 1 {
		t.Error("Mutating snapshot leaked into store")
	}
}

// =============================================================================
// Persistence
// =============================================================================

func TestSaveFailure_KeepsMutation(t *testing.T) {
	s, p := openWith(t, counter("a", 0))
	p.err = errors.New("disk full")

	changed, err := s.Increment(0)
	if !changed || err == nil {
		t.Fatalf("Increment = %v, %v; want change with error", changed, err)
	}
	if c, _ := s.At(0); c.Value != 1 {
		t.Errorf("In-memory value should be kept, got %d", c.Value)
	}
}

func TestRoundTripThroughAdapter(t *testing.T) {
	kv := storage.NewMemoryKV()
	adapter := storage.NewAdapter(kv, "")
	s := Open(adapter, quiet())

	s.Create()
	s.SetTitle(1, "Water")
	s.Increment(1)
	s.Increment(1)
	s.SetStyle(1, model.StyleGreen)
	s.Create()
	s.Delete(0)

	reloaded := Open(storage.NewAdapter(kv, ""), quiet())
	if !reflect.DeepEqual(reloaded.Counters(), s.Counters()) {
		t.Errorf("Reloaded %+v, want %+v", reloaded.Counters(), s.Counters())
	}
}
