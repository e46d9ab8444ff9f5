package storage_test

import (
	"io"
	"log/slog"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/smantzavinos/tally/pkg/model"
	"github.com/smantzavinos/tally/pkg/storage"
)

func quietAdapter(kv storage.KV) *storage.Adapter {
	a := storage.NewAdapter(kv, "")
	a.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return a
}

// =============================================================================
// Adapter round trips
// =============================================================================

func TestAdapter_LoadMissingKey(t *testing.T) {
	a := quietAdapter(storage.NewMemoryKV())
	if got := a.Load(); len(got) != 0 {
		t.Errorf("Expected empty load for missing key, got %v", got)
	}
}

func TestAdapter_RoundTrip(t *testing.T) {
	backends := map[string]func(t *testing.T) storage.KV{
		"memory": func(t *testing.T) storage.KV { return storage.NewMemoryKV() },
		"file": func(t *testing.T) storage.KV {
			return storage.NewFileKV(filepath.Join(t.TempDir(), "tally.json"))
		},
		"sqlite": func(t *testing.T) storage.KV {
			kv, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "tally.db"))
			if err != nil {
				t.Fatalf("OpenSQLite: %v", err)
			}
			t.Cleanup(func() { kv.Close() })
			return kv
		},
	}

	counters := []model.Counter{
		{ID: "a", Title: "Push-ups", Value: 12, Style: model.StyleGreen},
		{ID: "b", Title: "Coffee ☕", Value: 0, Style: model.StyleOrange},
	}

	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			a := quietAdapter(open(t))
			if err := a.Save(counters); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got := a.Load()
			if !reflect.DeepEqual(got, counters) {
				t.Errorf("Load() = %+v, want %+v", got, counters)
			}

			// Overwrite with a shorter list
			if err := a.Save(counters[:1]); err != nil {
				t.Fatalf("Save: %v", err)
			}
			if got := a.Load(); len(got) != 1 || got[0].ID != "a" {
				t.Errorf("Expected overwrite to leave only counter a, got %+v", got)
			}
		})
	}
}

func TestAdapter_CorruptDataLoadsEmpty(t *testing.T) {
	kv := storage.NewMemoryKV()
	kv.Set(storage.DefaultKey, "{not json")
	a := quietAdapter(kv)

	if got := a.Load(); len(got) != 0 {
		t.Errorf("Expected empty load for corrupt data, got %v", got)
	}
}

func TestAdapter_CustomKey(t *testing.T) {
	kv := storage.NewMemoryKV()
	a := storage.NewAdapter(kv, "work")
	if a.Key() != "work" {
		t.Fatalf("Key() = %q", a.Key())
	}
	if err := a.Save([]model.Counter{{ID: "x", Title: "t", Style: model.StyleBlue}}); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := kv.Get(storage.DefaultKey); ok {
		t.Error("Default key should be untouched")
	}
	if raw, ok, _ := kv.Get("work"); !ok || !strings.Contains(raw, `"id":"x"`) {
		t.Errorf("Expected data under custom key, got %q", raw)
	}
}

// =============================================================================
// Tolerant decoding
// =============================================================================

func TestDecode_WireFormat(t *testing.T) {
	raw, err := storage.Encode([]model.Counter{{ID: "1", Title: "A", Value: 3, Style: model.StyleRed}})
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"id":"1","title":"A","value":3,"style":"4"}]`
	if raw != want {
		t.Errorf("Encode = %s, want %s", raw, want)
	}

	empty, _ := storage.Encode(nil)
	if empty != "[]" {
		t.Errorf("Encode(nil) = %s, want []", empty)
	}
}

func TestDecode_FallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantTitle string
		wantValue int
		wantStyle model.Style
	}{
		{"all present", `[{"id":"x","title":"T","value":4,"style":"2"}]`, "T", 4, model.StyleGreen},
		{"missing title", `[{"id":"x","value":4,"style":"2"}]`, model.DefaultTitle, 4, model.StyleGreen},
		{"blank title", `[{"id":"x","title":"  ","value":4}]`, model.DefaultTitle, 4, model.DefaultStyle},
		{"missing value", `[{"id":"x","title":"T"}]`, "T", 0, model.DefaultStyle},
		{"negative value", `[{"id":"x","value":-3}]`, model.DefaultTitle, 0, model.DefaultStyle},
		{"fractional value", `[{"id":"x","value":2.5}]`, model.DefaultTitle, 0, model.DefaultStyle},
		{"string value", `[{"id":"x","value":"7"}]`, model.DefaultTitle, 7, model.DefaultStyle},
		{"numeric style", `[{"id":"x","style":3}]`, model.DefaultTitle, 0, model.StylePurple},
		{"unknown style", `[{"id":"x","style":"9"}]`, model.DefaultTitle, 0, model.DefaultStyle},
		{"extra fields", `[{"id":"x","title":"T","value":1,"style":"5","color":"red"}]`, "T", 1, model.StyleOrange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := storage.Decode(tt.input)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("Expected 1 counter, got %d", len(got))
			}
			c := got[0]
			if c.Title != tt.wantTitle || c.Value != tt.wantValue || c.Style != tt.wantStyle {
				t.Errorf("Decode(%s) = %+v", tt.input, c)
			}
		})
	}
}

func TestDecode_RepairsIDs(t *testing.T) {
	got, err := storage.Decode(`[{"title":"no id"},{"id":"dup"},{"id":"dup"},{"id":42}]`)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Fatalf("Expected 4 counters, got %d", len(got))
	}
	if got[0].ID == "" {
		t.Error("Missing id should be generated")
	}
	if got[1].ID != "dup" || got[2].ID == "dup" {
		t.Errorf("Duplicate id should be re-issued, got %q and %q", got[1].ID, got[2].ID)
	}
	if got[3].ID != "42" {
		t.Errorf("Numeric id should be kept as text, got %q", got[3].ID)
	}
}

func TestDecode_SkipsNonObjects(t *testing.T) {
	got, err := storage.Decode(`[1, "two", null, {"id":"ok"}]`)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "ok" {
		t.Errorf("Expected only the object element, got %+v", got)
	}
}

func TestDecode_RejectsNonArray(t *testing.T) {
	for _, input := range []string{`{}`, `"counters"`, ``, `[`} {
		if _, err := storage.Decode(input); err == nil {
			t.Errorf("Decode(%q) should fail", input)
		}
	}
}
