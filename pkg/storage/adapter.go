package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/smantzavinos/tally/pkg/model"
)

// DefaultKey is the entry the counter list is stored under.
const DefaultKey = "counters"

// Adapter reads and writes the whole counter list under one KV key.
type Adapter struct {
	kv     KV
	key    string
	logger *slog.Logger
}

// NewAdapter returns an adapter over kv. An empty key selects DefaultKey.
func NewAdapter(kv KV, key string) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	return &Adapter{kv: kv, key: key, logger: slog.Default()}
}

// SetLogger sets a custom logger for load warnings.
func (a *Adapter) SetLogger(logger *slog.Logger) {
	a.logger = logger
}

// Key returns the KV entry name.
func (a *Adapter) Key() string { return a.key }

// Load returns the stored counters. A missing entry, a read failure or
// unparseable data all yield an empty list; the caller seeds a default.
func (a *Adapter) Load() []model.Counter {
	raw, ok, err := a.kv.Get(a.key)
	if err != nil {
		a.logger.Warn("counter load failed, starting empty", "key", a.key, "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	counters, err := Decode(raw)
	if err != nil {
		a.logger.Warn("stored counters unreadable, starting empty", "key", a.key, "error", err)
		return nil
	}
	return counters
}

// Save overwrites the stored list with counters in a single KV write.
func (a *Adapter) Save(counters []model.Counter) error {
	raw, err := Encode(counters)
	if err != nil {
		return err
	}
	if err := a.kv.Set(a.key, raw); err != nil {
		return fmt.Errorf("save counters: %w", err)
	}
	return nil
}

// Encode serializes counters as a JSON array of {id, title, value, style}.
func Encode(counters []model.Counter) (string, error) {
	if counters == nil {
		counters = []model.Counter{}
	}
	raw, err := json.Marshal(counters)
	if err != nil {
		return "", fmt.Errorf("marshaling counters: %w", err)
	}
	return string(raw), nil
}

// Decode parses a stored counter array. Only a value that is not a JSON
// array is an error; individual records are repaired field by field:
// missing or invalid fields fall back to defaults, extra fields are ignored,
// non-object elements are dropped and duplicate ids are re-issued.
func Decode(data string) ([]model.Counter, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(data), &elems); err != nil {
		return nil, fmt.Errorf("parsing counters: %w", err)
	}

	seen := make(map[string]bool, len(elems))
	counters := make([]model.Counter, 0, len(elems))
	for _, elem := range elems {
		c, ok := decodeCounter(elem)
		if !ok {
			continue
		}
		if seen[c.ID] {
			c.ID = model.NewID()
		}
		seen[c.ID] = true
		counters = append(counters, c)
	}
	return counters, nil
}

func decodeCounter(raw json.RawMessage) (model.Counter, bool) {
	var fields map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return model.Counter{}, false
	}

	c := model.Counter{
		ID:    decodeID(fields["id"]),
		Title: decodeTitle(fields["title"]),
		Value: decodeValue(fields["value"]),
		Style: decodeStyle(fields["style"]),
	}
	return c, true
}

func decodeID(raw json.RawMessage) string {
	if s, ok := decodeText(raw); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return model.NewID()
}

func decodeTitle(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return model.DefaultTitle
}

func decodeValue(raw json.RawMessage) int {
	s, ok := decodeText(raw)
	if !ok {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return max(n, 0)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

func decodeStyle(raw json.RawMessage) model.Style {
	s, ok := decodeText(raw)
	if !ok {
		return model.DefaultStyle
	}
	if st, err := model.ParseStyle(s); err == nil {
		return st
	}
	return model.DefaultStyle
}

// decodeText accepts a JSON string or number and returns its text form.
func decodeText(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}
