package status

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/kylerisse/dadboard/pkg/machine"
)

// DefaultStaleAfter is how old a report may get before it counts as stale.
const DefaultStaleAfter = 5 * time.Minute

// Reader produces a Record for a machine.
type Reader interface {
	Read(ctx context.Context, m machine.Machine) Record
}

// FileReader implements Reader by reading the machine's status file from
// its share. There are no retries: a failed read is only attempted again
// on the next poll.
type FileReader struct {
	staleAfter time.Duration
	now        func() time.Time
}

// Option is a functional option for configuring a FileReader.
type Option func(*FileReader) error

// WithStaleAfter sets the staleness threshold.
func WithStaleAfter(d time.Duration) Option {
	return func(r *FileReader) error {
		if d < 0 {
			return fmt.Errorf("stale threshold must not be negative, got %v", d)
		}
		r.staleAfter = d
		return nil
	}
}

// WithClock replaces the time source used to compute ages.
func WithClock(now func() time.Time) Option {
	return func(r *FileReader) error {
		if now == nil {
			return fmt.Errorf("clock must not be nil")
		}
		r.now = now
		return nil
	}
}

// NewFileReader creates a FileReader with the given options.
func NewFileReader(opts ...Option) (*FileReader, error) {
	r := &FileReader{
		staleAfter: DefaultStaleAfter,
		now:        time.Now,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("status: %w", err)
		}
	}
	return r, nil
}

// Read loads and evaluates the status file of m. It never fails: any read
// or parse error is reported as an offline Record.
func (r *FileReader) Read(_ context.Context, m machine.Machine) Record {
	path := m.StatusPath()

	data, err := os.ReadFile(path)
	if err != nil {
		return Offline(m.ID, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Offline(m.ID, fmt.Errorf("parse %s: %w", path, err))
	}
	if doc == nil {
		return Offline(m.ID, fmt.Errorf("parse %s: status is not a JSON object", path))
	}

	rec := Record{PC: m.ID, Online: true}

	steam := object(doc["steam"])
	game := object(doc["game"])
	invite := object(doc["invite"])

	rec.SteamRunning = truthy(steam["running"])
	rec.GameRunning = truthy(game["running"])
	rec.GameName = text(game["name"])
	rec.LaunchResult = text(game["launchResult"])
	rec.InviteResult = text(invite["result"])

	lastUpdate, ok := parseTimestamp(doc["lastUpdate"])
	if !ok {
		if info, err := os.Stat(path); err == nil {
			lastUpdate, ok = info.ModTime().UTC(), true
		}
	}

	if ok {
		age := r.now().Sub(lastUpdate).Seconds()
		rec.LastUpdate = &lastUpdate
		rec.AgeSeconds = &age
		rec.Stale = age > r.staleAfter.Seconds()
	}

	rec.Ready = rec.SteamRunning && rec.GameRunning && !rec.Stale
	return rec
}

// timestampLayouts are tried in order. Zone-less forms are taken as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTimestamp parses an ISO-8601 lastUpdate value. A trailing Z and
// numeric offsets are both accepted.
func parseTimestamp(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// object returns v as a JSON object, or an empty one when it is anything else.
func object(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// truthy follows the loose boolean reading agents rely on: non-zero
// numbers, non-empty strings and non-empty containers count as true.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return false
	}
}

// text returns v as a display string, or nil when it is absent or empty.
func text(v any) *string {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(t)
	default:
		return nil
	}
	if s == "" {
		return nil
	}
	return &s
}
