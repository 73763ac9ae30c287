// Package status reads the per-machine status files written by the agent
// on each PC and turns them into normalized Records.
//
// A Record is recomputed from scratch on every poll. Any failure to reach
// or parse a status file produces an offline Record; unreachable shares,
// missing files and malformed content are deliberately not told apart.
package status

import (
	"time"
)

// Record is the computed state of one machine for a single poll cycle.
type Record struct {
	// PC is the machine identifier the record belongs to.
	PC string `json:"pc"`

	// Online is true iff the status file was readable and parseable.
	Online bool `json:"online"`

	// Error holds the read or parse failure when Online is false.
	Error string `json:"error,omitempty"`

	// LastUpdate is the declared update time, or the file modification
	// time when the declared one is missing or unparsable.
	LastUpdate *time.Time `json:"lastUpdate,omitempty"`

	// AgeSeconds is the time between LastUpdate and the poll.
	AgeSeconds *float64 `json:"ageSeconds,omitempty"`

	// Stale is true iff AgeSeconds exceeds the configured threshold.
	Stale bool `json:"stale"`

	SteamRunning bool    `json:"steamRunning"`
	GameRunning  bool    `json:"gameRunning"`
	GameName     *string `json:"gameName,omitempty"`
	LaunchResult *string `json:"launchResult,omitempty"`
	InviteResult *string `json:"inviteResult,omitempty"`

	// Ready is SteamRunning && GameRunning && !Stale. Always false offline.
	Ready bool `json:"ready"`
}

// Offline returns the Record for a machine whose status file could not be
// read or parsed.
func Offline(pc string, err error) Record {
	r := Record{PC: pc}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// Clone returns a deep copy of the record so callers can hand it out
// without sharing pointers.
func (r Record) Clone() Record {
	c := r
	if r.LastUpdate != nil {
		t := *r.LastUpdate
		c.LastUpdate = &t
	}
	if r.AgeSeconds != nil {
		a := *r.AgeSeconds
		c.AgeSeconds = &a
	}
	c.GameName = cloneString(r.GameName)
	c.LaunchResult = cloneString(r.LaunchResult)
	c.InviteResult = cloneString(r.InviteResult)
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
