// Package board polls every configured machine, keeps the latest set of
// records and renders them as table rows plus a headline "all ready"
// indicator.
//
// Each Refresh rebuilds the whole record set and swaps it in under a lock,
// so readers see either the previous cycle or the new one, never a mix.
package board

import (
	"context"
	"sync"
	"time"

	"github.com/kylerisse/dadboard/pkg/machine"
	"github.com/kylerisse/dadboard/pkg/status"
	"github.com/sirupsen/logrus"
)

// Lookup resolves a machine identifier to an address.
type Lookup interface {
	Lookup(ctx context.Context, name string) (string, error)
}

// Snapshot is a point-in-time copy of the board.
type Snapshot struct {
	AllReady  bool              `json:"allReady"`
	Headline  string            `json:"headline"`
	Rows      []Row             `json:"rows"`
	Records   []status.Record   `json:"records"`
	Addresses map[string]string `json:"addresses,omitempty"`
	Message   string            `json:"message"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Record returns the record for pc, if present.
func (s Snapshot) Record(pc string) (status.Record, bool) {
	for _, rec := range s.Records {
		if rec.PC == pc {
			return rec, true
		}
	}
	return status.Record{}, false
}

// Row returns the row for pc, if present.
func (s Snapshot) Row(pc string) (Row, bool) {
	for _, row := range s.Rows {
		if row.PC == pc {
			return row, true
		}
	}
	return Row{}, false
}

// Board holds the machines, the reader used to poll them and the result
// of the last cycle.
type Board struct {
	machines []machine.Machine
	reader   status.Reader
	resolver Lookup
	logger   *logrus.Logger

	mu        sync.RWMutex
	records   []status.Record
	rows      []Row
	allReady  bool
	addresses map[string]string
	message   string
	updatedAt time.Time
}

// Option is a functional option for configuring a Board.
type Option func(*Board)

// WithResolver enables address lookups for the machines.
func WithResolver(r Lookup) Option {
	return func(b *Board) {
		b.resolver = r
	}
}

// New creates a Board. Until the first Refresh every row is a placeholder
// and the headline reads NO.
func New(machines []machine.Machine, reader status.Reader, logger *logrus.Logger, opts ...Option) *Board {
	b := &Board{
		machines:  append([]machine.Machine(nil), machines...),
		reader:    reader,
		logger:    logger,
		rows:      make([]Row, len(machines)),
		addresses: make(map[string]string),
	}
	for i, m := range machines {
		b.rows[i] = PendingRow(m.ID)
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Machines returns the configured machines in display order.
func (b *Board) Machines() []machine.Machine {
	return append([]machine.Machine(nil), b.machines...)
}

// Machine returns the configured machine with the given identifier.
func (b *Board) Machine(pc string) (machine.Machine, bool) {
	for _, m := range b.machines {
		if m.ID == pc {
			return m, true
		}
	}
	return machine.Machine{}, false
}

// Refresh reads every machine in order, replaces the stored records and
// rows, and returns the new snapshot. A failing machine only affects its
// own record. The context is checked between machines so a shutdown does
// not wait for the whole cycle; an interrupted cycle keeps the previous
// state.
func (b *Board) Refresh(ctx context.Context) Snapshot {
	start := time.Now()
	records := make([]status.Record, 0, len(b.machines))
	rows := make([]Row, 0, len(b.machines))

	for _, m := range b.machines {
		if err := ctx.Err(); err != nil {
			b.logger.Debugf("Refresh interrupted before %s: %v", m.ID, err)
			return b.Snapshot()
		}
		rec := b.reader.Read(ctx, m)
		if !rec.Online {
			b.logger.Debugf("Machine %s offline: %s", m.ID, rec.Error)
		}
		records = append(records, rec)
		rows = append(rows, NewRow(rec))
	}

	allReady := AllReady(records)

	b.mu.Lock()
	if allReady != b.allReady {
		b.logger.Infof("%s", Headline(allReady))
	}
	b.records = records
	b.rows = rows
	b.allReady = allReady
	b.updatedAt = time.Now()
	b.mu.Unlock()

	b.logger.Debugf("Polled %d machine(s) in %v", len(b.machines), time.Since(start))
	return b.Snapshot()
}

// ResolveAddresses looks up every machine through the resolver, if one is
// configured. Failures keep the previously known address.
func (b *Board) ResolveAddresses(ctx context.Context) {
	if b.resolver == nil {
		return
	}
	resolved := make(map[string]string, len(b.machines))
	for _, m := range b.machines {
		addr, err := b.resolver.Lookup(ctx, m.ID)
		if err != nil {
			b.logger.Warnf("Address lookup for %s failed: %v", m.ID, err)
			continue
		}
		resolved[m.ID] = addr
	}

	b.mu.Lock()
	for id, addr := range resolved {
		b.addresses[id] = addr
	}
	b.mu.Unlock()
}

// SetMessage stores the status line of the last operator action.
func (b *Board) SetMessage(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.message = msg
}

// Snapshot returns a copy of the current board state that is independent
// of later refreshes.
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	records := make([]status.Record, len(b.records))
	for i, rec := range b.records {
		records[i] = rec.Clone()
	}

	var addresses map[string]string
	if len(b.addresses) > 0 {
		addresses = make(map[string]string, len(b.addresses))
		for k, v := range b.addresses {
			addresses[k] = v
		}
	}

	return Snapshot{
		AllReady:  b.allReady,
		Headline:  Headline(b.allReady),
		Rows:      append([]Row(nil), b.rows...),
		Records:   records,
		Addresses: addresses,
		Message:   b.message,
		UpdatedAt: b.updatedAt,
	}
}
