package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/kylerisse/dadboard/pkg/machine"
	"github.com/kylerisse/dadboard/pkg/status"
	"github.com/sirupsen/logrus"
)

// stubReader returns canned records keyed by machine ID. Machines without
// an entry read as offline.
type stubReader struct {
	records map[string]status.Record
	calls   []string
}

func (s *stubReader) Read(_ context.Context, m machine.Machine) status.Record {
	s.calls = append(s.calls, m.ID)
	rec, ok := s.records[m.ID]
	if !ok {
		return status.Offline(m.ID, errors.New("unreachable"))
	}
	rec.PC = m.ID
	return rec
}

// stubLookup resolves names from a fixed table.
type stubLookup map[string]string

func (s stubLookup) Lookup(_ context.Context, name string) (string, error) {
	if addr, ok := s[name]; ok {
		return addr, nil
	}
	return "", fmt.Errorf("no such host %s", name)
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func machines(ids ...string) []machine.Machine {
	out := make([]machine.Machine, len(ids))
	for i, id := range ids {
		out[i] = machine.New(id, "DadBoard$", "status.json", "")
	}
	return out
}

func ready() status.Record {
	age := 10.0
	return status.Record{Online: true, SteamRunning: true, GameRunning: true, AgeSeconds: &age, Ready: true}
}

func TestRefresh_AllReady(t *testing.T) {
	reader := &stubReader{records: map[string]status.Record{"a": ready(), "b": ready()}}
	b := New(machines("a", "b"), reader, testLogger())

	snap := b.Refresh(context.Background())

	if !snap.AllReady {
		t.Error("expected all ready")
	}
	if snap.Headline != "All PCs Ready: YES" {
		t.Errorf("unexpected headline %q", snap.Headline)
	}
	if len(snap.Rows) != 2 || len(snap.Records) != 2 {
		t.Fatalf("expected 2 rows and records, got %d/%d", len(snap.Rows), len(snap.Records))
	}
	if snap.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be set")
	}
}

func TestRefresh_EmptyMachineListIsVacuouslyReady(t *testing.T) {
	b := New(nil, &stubReader{}, testLogger())
	snap := b.Refresh(context.Background())
	if !snap.AllReady {
		t.Error("expected vacuous all ready for no machines")
	}
	if len(snap.Rows) != 0 {
		t.Errorf("expected no rows, got %d", len(snap.Rows))
	}
}

func TestRefresh_OneOfflineMachineLeavesOthersUnaffected(t *testing.T) {
	reader := &stubReader{records: map[string]status.Record{"a": ready(), "c": ready()}}
	b := New(machines("a", "b", "c"), reader, testLogger())

	snap := b.Refresh(context.Background())

	if snap.AllReady {
		t.Error("expected not all ready with one offline machine")
	}
	for _, pc := range []string{"a", "c"} {
		rec, ok := snap.Record(pc)
		if !ok {
			t.Fatalf("missing record for %s", pc)
		}
		if !rec.Online || !rec.Ready {
			t.Errorf("%s: expected online and ready, got %+v", pc, rec)
		}
	}
	rec, _ := snap.Record("b")
	if rec.Online || rec.Ready {
		t.Errorf("b: expected offline and not ready, got %+v", rec)
	}
}

func TestRefresh_OfflineNeverReady(t *testing.T) {
	reader := &stubReader{records: map[string]status.Record{}}
	b := New(machines("a", "b", "c"), reader, testLogger())
	snap := b.Refresh(context.Background())
	for _, rec := range snap.Records {
		if !rec.Online && rec.Ready {
			t.Errorf("%s: offline record is ready", rec.PC)
		}
	}
}

func TestRefresh_PollsInConfigOrder(t *testing.T) {
	reader := &stubReader{records: map[string]status.Record{}}
	b := New(machines("z", "a", "m"), reader, testLogger())
	snap := b.Refresh(context.Background())

	want := []string{"z", "a", "m"}
	for i, pc := range want {
		if reader.calls[i] != pc {
			t.Errorf("call %d: expected %s, got %s", i, pc, reader.calls[i])
		}
		if snap.Rows[i].PC != pc {
			t.Errorf("row %d: expected %s, got %s", i, pc, snap.Rows[i].PC)
		}
	}
}

func TestRefresh_CancelledContextKeepsPreviousState(t *testing.T) {
	reader := &stubReader{records: map[string]status.Record{"a": ready()}}
	b := New(machines("a"), reader, testLogger())
	b.Refresh(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reader.records = map[string]status.Record{}
	snap := b.Refresh(ctx)

	if !snap.AllReady {
		t.Error("expected interrupted refresh to keep the previous state")
	}
}

func TestNew_PendingRowsBeforeFirstRefresh(t *testing.T) {
	b := New(machines("a"), &stubReader{}, testLogger())
	snap := b.Snapshot()
	if snap.AllReady {
		t.Error("expected NO before first refresh")
	}
	if len(snap.Rows) != 1 || snap.Rows[0].PC != "a" || snap.Rows[0].Online != Placeholder {
		t.Errorf("unexpected pending rows: %+v", snap.Rows)
	}
}

func TestSnapshot_IndependentOfLaterRefresh(t *testing.T) {
	reader := &stubReader{records: map[string]status.Record{"a": ready()}}
	b := New(machines("a"), reader, testLogger())
	snap := b.Refresh(context.Background())

	reader.records = map[string]status.Record{}
	b.Refresh(context.Background())

	if !snap.AllReady || !snap.Records[0].Ready {
		t.Error("snapshot should be independent of subsequent refreshes")
	}
}

func TestSetMessage(t *testing.T) {
	b := New(nil, &stubReader{}, testLogger())
	b.SetMessage("Launch triggered on all PCs")
	if got := b.Snapshot().Message; got != "Launch triggered on all PCs" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestMachineLookup(t *testing.T) {
	b := New(machines("a", "b"), &stubReader{}, testLogger())
	if _, ok := b.Machine("b"); !ok {
		t.Error("expected to find b")
	}
	if _, ok := b.Machine("nope"); ok {
		t.Error("expected unknown machine to be missing")
	}
	if len(b.Machines()) != 2 {
		t.Errorf("expected 2 machines, got %d", len(b.Machines()))
	}
}

func TestResolveAddresses(t *testing.T) {
	b := New(machines("a", "b"), &stubReader{}, testLogger(), WithResolver(stubLookup{"a": "10.0.0.5"}))
	b.ResolveAddresses(context.Background())

	snap := b.Snapshot()
	if snap.Addresses["a"] != "10.0.0.5" {
		t.Errorf("expected address for a, got %q", snap.Addresses["a"])
	}
	if _, ok := snap.Addresses["b"]; ok {
		t.Error("expected no address for unresolvable b")
	}
}

func TestResolveAddresses_NoResolver(t *testing.T) {
	b := New(machines("a"), &stubReader{}, testLogger())
	b.ResolveAddresses(context.Background())
	if b.Snapshot().Addresses != nil {
		t.Error("expected no addresses without a resolver")
	}
}

func TestSummarize(t *testing.T) {
	stale := ready()
	stale.Stale = true
	stale.Ready = false
	records := []status.Record{ready(), stale, status.Offline("x", nil)}

	s := Summarize(records)
	if s.Total != 3 || s.Online != 2 || s.Ready != 1 || s.Stale != 1 || s.AllReady {
		t.Errorf("unexpected summary: %+v", s)
	}
}

func TestAllReady_Empty(t *testing.T) {
	if !AllReady(nil) {
		t.Error("expected vacuous truth for no records")
	}
}
