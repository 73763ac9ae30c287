package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kylerisse/dadboard/pkg/board"
	"github.com/kylerisse/dadboard/pkg/config"
	"github.com/kylerisse/dadboard/pkg/machine"
	"github.com/kylerisse/dadboard/pkg/status"
	"github.com/kylerisse/dadboard/pkg/trigger"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// mapReader returns canned records and counts reads.
type mapReader struct {
	records map[string]status.Record
	reads   atomic.Int64
}

func (m *mapReader) Read(_ context.Context, mc machine.Machine) status.Record {
	m.reads.Add(1)
	if rec, ok := m.records[mc.ID]; ok {
		return rec
	}
	return status.Offline(mc.ID, os.ErrNotExist)
}

// fakeRunner records every task run and fails for the PCs in fail.
type fakeRunner struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]string
}

func (f *fakeRunner) Run(_ context.Context, pc, task string) trigger.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, pc+" "+task)
	if msg, ok := f.fail[pc]; ok {
		return trigger.Outcome{OK: false, Message: msg}
	}
	return trigger.Outcome{OK: true}
}

func readyRecord(pc string) status.Record {
	age := 10.0
	now := time.Now().UTC()
	return status.Record{PC: pc, Online: true, LastUpdate: &now, AgeSeconds: &age, SteamRunning: true, Ready: true}
}

var testGames = []config.Game{
	{Name: "Deep Rock Galactic", AppID: "548430"},
	{Name: "Valheim", AppID: "892970"},
}

func newTestServer(t *testing.T, reader status.Reader, runner trigger.Runner, opts ...Option) *Server {
	t.Helper()
	logger := testLogger()
	machines := []machine.Machine{
		machine.New("kid1", "DadBoard$", "status.json", ""),
		machine.New("kid2", "DadBoard$", "status.json", ""),
	}
	b := board.New(machines, reader, logger)
	d := trigger.NewDispatcher(runner, []string{"kid1", "kid2"}, logger)
	opts = append([]Option{WithGames(testGames)}, opts...)
	s, err := NewServer(b, d, logger, opts...)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return s
}

func TestNewServer_Validation(t *testing.T) {
	logger := testLogger()
	b := board.New(nil, &mapReader{}, logger)
	d := trigger.NewDispatcher(&fakeRunner{}, nil, logger)

	if _, err := NewServer(nil, d, logger); err == nil {
		t.Error("expected error for nil board")
	}
	if _, err := NewServer(b, nil, logger); err == nil {
		t.Error("expected error for nil dispatcher")
	}
	if _, err := NewServer(b, d, logger, WithPollInterval(0)); err == nil {
		t.Error("expected error for zero poll interval")
	}
	if _, err := NewServer(b, d, logger, WithListen("")); err == nil {
		t.Error("expected error for empty listen address")
	}
	if _, err := NewServer(b, d, logger, WithRateLimiter(nil)); err == nil {
		t.Error("expected error for nil limiter")
	}
}

func TestRequestRefresh_QueuesOnlyOne(t *testing.T) {
	s := newTestServer(t, &mapReader{}, &fakeRunner{})
	if !s.RequestRefresh() {
		t.Fatal("expected first request to be queued")
	}
	if s.RequestRefresh() {
		t.Error("expected second request to be rejected while one is queued")
	}
}

func TestStartStop_PollsAndServes(t *testing.T) {
	reader := &mapReader{records: map[string]status.Record{"kid1": readyRecord("kid1"), "kid2": readyRecord("kid2")}}
	s := newTestServer(t, reader, &fakeRunner{}, WithListen("127.0.0.1:0"), WithPollInterval(20*time.Millisecond))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if !s.board.Snapshot().AllReady {
		t.Error("expected the initial refresh to run before Start returns")
	}

	deadline := time.Now().Add(2 * time.Second)
	for reader.reads.Load() < 6 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if reader.reads.Load() < 6 {
		t.Errorf("expected periodic polling, got %d reads", reader.reads.Load())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}

func TestStartStop_ManualRefresh(t *testing.T) {
	reader := &mapReader{}
	s := newTestServer(t, reader, &fakeRunner{}, WithListen("127.0.0.1:0"), WithPollInterval(time.Hour))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	initial := reader.reads.Load()
	if initial != 2 {
		t.Errorf("expected 2 reads from the initial refresh, got %d", initial)
	}

	s.RequestRefresh()
	deadline := time.Now().Add(2 * time.Second)
	for reader.reads.Load() == initial && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if reader.reads.Load() == initial {
		t.Error("expected manual refresh to trigger a poll cycle")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}

func TestStart_ListenError(t *testing.T) {
	s := newTestServer(t, &mapReader{}, &fakeRunner{}, WithListen("256.0.0.1:99999"))
	if err := s.Start(context.Background()); err == nil {
		t.Error("expected listen error")
	}
}

func TestStaticServing_Index(t *testing.T) {
	s := newTestServer(t, &mapReader{}, &fakeRunner{})
	handler := s.routes()

	for path, want := range map[string]string{"/": "<title>DadBoard</title>", "/app.js": "/api/launch"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, w.Code)
		}
		if !strings.Contains(w.Body.String(), want) {
			t.Errorf("%s: expected body to contain %q", path, want)
		}
	}
}
