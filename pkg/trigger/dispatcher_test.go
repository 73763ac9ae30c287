package trigger

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kylerisse/dadboard/pkg/actionlog"
	"github.com/sirupsen/logrus"
)

type call struct {
	pc   string
	task string
}

// fakeRunner fails for PCs listed in failures and records every call.
type fakeRunner struct {
	failures map[string]string
	calls    []call
}

func (f *fakeRunner) Run(_ context.Context, pc, task string) Outcome {
	f.calls = append(f.calls, call{pc: pc, task: task})
	if msg, ok := f.failures[pc]; ok {
		return Outcome{OK: false, Message: msg}
	}
	return Outcome{OK: true, Message: "SUCCESS: Attempted to run the scheduled task."}
}

// memRecorder keeps recorded actions in memory.
type memRecorder struct {
	actions []actionlog.Action
	err     error
}

func (m *memRecorder) Record(_ context.Context, a actionlog.Action) error {
	m.actions = append(m.actions, a)
	return m.err
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestLaunchTask(t *testing.T) {
	if got := LaunchTask("548430"); got != "DadBoard_LaunchGame_548430" {
		t.Errorf("unexpected task name %q", got)
	}
}

func TestLaunchOnAll_Success(t *testing.T) {
	runner := &fakeRunner{}
	d := NewDispatcher(runner, []string{"kid1", "kid2"}, testLogger())

	rep, err := d.LaunchOnAll(context.Background(), "548430")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rep.OK || rep.Message != "Launch triggered on all PCs" {
		t.Errorf("unexpected report: %+v", rep)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(runner.calls))
	}
	for i, pc := range []string{"kid1", "kid2"} {
		if runner.calls[i].pc != pc || runner.calls[i].task != "DadBoard_LaunchGame_548430" {
			t.Errorf("call %d: unexpected %+v", i, runner.calls[i])
		}
	}
}

func TestLaunchOnAll_CollectsFailures(t *testing.T) {
	runner := &fakeRunner{failures: map[string]string{
		"kid1": "ERROR: The RPC server is unavailable.",
		"kid3": "Command failed with code 1",
	}}
	d := NewDispatcher(runner, []string{"kid1", "kid2", "kid3"}, testLogger())

	rep, err := d.LaunchOnAll(context.Background(), "892970")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Launch errors: kid1: ERROR: The RPC server is unavailable.; kid3: Command failed with code 1"
	if rep.OK || rep.Message != want {
		t.Errorf("expected %q, got %+v", want, rep)
	}
	if len(runner.calls) != 3 {
		t.Errorf("expected every PC to be attempted, got %d calls", len(runner.calls))
	}
}

func TestLaunchOnAll_NoGame(t *testing.T) {
	runner := &fakeRunner{}
	d := NewDispatcher(runner, []string{"kid1"}, testLogger())

	_, err := d.LaunchOnAll(context.Background(), "")
	if !errors.Is(err, ErrNoGame) {
		t.Errorf("expected ErrNoGame, got %v", err)
	}
	if len(runner.calls) != 0 {
		t.Error("expected no task to run")
	}
}

func TestAcceptInvite(t *testing.T) {
	tests := []struct {
		name     string
		failures map[string]string
		wantOK   bool
		want     string
	}{
		{"success", nil, true, "Accept invite triggered on kid2"},
		{"failure", map[string]string{"kid2": "access denied"}, false, "Accept invite error on kid2: access denied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{failures: tt.failures}
			d := NewDispatcher(runner, []string{"kid1", "kid2"}, testLogger())

			rep := d.AcceptInvite(context.Background(), "kid2")
			if rep.OK != tt.wantOK || rep.Message != tt.want {
				t.Errorf("expected ok=%v %q, got %+v", tt.wantOK, tt.want, rep)
			}
			if len(runner.calls) != 1 || runner.calls[0].task != AcceptInviteTask {
				t.Errorf("unexpected calls: %+v", runner.calls)
			}
		})
	}
}

func TestDispatcher_RecordsActions(t *testing.T) {
	rec := &memRecorder{}
	runner := &fakeRunner{failures: map[string]string{"kid2": "nope"}}
	d := NewDispatcher(runner, []string{"kid1", "kid2"}, testLogger(), WithRecorder(rec))

	if _, err := d.LaunchOnAll(context.Background(), "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d.AcceptInvite(context.Background(), "kid1")

	if len(rec.actions) != 3 {
		t.Fatalf("expected 3 recorded actions, got %d", len(rec.actions))
	}
	if rec.actions[0].Kind != actionlog.KindLaunch || !rec.actions[0].OK {
		t.Errorf("unexpected first action: %+v", rec.actions[0])
	}
	if rec.actions[1].Target != "kid2" || rec.actions[1].OK || rec.actions[1].Message != "nope" {
		t.Errorf("unexpected second action: %+v", rec.actions[1])
	}
	if rec.actions[2].Kind != actionlog.KindInvite || rec.actions[2].Task != AcceptInviteTask {
		t.Errorf("unexpected third action: %+v", rec.actions[2])
	}
}

func TestDispatcher_RecorderErrorDoesNotFailAction(t *testing.T) {
	rec := &memRecorder{err: errors.New("disk full")}
	d := NewDispatcher(&fakeRunner{}, []string{"kid1"}, testLogger(), WithRecorder(rec))

	rep := d.AcceptInvite(context.Background(), "kid1")
	if !rep.OK {
		t.Errorf("expected success despite recorder error, got %+v", rep)
	}
	if !strings.Contains(rep.Message, "kid1") {
		t.Errorf("unexpected message %q", rep.Message)
	}
}
