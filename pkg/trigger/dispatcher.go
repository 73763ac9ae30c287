package trigger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kylerisse/dadboard/pkg/actionlog"
	"github.com/sirupsen/logrus"
)

// AcceptInviteTask is the scheduled task that accepts a pending invite.
const AcceptInviteTask = "DadBoard_AcceptInvite"

// ErrNoGame is returned when a launch is requested without a game.
var ErrNoGame = errors.New("trigger: no game selected")

// NoGameMessage is the status line shown for ErrNoGame.
const NoGameMessage = "Select a game first."

// LaunchTask returns the scheduled task name that launches appID.
func LaunchTask(appID string) string {
	return "DadBoard_LaunchGame_" + appID
}

// Recorder stores the outcome of each remote action.
type Recorder interface {
	Record(ctx context.Context, a actionlog.Action) error
}

// Report is the aggregate outcome of an operator action.
type Report struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Dispatcher runs the operator actions against the configured PCs. Actions
// are not retried or queued.
type Dispatcher struct {
	runner   Runner
	pcs      []string
	recorder Recorder
	logger   *logrus.Logger
}

// DispatcherOption is a functional option for configuring a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithRecorder records every task run.
func WithRecorder(r Recorder) DispatcherOption {
	return func(d *Dispatcher) {
		d.recorder = r
	}
}

// NewDispatcher creates a Dispatcher for the given PCs.
func NewDispatcher(runner Runner, pcs []string, logger *logrus.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		runner: runner,
		pcs:    append([]string(nil), pcs...),
		logger: logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// LaunchOnAll starts the launch task for appID on every PC, one after the
// other. Failures on some PCs do not stop the others.
func (d *Dispatcher) LaunchOnAll(ctx context.Context, appID string) (Report, error) {
	if appID == "" {
		return Report{}, ErrNoGame
	}

	task := LaunchTask(appID)
	var failures []string
	for _, pc := range d.pcs {
		out := d.run(ctx, actionlog.KindLaunch, pc, task)
		if !out.OK {
			failures = append(failures, fmt.Sprintf("%s: %s", pc, out.Message))
		}
	}

	if len(failures) > 0 {
		return Report{OK: false, Message: "Launch errors: " + strings.Join(failures, "; ")}, nil
	}
	return Report{OK: true, Message: "Launch triggered on all PCs"}, nil
}

// AcceptInvite starts the accept-invite task on pc.
func (d *Dispatcher) AcceptInvite(ctx context.Context, pc string) Report {
	out := d.run(ctx, actionlog.KindInvite, pc, AcceptInviteTask)
	if !out.OK {
		return Report{OK: false, Message: fmt.Sprintf("Accept invite error on %s: %s", pc, out.Message)}
	}
	return Report{OK: true, Message: fmt.Sprintf("Accept invite triggered on %s", pc)}
}

func (d *Dispatcher) run(ctx context.Context, kind, pc, task string) Outcome {
	start := time.Now()
	out := d.runner.Run(ctx, pc, task)
	if out.OK {
		d.logger.Infof("Task %s on %s triggered in %v", task, pc, time.Since(start))
	} else {
		d.logger.Warnf("Task %s on %s failed: %s", task, pc, out.Message)
	}

	if d.recorder != nil {
		err := d.recorder.Record(ctx, actionlog.Action{
			Kind:    kind,
			Target:  pc,
			Task:    task,
			OK:      out.OK,
			Message: out.Message,
			At:      start,
		})
		if err != nil {
			d.logger.Errorf("Failed to record %s action for %s: %v", kind, pc, err)
		}
	}
	return out
}
