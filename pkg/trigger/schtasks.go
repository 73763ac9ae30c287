// Package trigger starts the scheduled tasks the agents register on each PC
// (launch a game, accept a pending invite) and reports the outcome as a
// one-line status message.
package trigger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultBinary is the Windows task scheduler CLI.
const DefaultBinary = "schtasks"

// Outcome is the result of running one remote task.
type Outcome struct {
	OK      bool
	Message string
}

// Runner runs a named scheduled task on a remote PC.
type Runner interface {
	Run(ctx context.Context, pc, task string) Outcome
}

// Schtasks implements Runner by shelling out to schtasks /Run.
type Schtasks struct {
	binary string
}

// SchtasksOption is a functional option for configuring Schtasks.
type SchtasksOption func(*Schtasks) error

// WithBinary sets the executable used instead of schtasks.
func WithBinary(path string) SchtasksOption {
	return func(s *Schtasks) error {
		if path == "" {
			return fmt.Errorf("binary must not be empty")
		}
		s.binary = path
		return nil
	}
}

// NewSchtasks creates a Schtasks runner.
func NewSchtasks(opts ...SchtasksOption) (*Schtasks, error) {
	s := &Schtasks{binary: DefaultBinary}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("trigger: %w", err)
		}
	}
	return s, nil
}

// Run executes `schtasks /Run /S pc /TN task`. On a non-zero exit the
// message is stderr, else stdout, else the exit code.
func (s *Schtasks) Run(ctx context.Context, pc, task string) Outcome {
	cmd := exec.CommandContext(ctx, s.binary, "/Run", "/S", pc, "/TN", task)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := strings.TrimSpace(stdout.String())
	errOut := strings.TrimSpace(stderr.String())

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return Outcome{OK: false, Message: err.Error()}
		}
		switch {
		case errOut != "":
			return Outcome{OK: false, Message: errOut}
		case out != "":
			return Outcome{OK: false, Message: out}
		default:
			return Outcome{OK: false, Message: fmt.Sprintf("Command failed with code %d", exitErr.ExitCode())}
		}
	}

	return Outcome{OK: true, Message: out}
}
