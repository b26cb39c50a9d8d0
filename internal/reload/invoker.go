// Package reload signals the gateway to pick up regenerated whitelist
// artifacts. The preferred path is a deployment-provided helper script; when
// the helper is missing the gateway binary is signalled directly.
package reload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"time"

	"github.com/charmbracelet/log"
)

const DefaultTimeout = 30 * time.Second

// Stages of the reload attempt, reported in Error.
const (
	StageHelper   = "helper"
	StageFallback = "fallback"
)

// Error describes a failed reload attempt. Timeout distinguishes a hung
// helper from one that exited non-zero.
type Error struct {
	Stage   string
	Timeout bool
	Stderr  string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("reload: %s timed out", e.Stage)
	case e.Stderr != "":
		return fmt.Sprintf("reload: %s failed: %s", e.Stage, e.Stderr)
	default:
		return fmt.Sprintf("reload: %s failed: %v", e.Stage, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Invoker struct {
	// HelperPath is the reload helper executable, invoked as
	// `<helper> reload`.
	HelperPath string
	Timeout    time.Duration

	// FallbackCommand is executed when the helper is absent. Defaults to
	// signalling the gateway process directly.
	FallbackCommand []string
}

func New(helperPath string, timeout time.Duration) *Invoker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Invoker{
		HelperPath:      helperPath,
		Timeout:         timeout,
		FallbackCommand: []string{"nginx", "-s", "reload"},
	}
}

// Reload walks the helper-then-fallback chain. The helper not existing is the
// only condition that moves to the fallback; a helper that ran and failed is
// reported as-is so operators see its stderr.
func (inv *Invoker) Reload(ctx context.Context) error {
	err := inv.runHelper(ctx)
	if err == nil {
		log.Info("Whitelist configuration reloaded")
		return nil
	}

	var reloadErr *Error
	if errors.As(err, &reloadErr) && helperMissing(reloadErr.Err) {
		log.Warn("Reload helper not found, signalling gateway directly", "helper", inv.HelperPath)
		return inv.runFallback(ctx)
	}

	return err
}

func (inv *Invoker) runHelper(ctx context.Context) error {
	return inv.run(ctx, StageHelper, inv.HelperPath, "reload")
}

func (inv *Invoker) runFallback(ctx context.Context) error {
	if len(inv.FallbackCommand) == 0 {
		return &Error{Stage: StageFallback, Err: errors.New("no fallback command configured")}
	}
	return inv.run(ctx, StageFallback, inv.FallbackCommand[0], inv.FallbackCommand[1:]...)
}

func (inv *Invoker) run(ctx context.Context, stage, name string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, inv.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	// Reload scripts commonly background a child that inherits stderr, which
	// keeps the pipe open past the helper's own exit. Abandon the pipe after
	// a grace period instead of waiting for every descendant to finish.
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if err == nil {
		return nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Stage: stage, Timeout: true, Err: ctx.Err()}
	}

	return &Error{
		Stage:  stage,
		Stderr: stderr.String(),
		Err:    err,
	}
}

// helperMissing reports whether the command failed because the executable
// does not exist, as opposed to existing and failing.
func helperMissing(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}
