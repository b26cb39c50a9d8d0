package reload

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "reload-whitelist.sh")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestReloadHelperSucceeds(t *testing.T) {
	inv := New(writeScript(t, "exit 0"), time.Second)

	if err := inv.Reload(context.Background()); err != nil {
		t.Fatalf("Reload returned error: %v", err)
	}
}

func TestReloadHelperFailureCarriesStderr(t *testing.T) {
	inv := New(writeScript(t, `echo "nginx: config test failed" >&2; exit 1`), time.Second)

	err := inv.Reload(context.Background())
	if err == nil {
		t.Fatal("Reload succeeded, want error")
	}

	var reloadErr *Error
	if !errors.As(err, &reloadErr) {
		t.Fatalf("Reload returned %T, want *Error", err)
	}
	if reloadErr.Stage != StageHelper {
		t.Fatalf("error stage = %s, want helper", reloadErr.Stage)
	}
	if reloadErr.Timeout {
		t.Fatal("non-timeout failure reported as timeout")
	}
	if !strings.Contains(reloadErr.Stderr, "config test failed") {
		t.Fatalf("stderr not captured: %q", reloadErr.Stderr)
	}
}

func TestReloadHelperTimeout(t *testing.T) {
	inv := New(writeScript(t, "sleep 5"), 100*time.Millisecond)

	err := inv.Reload(context.Background())
	if err == nil {
		t.Fatal("Reload succeeded, want timeout error")
	}

	var reloadErr *Error
	if !errors.As(err, &reloadErr) {
		t.Fatalf("Reload returned %T, want *Error", err)
	}
	if !reloadErr.Timeout {
		t.Fatalf("timeout not flagged: %v", reloadErr)
	}
}

func TestReloadFallsBackWhenHelperMissing(t *testing.T) {
	inv := New(filepath.Join(t.TempDir(), "does-not-exist.sh"), time.Second)
	inv.FallbackCommand = []string{"true"}

	if err := inv.Reload(context.Background()); err != nil {
		t.Fatalf("Reload returned error after fallback: %v", err)
	}
}

func TestReloadReportsFallbackFailure(t *testing.T) {
	inv := New(filepath.Join(t.TempDir(), "does-not-exist.sh"), time.Second)
	inv.FallbackCommand = []string{"false"}

	err := inv.Reload(context.Background())
	if err == nil {
		t.Fatal("Reload succeeded, want fallback error")
	}

	var reloadErr *Error
	if !errors.As(err, &reloadErr) {
		t.Fatalf("Reload returned %T, want *Error", err)
	}
	if reloadErr.Stage != StageFallback {
		t.Fatalf("error stage = %s, want fallback", reloadErr.Stage)
	}
}

func TestReloadNotHeldOpenByBackgroundChild(t *testing.T) {
	// The backgrounded sleep inherits the helper's stderr; the call must
	// return once the helper itself exits, not when the child does.
	inv := New(writeScript(t, "sleep 3 &\nexit 1"), 200*time.Millisecond)

	start := time.Now()
	err := inv.Reload(context.Background())
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("Reload succeeded, want helper failure")
	}
	if elapsed > 2500*time.Millisecond {
		t.Fatalf("Reload blocked %s on a backgrounded child", elapsed)
	}

	var reloadErr *Error
	if !errors.As(err, &reloadErr) || reloadErr.Stage != StageHelper {
		t.Fatalf("expected helper-stage error, got %v", err)
	}
}

func TestReloadDoesNotFallBackOnHelperFailure(t *testing.T) {
	inv := New(writeScript(t, "exit 3"), time.Second)
	inv.FallbackCommand = []string{"true"}

	err := inv.Reload(context.Background())
	if err == nil {
		t.Fatal("Reload succeeded, want helper error to surface")
	}

	var reloadErr *Error
	if !errors.As(err, &reloadErr) || reloadErr.Stage != StageHelper {
		t.Fatalf("expected helper-stage error, got %v", err)
	}
}
