package taillog

import (
	"os"
	"path/filepath"
	"testing"

	"whitegate/internal/domain"
)

const sampleLog = "10.0.0.5 [10/Oct/2023:13:55:36 +0000] TCP 200 100 200 1.234 whitelist:0\n" +
	"junk line from another subsystem\n" +
	"203.0.113.7 [10/Oct/2023:13:56:00 +0000] TCP 200 512 64 0.500 whitelist:1\n"

func writeLog(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stream_access.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestReadNewParsesAndAdvances(t *testing.T) {
	path := writeLog(t, sampleLog)

	events, offset, err := ReadNew(path, 0)
	if err != nil {
		t.Fatalf("ReadNew returned error: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("parsed %d events, want 2 (foreign line skipped)", len(events))
	}
	if events[0].Outcome != domain.OutcomeDenied || events[1].Outcome != domain.OutcomeAllowed {
		t.Fatalf("unexpected outcomes: %s, %s", events[0].Outcome, events[1].Outcome)
	}

	if offset != int64(len(sampleLog)) {
		t.Fatalf("offset = %d, want file length %d", offset, len(sampleLog))
	}
}

func TestReadNewIsResumable(t *testing.T) {
	path := writeLog(t, sampleLog)

	_, offset, err := ReadNew(path, 0)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}

	// No new data: the second pass must ingest nothing and keep the offset.
	events, offset2, err := ReadNew(path, offset)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("second pass ingested %d events, want 0", len(events))
	}
	if offset2 != offset {
		t.Fatalf("offset moved from %d to %d with no new data", offset, offset2)
	}

	appended := "10.0.0.6 [10/Oct/2023:14:00:00 +0000] TCP 200 1 2 0.1 whitelist:0\n"
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open for append: %v", err)
	}
	if _, err := f.WriteString(appended); err != nil {
		t.Fatalf("append: %v", err)
	}
	f.Close()

	events, offset3, err := ReadNew(path, offset2)
	if err != nil {
		t.Fatalf("third pass: %v", err)
	}
	if len(events) != 1 || events[0].Address != "10.0.0.6" {
		t.Fatalf("third pass events = %+v, want the appended record only", events)
	}
	if offset3 != offset2+int64(len(appended)) {
		t.Fatalf("offset = %d, want %d", offset3, offset2+int64(len(appended)))
	}
}

func TestReadNewMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.log")

	events, offset, err := ReadNew(path, 42)
	if err != nil {
		t.Fatalf("ReadNew returned error for missing file: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("got %d events from a missing file", len(events))
	}
	if offset != 42 {
		t.Fatalf("offset changed to %d for a missing file, want 42", offset)
	}
}

func TestReadNewRestartsAfterTruncation(t *testing.T) {
	path := writeLog(t, sampleLog)

	_, offset, err := ReadNew(path, 0)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}

	// Rotation: the file is replaced with a shorter one, so the stored offset
	// points past end-of-file and the pass restarts from the beginning.
	rotated := "10.0.0.9 [11/Oct/2023:09:00:00 +0000] TCP 200 1 2 0.1 whitelist:1\n"
	if err := os.WriteFile(path, []byte(rotated), 0o644); err != nil {
		t.Fatalf("rewrite log: %v", err)
	}

	events, newOffset, err := ReadNew(path, offset)
	if err != nil {
		t.Fatalf("pass after rotation: %v", err)
	}
	if len(events) != 1 || events[0].Address != "10.0.0.9" {
		t.Fatalf("events after rotation = %+v, want the rotated record", events)
	}
	if newOffset != int64(len(rotated)) {
		t.Fatalf("offset = %d, want %d", newOffset, len(rotated))
	}
}

func TestReadNewLeavesPartialLine(t *testing.T) {
	partial := "10.0.0.5 [10/Oct/2023:13:55:36 +0000] TCP 200 100"
	path := writeLog(t, sampleLog+partial)

	events, offset, err := ReadNew(path, 0)
	if err != nil {
		t.Fatalf("ReadNew returned error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("parsed %d events, want 2", len(events))
	}
	if offset != int64(len(sampleLog)) {
		t.Fatalf("offset = %d, want %d (partial trailing line not consumed)", offset, len(sampleLog))
	}
}

func TestEndOffset(t *testing.T) {
	path := writeLog(t, sampleLog)

	offset, err := EndOffset(path)
	if err != nil {
		t.Fatalf("EndOffset returned error: %v", err)
	}
	if offset != int64(len(sampleLog)) {
		t.Fatalf("EndOffset = %d, want %d", offset, len(sampleLog))
	}

	missing, err := EndOffset(filepath.Join(t.TempDir(), "missing.log"))
	if err != nil {
		t.Fatalf("EndOffset for missing file: %v", err)
	}
	if missing != 0 {
		t.Fatalf("EndOffset for missing file = %d, want 0", missing)
	}
}
