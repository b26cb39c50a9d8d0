package nginxconf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"whitegate/internal/domain"
)

func testEntries() []domain.WhitelistEntry {
	return []domain.WhitelistEntry{
		{ID: 2, Address: "203.0.113.7", Kind: domain.KindIPv4, Description: "office"},
		{ID: 1, Address: "10.0.0.0/8", Kind: domain.KindRange},
	}
}

func stripHeader(content string) string {
	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.Contains(line, "Last updated:") || strings.Contains(line, "automatically generated ") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func TestRenderAllowList(t *testing.T) {
	content := RenderAllowList(testEntries(), time.Now())

	builtinIdx := strings.Index(content, "127.0.0.1\n::1\n")
	if builtinIdx == -1 {
		t.Fatal("allow list does not contain the builtin loopback entries in order")
	}
	if entryIdx := strings.Index(content, "203.0.113.7"); entryIdx < builtinIdx {
		t.Fatal("builtin entries must precede user entries")
	}

	if !strings.Contains(content, "# office\n203.0.113.7\n") {
		t.Fatalf("description comment missing before entry:\n%s", content)
	}
	if !strings.Contains(content, "# Total entries: 2") {
		t.Fatalf("entry count header missing:\n%s", content)
	}
}

func TestRenderLookupMap(t *testing.T) {
	content := RenderLookupMap(testEntries(), time.Now())

	if !strings.Contains(content, "127.0.0.1 1;\n::1 1;\n") {
		t.Fatalf("lookup map missing builtin entries:\n%s", content)
	}
	if !strings.Contains(content, "203.0.113.7 1;\n") || !strings.Contains(content, "10.0.0.0/8 1;\n") {
		t.Fatalf("lookup map missing user entries:\n%s", content)
	}
}

func TestRenderingIsDeterministic(t *testing.T) {
	entries := testEntries()

	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	second := time.Date(2024, 3, 2, 18, 30, 0, 0, time.UTC)

	if stripHeader(RenderAllowList(entries, first)) != stripHeader(RenderAllowList(entries, second)) {
		t.Fatal("allow list rendering differs beyond the timestamp header")
	}
	if stripHeader(RenderLookupMap(entries, first)) != stripHeader(RenderLookupMap(entries, second)) {
		t.Fatal("lookup map rendering differs beyond the timestamp header")
	}
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	renderer := New(filepath.Join(dir, "whitelist.txt"), filepath.Join(dir, "whitelist_map.conf"))

	if err := renderer.WriteAll(testEntries(), time.Now()); err != nil {
		t.Fatalf("WriteAll returned error: %v", err)
	}

	allowList, err := os.ReadFile(renderer.AllowListPath)
	if err != nil {
		t.Fatalf("read allow list: %v", err)
	}
	if !strings.Contains(string(allowList), "203.0.113.7") {
		t.Fatal("written allow list missing user entry")
	}

	lookupMap, err := os.ReadFile(renderer.LookupMapPath)
	if err != nil {
		t.Fatalf("read lookup map: %v", err)
	}
	if !strings.HasPrefix(string(lookupMap), "# Whitelist map file") {
		t.Fatal("written lookup map missing header")
	}
}

func TestWriteAllCreatesParentDirectories(t *testing.T) {
	// First run on a fresh box: the gateway's config directory may not exist
	// yet and must be created rather than failing the whole regeneration.
	dir := t.TempDir()
	renderer := New(
		filepath.Join(dir, "nginx", "whitelist.txt"),
		filepath.Join(dir, "nginx", "conf.d", "whitelist_map.conf"),
	)

	if err := renderer.WriteAll(testEntries(), time.Now()); err != nil {
		t.Fatalf("WriteAll returned error: %v", err)
	}

	for _, path := range []string{renderer.AllowListPath, renderer.LookupMapPath} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("artifact %s not written: %v", path, err)
		}
	}
}

func TestWriteArtifactPermissionFallback(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}

	dir := t.TempDir()
	target := filepath.Join(dir, "whitelist_map.conf")
	if err := os.WriteFile(target, []byte("old"), 0o644); err != nil {
		t.Fatalf("seed target file: %v", err)
	}

	// Read-only file forces the direct write to fail with a permission error;
	// the rename-based fallback replaces it anyway.
	if err := os.Chmod(target, 0o444); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	if err := writeArtifact(target, "new content\n"); err != nil {
		t.Fatalf("writeArtifact returned error: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read target: %v", err)
	}
	if string(data) != "new content\n" {
		t.Fatalf("target content = %q, want replaced content", data)
	}
}
