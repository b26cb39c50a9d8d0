// Package nginxconf renders the whitelist into the two generated files the
// gateway includes: a readable allow list and an nginx map fragment.
package nginxconf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/renameio/v2"

	"whitegate/internal/domain"
)

// Loopback entries are always allowed and never stored as rows. They are
// rendered ahead of every user entry in both artifacts.
var BuiltinEntries = []string{"127.0.0.1", "::1"}

type Renderer struct {
	AllowListPath string
	LookupMapPath string
}

func New(allowListPath, lookupMapPath string) *Renderer {
	return &Renderer{
		AllowListPath: allowListPath,
		LookupMapPath: lookupMapPath,
	}
}

// RenderAllowList produces the human-readable whitelist file. Apart from the
// timestamp header the output is a pure function of the entry set.
func RenderAllowList(entries []domain.WhitelistEntry, now time.Time) string {
	var b strings.Builder

	b.WriteString("# Proxy whitelist configuration file\n")
	b.WriteString("# This file is automatically generated and managed by the web interface\n")
	fmt.Fprintf(&b, "# Last updated: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "# Total entries: %d\n", len(entries))
	b.WriteString("\n")
	b.WriteString("# Default entries (localhost for testing)\n")
	for _, builtin := range BuiltinEntries {
		b.WriteString(builtin)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString("# User added entries\n")

	for _, entry := range entries {
		if entry.Description != "" {
			fmt.Fprintf(&b, "# %s\n", entry.Description)
		}
		b.WriteString(entry.Address)
		b.WriteString("\n")
	}

	return b.String()
}

// RenderLookupMap produces the `<address> 1;` map fragment consumed by the
// gateway's address lookup table.
func RenderLookupMap(entries []domain.WhitelistEntry, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Whitelist map file - automatically generated %s\n", now.UTC().Format("Mon Jan 02 15:04:05 UTC 2006"))
	b.WriteString("# Format: <address> 1;\n")
	for _, builtin := range BuiltinEntries {
		fmt.Fprintf(&b, "%s 1;\n", builtin)
	}

	for _, entry := range entries {
		fmt.Fprintf(&b, "%s 1;\n", entry.Address)
	}

	return b.String()
}

// WriteAll regenerates both artifacts from the given entry set. Either both
// files end up current or an error is returned; a partially written artifact
// is never left behind thanks to the atomic-replace fallback.
func (r *Renderer) WriteAll(entries []domain.WhitelistEntry, now time.Time) error {
	if err := writeArtifact(r.AllowListPath, RenderAllowList(entries, now)); err != nil {
		return fmt.Errorf("nginxconf: write allow list: %w", err)
	}
	if err := writeArtifact(r.LookupMapPath, RenderLookupMap(entries, now)); err != nil {
		return fmt.Errorf("nginxconf: write lookup map: %w", err)
	}

	log.Info("Whitelist artifacts regenerated", "entries", len(entries))
	return nil
}

// writeArtifact writes the rendered content, falling back to a temp file
// moved into place when the direct write is not permitted. The target
// directory is often owned by the gateway process, so the direct path can
// legitimately fail while the rename still succeeds.
func writeArtifact(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		log.Warn("Failed to create artifact directory", "path", path, "error", err)
	}

	err := os.WriteFile(path, []byte(content), 0o644)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrPermission) {
		return err
	}

	log.Warn("Direct artifact write denied, retrying via atomic replace", "path", path)

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("open pending file: %w", err)
	}
	defer func() {
		// No-op after a successful replace.
		if cleanupErr := pending.Cleanup(); cleanupErr != nil {
			log.Warn("Pending artifact cleanup failed", "path", path, "error", cleanupErr)
		}
	}()

	if _, err := pending.Write([]byte(content)); err != nil {
		return fmt.Errorf("write pending file: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	return nil
}
