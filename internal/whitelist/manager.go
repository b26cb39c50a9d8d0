// Package whitelist owns the durable entry set and keeps the generated
// gateway configuration in sync with it.
package whitelist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"whitegate/internal/database"
	"whitegate/internal/domain"
	"whitegate/internal/ipaddr"
	"whitegate/internal/nginxconf"
)

var (
	// ErrDuplicate reports an add of an address that is already active.
	ErrDuplicate = errors.New("whitelist: address already exists")
	// ErrNotFound reports a removal of an id with no active row.
	ErrNotFound = errors.New("whitelist: entry not found")
)

// SyncError wraps a failure of the artifact-regeneration or reload stage.
// The store mutation it followed has already been committed; callers retry
// the sync alone via Reconcile, not the whole mutation.
type SyncError struct {
	Op  string
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("whitelist: entry persisted but %s failed: %v", e.Op, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Reloader signals the gateway to re-read its generated configuration.
type Reloader interface {
	Reload(ctx context.Context) error
}

type Manager struct {
	renderer *nginxconf.Renderer
	reloader Reloader
}

func NewManager(renderer *nginxconf.Renderer, reloader Reloader) *Manager {
	return &Manager{
		renderer: renderer,
		reloader: reloader,
	}
}

// Add normalizes and persists a new entry, then regenerates the gateway
// configuration. The returned entry is durable even when the error is a
// *SyncError; only validation and store failures leave the set unchanged.
func (m *Manager) Add(ctx context.Context, address, description, principal, sourceAddr string) (domain.WhitelistEntry, error) {
	kind, canonical, err := ipaddr.Normalize(address)
	if err != nil {
		return domain.WhitelistEntry{}, err
	}

	exists, err := database.ActiveEntryExists(canonical)
	if err != nil {
		return domain.WhitelistEntry{}, fmt.Errorf("whitelist: check duplicate: %w", err)
	}
	if exists {
		return domain.WhitelistEntry{}, ErrDuplicate
	}

	entry := domain.WhitelistEntry{
		Address:     canonical,
		Kind:        kind,
		Description: description,
		CreatedBy:   principal,
		Active:      true,
	}
	audit := domain.OperationLog{
		User:          principal,
		Action:        domain.ActionAddEntry,
		Details:       description,
		SourceAddress: sourceAddr,
	}

	if err := database.InsertWhitelistEntry(&entry, &audit); err != nil {
		return domain.WhitelistEntry{}, fmt.Errorf("whitelist: insert entry: %w", err)
	}

	log.Info("Whitelist entry added", "address", canonical, "by", principal)

	if err := m.Reconcile(ctx); err != nil {
		return entry, &SyncError{Op: "config sync", Err: err}
	}
	return entry, nil
}

// Remove soft-deletes the entry and regenerates the gateway configuration,
// with the same persisted-but-unsynced policy as Add.
func (m *Manager) Remove(ctx context.Context, id uint64, principal, sourceAddr string) error {
	audit := domain.OperationLog{
		User:          principal,
		Action:        domain.ActionRemoveEntry,
		SourceAddress: sourceAddr,
	}

	err := database.DeactivateWhitelistEntry(id, &audit)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("whitelist: deactivate entry: %w", err)
	}

	log.Info("Whitelist entry removed", "id", id, "by", principal)

	if err := m.Reconcile(ctx); err != nil {
		return &SyncError{Op: "config sync", Err: err}
	}
	return nil
}

// List returns the active entries, newest first.
func (m *Manager) List() ([]domain.WhitelistEntry, error) {
	return database.GetActiveWhitelist()
}

// ExportText renders the current allow list for download without touching
// the files on disk.
func (m *Manager) ExportText(principal, sourceAddr string) (string, error) {
	entries, err := database.GetActiveWhitelist()
	if err != nil {
		return "", err
	}

	audit := domain.OperationLog{
		User:          principal,
		Action:        domain.ActionExportWhitelist,
		SourceAddress: sourceAddr,
	}
	if err := database.AppendOperationLog(audit); err != nil {
		log.Warn("Failed to record export in operation log", "error", err)
	}

	return nginxconf.RenderAllowList(entries, time.Now()), nil
}

// Reconcile regenerates both artifacts from the current active set and
// triggers a gateway reload. It is idempotent and safe to re-run after a
// partial failure.
func (m *Manager) Reconcile(ctx context.Context) error {
	entries, err := database.GetActiveWhitelist()
	if err != nil {
		return fmt.Errorf("load active entries: %w", err)
	}

	if err := m.renderer.WriteAll(entries, time.Now()); err != nil {
		return err
	}

	return m.reloader.Reload(ctx)
}
