// Package monitor derives connection-admission statistics from the gateway
// access log.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"whitegate/internal/config"
	"whitegate/internal/database"
	"whitegate/internal/domain"
	"whitegate/internal/ipaddr"
	"whitegate/internal/taillog"
)

// Aggregator consumes the access log incrementally and answers the
// statistics queries. The cursor is a single-writer resource: tail passes
// are serialized through a mutex and concurrent Refresh calls collapse into
// one pass via singleflight.
type Aggregator struct {
	logPath string

	tailMu  sync.Mutex
	refresh singleflight.Group
}

func NewAggregator(logPath string) *Aggregator {
	return &Aggregator{logPath: logPath}
}

// Refresh runs one tailing pass and ingests the result. Callers racing into
// Refresh share the in-flight pass instead of reading overlapping byte
// ranges.
func (a *Aggregator) Refresh() error {
	_, err, _ := a.refresh.Do("tail", func() (any, error) {
		return nil, a.tailOnce()
	})
	return err
}

func (a *Aggregator) tailOnce() error {
	a.tailMu.Lock()
	defer a.tailMu.Unlock()

	offset, err := database.GetLogCursor()
	if err != nil {
		return fmt.Errorf("monitor: load cursor: %w", err)
	}

	events, newOffset, err := taillog.ReadNew(a.logPath, offset)
	if err != nil {
		return fmt.Errorf("monitor: tail pass: %w", err)
	}

	if len(events) > 0 {
		if err := a.ingest(events); err != nil {
			return fmt.Errorf("monitor: ingest events: %w", err)
		}
		log.Debug("Recorded new connections", "count", len(events))
	}

	// The offset advances even when nothing parsed, so unparseable bytes are
	// never re-scanned forever.
	if newOffset != offset {
		if err := database.SaveLogCursor(newOffset); err != nil {
			return fmt.Errorf("monitor: save cursor: %w", err)
		}
	}

	return nil
}

func (a *Aggregator) ingest(events []taillog.Event) error {
	rows := make([]domain.ConnectionEvent, 0, len(events))
	for _, event := range events {
		rows = append(rows, domain.ConnectionEvent{
			Address:   event.Address,
			Outcome:   event.Outcome,
			Protocol:  event.Protocol,
			Location:  ipaddr.Classify(event.Address),
			Timestamp: event.Timestamp,
		})
	}
	return database.InsertConnectionEvents(rows)
}

// RecentConnections returns the newest admission events, up to limit.
func (a *Aggregator) RecentConnections(limit int) ([]domain.ConnectionEvent, error) {
	return database.GetRecentConnections(limit)
}

// BlockedIPs returns denied-attempt counters, most recently hit first.
func (a *Aggregator) BlockedIPs(limit int) ([]domain.BlockedIPStat, error) {
	return database.GetBlockedIPStats(limit)
}

// Stats returns today's totals and the trailing-24h hourly histogram.
func (a *Aggregator) Stats() (database.ConnectionStats, error) {
	return database.GetConnectionStats(time.Now())
}

// Clear deletes all event history and blocked-IP counters and fast-forwards
// the cursor to the log's current end, so history still sitting in the file
// is not re-ingested and counted twice on the next pass.
func (a *Aggregator) Clear(principal, sourceAddr string) error {
	a.tailMu.Lock()
	defer a.tailMu.Unlock()

	if err := database.ClearConnectionData(); err != nil {
		return fmt.Errorf("monitor: clear connection data: %w", err)
	}

	offset, err := taillog.EndOffset(a.logPath)
	if err != nil {
		return fmt.Errorf("monitor: find log end: %w", err)
	}
	if err := database.SaveLogCursor(offset); err != nil {
		return fmt.Errorf("monitor: save cursor: %w", err)
	}

	audit := domain.OperationLog{
		User:          principal,
		Action:        domain.ActionClearLogs,
		Details:       fmt.Sprintf("Cleared by %s", principal),
		SourceAddress: sourceAddr,
	}
	if err := database.AppendOperationLog(audit); err != nil {
		log.Warn("Failed to record clear in operation log", "error", err)
	}

	log.Info("Connection logs cleared", "by", principal, "cursor", offset)
	return nil
}

// StartRefreshRoutine keeps the statistics current between requests. The
// interval follows configuration updates live.
func (a *Aggregator) StartRefreshRoutine(ctx context.Context) {
	updates := config.RefreshIntervalUpdates()
	interval := <-updates

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case interval = <-updates:
			ticker.Reset(interval)
			log.Debug("Refresh interval updated", "interval", interval)
		case <-ticker.C:
			if err := a.Refresh(); err != nil {
				log.Error("Periodic refresh failed", "error", err)
			}
		}
	}
}
