package database

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"whitegate/internal/domain"
)

// InsertConnectionEvents appends the parsed events and upserts the blocked-IP
// counters for denied outcomes, all in one transaction so a tailing pass is
// recorded atomically.
func InsertConnectionEvents(events []domain.ConnectionEvent) error {
	if len(events) == 0 {
		return nil
	}

	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&events).Error; err != nil {
			return err
		}

		for _, event := range events {
			if event.Outcome != domain.OutcomeDenied {
				continue
			}
			if err := upsertBlockedIPStat(tx, event); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsertBlockedIPStat(tx *gorm.DB, event domain.ConnectionEvent) error {
	stat := domain.BlockedIPStat{
		Address:      event.Address,
		AttemptCount: 1,
		Location:     event.Location,
		FirstAttempt: event.Timestamp,
		LastAttempt:  event.Timestamp,
	}

	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}},
		DoUpdates: clause.Assignments(map[string]any{
			"attempt_count": gorm.Expr("attempt_count + 1"),
			"last_attempt":  event.Timestamp,
		}),
	}).Create(&stat).Error
}

// GetRecentConnections returns the newest events first.
func GetRecentConnections(limit int) ([]domain.ConnectionEvent, error) {
	var events []domain.ConnectionEvent
	err := DB.
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// GetBlockedIPStats returns denied-attempt counters, most recently hit first.
func GetBlockedIPStats(limit int) ([]domain.BlockedIPStat, error) {
	var stats []domain.BlockedIPStat
	err := DB.
		Order("last_attempt DESC").
		Limit(limit).
		Find(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// HourlyBucket is one wall-clock-hour slice of the trailing 24h window.
type HourlyBucket struct {
	Hour    int   `json:"hour"`
	Allowed int64 `json:"allowed"`
	Denied  int64 `json:"denied"`
}

// ConnectionStats is the dashboard aggregate over the connection history.
type ConnectionStats struct {
	AllowedToday     int64          `json:"allowed_today"`
	DeniedToday      int64          `json:"denied_today"`
	TotalConnections int64          `json:"total_connections"`
	UniqueIPs        int64          `json:"unique_ips"`
	HourlyData       []HourlyBucket `json:"hourly_data"`
}

// GetConnectionStats computes today's totals and the trailing-24h hourly
// histogram. All 24 buckets are present even when empty.
func GetConnectionStats(now time.Time) (ConnectionStats, error) {
	stats := ConnectionStats{
		HourlyData: make([]HourlyBucket, 24),
	}
	for hour := range stats.HourlyData {
		stats.HourlyData[hour].Hour = hour
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	err := DB.Model(&domain.ConnectionEvent{}).
		Where("timestamp >= ? AND outcome = ?", startOfDay, domain.OutcomeAllowed).
		Count(&stats.AllowedToday).Error
	if err != nil {
		return ConnectionStats{}, err
	}

	err = DB.Model(&domain.ConnectionEvent{}).
		Where("timestamp >= ? AND outcome = ?", startOfDay, domain.OutcomeDenied).
		Count(&stats.DeniedToday).Error
	if err != nil {
		return ConnectionStats{}, err
	}

	if err := DB.Model(&domain.ConnectionEvent{}).Count(&stats.TotalConnections).Error; err != nil {
		return ConnectionStats{}, err
	}

	err = DB.Model(&domain.ConnectionEvent{}).
		Distinct("address").
		Count(&stats.UniqueIPs).Error
	if err != nil {
		return ConnectionStats{}, err
	}

	var events []domain.ConnectionEvent
	err = DB.
		Select("outcome", "timestamp").
		Where("timestamp >= ?", now.Add(-24*time.Hour)).
		Find(&events).Error
	if err != nil {
		return ConnectionStats{}, err
	}

	for _, event := range events {
		bucket := &stats.HourlyData[event.Timestamp.Local().Hour()]
		switch event.Outcome {
		case domain.OutcomeAllowed:
			bucket.Allowed++
		case domain.OutcomeDenied:
			bucket.Denied++
		}
	}

	return stats, nil
}

// ClearConnectionData removes all event history and blocked-IP counters.
func ClearConnectionData() error {
	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.ConnectionEvent{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&domain.BlockedIPStat{}).Error
	})
}

// GetLogCursor returns the persisted tail offset, zero if none was stored yet.
func GetLogCursor() (int64, error) {
	var cursor domain.LogCursor
	err := DB.Where("id = ?", domain.LogCursorID).First(&cursor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return cursor.Offset, nil
}

// SaveLogCursor persists the tail offset in the singleton cursor row.
func SaveLogCursor(offset int64) error {
	cursor := domain.LogCursor{ID: domain.LogCursorID, Offset: offset}
	return DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"offset", "updated_at"}),
	}).Create(&cursor).Error
}
