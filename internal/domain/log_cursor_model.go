package domain

import "time"

// LogCursorID is the fixed primary key of the singleton cursor row.
const LogCursorID = 1

// LogCursor is the durable byte-offset bookmark into the gateway access log.
// Exactly one row exists; only the tailing pass writes it.
type LogCursor struct {
	ID     uint  `gorm:"primaryKey"`
	Offset int64 `gorm:"not null;default:0"`

	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
