package domain

import "time"

// Connection outcomes recorded from the gateway access log.
const (
	OutcomeAllowed = "allowed"
	OutcomeDenied  = "denied"
)

// Coarse location classes derived from the address prefix.
const (
	LocationLocal    = "local"
	LocationInternal = "internal"
	LocationExternal = "external"
)

// ConnectionEvent is one admission decision parsed from the gateway's access
// log. Rows are immutable once written.
type ConnectionEvent struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	Address  string `gorm:"size:64;not null;index"`
	Outcome  string `gorm:"size:8;not null;index"`
	Protocol string `gorm:"size:16;not null;default:''"`
	Location string `gorm:"size:16;not null;default:''"`

	Timestamp time.Time `gorm:"not null;index"`
}
