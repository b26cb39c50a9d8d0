package domain

import "time"

// BlockedIPStat aggregates denied connection attempts per source address.
// AttemptCount only ever grows; the whole table is dropped on a bulk clear.
type BlockedIPStat struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	Address      string `gorm:"size:64;uniqueIndex;not null"`
	AttemptCount int64  `gorm:"not null;default:1"`
	Location     string `gorm:"size:16;not null;default:''"`

	FirstAttempt time.Time `gorm:"not null"`
	LastAttempt  time.Time `gorm:"not null;index"`
}
