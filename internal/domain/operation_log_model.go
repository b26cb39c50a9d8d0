package domain

import "time"

// Audit actions recorded in the operation log.
const (
	ActionAddEntry        = "ADD_IP"
	ActionRemoveEntry     = "REMOVE_IP"
	ActionExportWhitelist = "EXPORT_WHITELIST"
	ActionClearLogs       = "CLEAR_CONNECTION_LOGS"
)

// OperationLog is an append-only audit record of a management action.
type OperationLog struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	User          string `gorm:"size:255;not null"`
	Action        string `gorm:"size:64;not null"`
	Target        string `gorm:"size:255;not null;default:''"`
	Details       string `gorm:"size:1024;not null;default:''"`
	SourceAddress string `gorm:"size:64;not null;default:''"`

	Timestamp time.Time `gorm:"autoCreateTime;index"`
}
