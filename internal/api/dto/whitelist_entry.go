package dto

import (
	"time"

	"whitegate/internal/domain"
)

type AddEntryRequest struct {
	Address     string `json:"ip"`
	Description string `json:"description"`
}

type WhitelistEntryInfo struct {
	ID          uint64    `json:"id"`
	Address     string    `json:"ip"`
	Kind        string    `json:"ip_type"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewWhitelistEntryInfo(entry domain.WhitelistEntry) WhitelistEntryInfo {
	return WhitelistEntryInfo{
		ID:          entry.ID,
		Address:     entry.Address,
		Kind:        entry.Kind,
		Description: entry.Description,
		CreatedBy:   entry.CreatedBy,
		CreatedAt:   entry.CreatedAt,
	}
}
