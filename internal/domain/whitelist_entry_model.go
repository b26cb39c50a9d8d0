package domain

import "time"

// Address kinds stored on a WhitelistEntry.
const (
	KindIPv4  = "ipv4"
	KindIPv6  = "ipv6"
	KindRange = "range"
)

// WhitelistEntry is one address or CIDR block permitted through the gateway.
// Removal is a soft delete: rows are flipped to Active=false and never reused.
type WhitelistEntry struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	// Address holds the normalized textual form (e.g. 192.0.2.1 or 192.0.2.0/24).
	// Uniqueness among active rows is enforced by the whitelist manager, not the
	// schema, because inactive rows may carry the same address.
	Address string `gorm:"size:64;not null;index"`

	Kind        string `gorm:"size:8;not null"`
	Description string `gorm:"size:512;not null;default:''"`
	CreatedBy   string `gorm:"size:255;not null;default:''"`
	Active      bool   `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}
