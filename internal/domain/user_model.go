package domain

import "time"

// User is an operator account for the management interface.
type User struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	Username string `gorm:"uniqueIndex;not null;size:255"`
	Password string `gorm:"not null;size:100" json:"-"`
	Active   bool   `gorm:"not null;default:true"`

	LastLogin *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
