package database

import (
	"errors"

	"gorm.io/gorm"

	"whitegate/internal/domain"
)

// GetActiveWhitelist returns all active entries, newest first.
func GetActiveWhitelist() ([]domain.WhitelistEntry, error) {
	var entries []domain.WhitelistEntry
	err := DB.
		Where("active = ?", true).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ActiveEntryExists reports whether an active row already carries the address.
func ActiveEntryExists(address string) (bool, error) {
	var entry domain.WhitelistEntry
	err := DB.
		Select("id").
		Where("address = ? AND active = ?", address, true).
		First(&entry).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// InsertWhitelistEntry commits the new row together with its audit record.
func InsertWhitelistEntry(entry *domain.WhitelistEntry, audit *domain.OperationLog) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		audit.Target = entry.Address
		return tx.Create(audit).Error
	})
}

// DeactivateWhitelistEntry soft-deletes the row and records the audit entry.
// Returns gorm.ErrRecordNotFound if no active row matches the id.
func DeactivateWhitelistEntry(id uint64, audit *domain.OperationLog) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		var entry domain.WhitelistEntry
		if err := tx.Where("id = ? AND active = ?", id, true).First(&entry).Error; err != nil {
			return err
		}

		if err := tx.Model(&entry).Update("active", false).Error; err != nil {
			return err
		}

		audit.Target = entry.Address
		return tx.Create(audit).Error
	})
}

// GetWhitelistEntry fetches a row regardless of its active flag.
func GetWhitelistEntry(id uint64) (domain.WhitelistEntry, error) {
	var entry domain.WhitelistEntry
	err := DB.Where("id = ?", id).First(&entry).Error
	return entry, err
}
