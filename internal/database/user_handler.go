package database

import (
	"time"

	"whitegate/internal/domain"
)

func GetUserByUsername(username string) (domain.User, error) {
	var user domain.User
	err := DB.Where("username = ?", username).First(&user).Error
	return user, err
}

func GetUserFromId(id uint) (domain.User, error) {
	var user domain.User
	err := DB.Where("id = ?", id).First(&user).Error
	return user, err
}

func TouchLastLogin(id uint) error {
	now := time.Now()
	return DB.Model(&domain.User{}).
		Where("id = ?", id).
		Update("last_login", &now).Error
}
