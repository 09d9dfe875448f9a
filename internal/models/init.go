package models

import (
	"github.com/mealstack/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultAdmin seeds the default back-office account on first boot.
func InitDefaultAdmin(email, password string) error {
	var count int64
	DB.Model(&User{}).Where("is_admin = ?", true).Count(&count)
	if count > 0 {
		return nil
	}

	if email == "" {
		email = "admin@mealstack.local"
	}
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  "Admin",
		IsAdmin:      true,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	if password == "admin123" {
		logger.Warnw("default_admin_created_with_default_password", "email", email)
		logger.Warnw("default_admin_password_change_required", "email", email)
	} else {
		logger.Warnw("default_admin_created", "email", email, "password_hidden", true)
	}
	return nil
}
