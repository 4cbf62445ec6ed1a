package util

import (
	"strings"

	"fintrack-server/src/models"
)

// bcrypt ignores everything past 72 bytes and x/crypto rejects longer input.
const maxPasswordBytes = 72

func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return &models.ValidationError{Field: "username", Message: "username is required"}
	}
	return nil
}

func ValidatePassword(password string) error {
	if password == "" {
		return &models.ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) > maxPasswordBytes {
		return &models.ValidationError{Field: "password", Message: "password must be at most 72 bytes"}
	}
	return nil
}

// ValidateCredentials reports the first missing or unusable field.
func ValidateCredentials(c models.Credentials) error {
	if err := ValidateUsername(c.Username); err != nil {
		return err
	}
	return ValidatePassword(c.Password)
}
