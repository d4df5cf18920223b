package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"dadsadvice/internal/models"
)

const (
	maxUserIDLength   = 255
	maxNameLength     = 100
	maxCategoryLength = 50
	maxContentLength  = 10000
	minPasswordLength = 4
	// bcrypt ignores everything past 72 bytes
	maxPasswordBytes = 72
	maxTargetAge     = 150
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsEmail reports whether s looks like an email address
func IsEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// ValidateUserID checks a login handle. Handles containing "@" must be valid emails.
func ValidateUserID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ValidationError{Field: "user_id", Message: "user id is required"}
	}
	if len(id) > maxUserIDLength {
		return ValidationError{Field: "user_id", Message: "user id is too long"}
	}
	if strings.IndexFunc(id, unicode.IsSpace) >= 0 {
		return ValidationError{Field: "user_id", Message: "user id must not contain spaces"}
	}
	if strings.Contains(id, "@") && !IsEmail(id) {
		return ValidationError{Field: "user_id", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ValidationError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", minPasswordLength)}
	}
	if len(password) > maxPasswordBytes {
		return ValidationError{Field: "password", Message: fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes)}
	}
	return nil
}

// ValidateName checks if a display name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return ValidationError{Field: "name", Message: "name is too long"}
	}
	return nil
}

// ValidateRole checks the user_type of a registration
func ValidateRole(role models.Role) error {
	if !role.Valid() {
		return ValidationError{Field: "user_type", Message: "user type must be father or child"}
	}
	return nil
}

// ValidateAdvice checks the writable fields of an advice
func ValidateAdvice(category string, targetAge int, content string, mediaURL string, mediaType models.MediaType, unlockType models.UnlockType) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return ValidationError{Field: "category", Message: "category is required"}
	}
	if utf8.RuneCountInString(category) > maxCategoryLength {
		return ValidationError{Field: "category", Message: "category is too long"}
	}
	if targetAge < 0 || targetAge > maxTargetAge {
		return ValidationError{Field: "target_age", Message: fmt.Sprintf("target age must be between 0 and %d", maxTargetAge)}
	}
	if strings.TrimSpace(content) == "" {
		return ValidationError{Field: "content", Message: "content is required"}
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		return ValidationError{Field: "content", Message: "content is too long"}
	}
	switch mediaType {
	case models.MediaTypeNone:
		if mediaURL != "" {
			return ValidationError{Field: "media_type", Message: "media type is required when media url is set"}
		}
	case models.MediaTypeImage, models.MediaTypeVideo:
		if mediaURL == "" {
			return ValidationError{Field: "media_url", Message: "media url is required when media type is set"}
		}
	default:
		return ValidationError{Field: "media_type", Message: "media type must be image or video"}
	}
	if unlockType != models.UnlockByAge && unlockType != models.UnlockByPassword {
		return ValidationError{Field: "unlock_type", Message: "unlock type must be age or password"}
	}
	return nil
}
