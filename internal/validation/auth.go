package validation

import (
	"regexp"
	"strings"

	"github.com/stocktrackhq/stocktrack-backend/internal/api/request"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

func ValidateRegister(req request.RegisterRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Username) == "" {
		errors["username"] = "username is required"
	} else if !usernamePattern.MatchString(req.Username) {
		errors["username"] = "username must be 3-20 characters of letters, digits, underscore or hyphen"
	}

	if strings.TrimSpace(req.Email) == "" {
		errors["email"] = "email is required"
	} else if !emailPattern.MatchString(req.Email) {
		errors["email"] = "not a valid email address"
	}

	if msg := passwordMessage(req.Password); msg != "" {
		errors["password"] = msg
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func ValidateLogin(req request.LoginRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Email) == "" {
		errors["email"] = "email is required"
	}
	if req.Password == "" {
		errors["password"] = "password is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func ValidateChangePassword(req request.ChangePasswordRequest) error {
	errors := make(map[string]string)

	if req.CurrentPassword == "" {
		errors["currentPassword"] = "current password is required"
	}
	if msg := passwordMessage(req.NewPassword); msg != "" {
		errors["newPassword"] = msg
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func passwordMessage(password string) string {
	if len(password) < 8 {
		return "password must be at least 8 characters"
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return "password must contain upper and lower case letters and a digit"
	}
	return ""
}
