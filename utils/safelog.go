package utils

import (
	"os"
	"strings"
)

// IsProduction controls whether personally identifying values are masked in
// log output.
var IsProduction = os.Getenv("GIN_MODE") == "release" ||
	os.Getenv("ENVIRONMENT") == "production" ||
	os.Getenv("ENV") == "production"

// MaskEmail hides the local part of an address in production logs:
// "alice@example.com" becomes "a***@example.com".
func MaskEmail(email string) string {
	if !IsProduction {
		return email
	}
	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

// MaskToken keeps only the first few characters of a secret.
func MaskToken(token string) string {
	if !IsProduction {
		return token
	}
	if len(token) <= 6 {
		return "***"
	}
	return token[:6] + "..."
}
