// utils/validator.go - Input validation
package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

// ValidateEmail checks if email is valid
func ValidateEmail(email string) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(email)
}

// ValidatePassword checks password strength
func ValidatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters"
	}

	return true, ""
}

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")

	return input
}

// allowedUploadExtensions are the document types accepted for folder uploads.
var allowedUploadExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
	".csv":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// ValidateUploadFilename checks the extension of an uploaded document.
func ValidateUploadFilename(filename string) (bool, string) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return false, "File must have an extension"
	}
	if !allowedUploadExtensions[ext] {
		return false, "File type " + ext + " is not allowed"
	}
	return true, ""
}
