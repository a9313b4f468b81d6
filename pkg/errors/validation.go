package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// DocumentExtension is the only file extension accepted for input documents.
const DocumentExtension = ".xml"

// ValidateDocumentName validates an input file name for safety and checks
// that it carries the .xml extension (case-insensitive).
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - Maximum length of 256 characters
//   - Extension must be .xml
func ValidateDocumentName(name string) error {
	if name == "" {
		return New(ErrCodeInput, "file name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInput, "file name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInput, "file name contains invalid control characters")
		}
	}

	if ext := filepath.Ext(name); !strings.EqualFold(ext, DocumentExtension) {
		return New(ErrCodeInput, "unsupported file type %q (expected %s)", ext, DocumentExtension)
	}

	return nil
}

// ValidateSize rejects documents larger than maxBytes.
// A non-positive maxBytes disables the check.
func ValidateSize(size, maxBytes int64) error {
	if maxBytes > 0 && size > maxBytes {
		return New(ErrCodeInput, "file too large: %d bytes (max %d)", size, maxBytes)
	}
	return nil
}

// ValidateRecordID checks that a record id has the "<table>:<record>" shape
// produced by the extractor, both parts being non-negative decimal numbers.
func ValidateRecordID(id string) error {
	table, rec, ok := strings.Cut(id, ":")
	if !ok || !isDigits(table) || !isDigits(rec) {
		return New(ErrCodeInvalidEdit, "invalid record id %q", id)
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
