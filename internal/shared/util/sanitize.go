package util

import (
	"errors"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxFileNameRunes = 200

// ErrInvalidFileName is returned for names that are empty or try to escape a directory.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName makes an uploaded file name safe to embed in a storage key.
// Separators become underscores, control characters are dropped and long names
// are shortened while keeping the extension.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == utf8.RuneError {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return "", ErrInvalidFileName
	}
	return truncateName(s), nil
}

func truncateName(s string) string {
	if utf8.RuneCountInString(s) <= maxFileNameRunes {
		return s
	}
	ext := filepath.Ext(s)
	if utf8.RuneCountInString(ext) > 16 {
		ext = ""
	}
	stem := []rune(strings.TrimSuffix(s, ext))
	keep := maxFileNameRunes - utf8.RuneCountInString(ext)
	return string(stem[:keep]) + ext
}
