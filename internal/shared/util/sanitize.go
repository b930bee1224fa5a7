package util

import (
	"errors"
	"strings"
)

// ErrInvalidFileName reports a rejected upload file name.
var ErrInvalidFileName = errors.New("invalid file name")

var separatorReplacer = strings.NewReplacer("/", "_", "\\", "_", "\x00", "")

// SanitizeFileName removes path separators and rejects traversal patterns.
// CV file names arrive from uploads and from email attachments, so nothing
// about them is trusted.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	s := separatorReplacer.Replace(strings.TrimSpace(name))
	if s == "" {
		return "", ErrInvalidFileName
	}
	return s, nil
}
