package main

import (
	"strings"

	"github.com/SaurabhKalal/rag-chatbot/internal/errors"
)

const maxSessionIDLength = 100

var (
	errEmptySessionID   = errors.NewSentinel("Session ID cannot be empty")
	errSessionIDTooLong = errors.NewSentinel("Session ID too long (max 100 characters)")
)

// validateSessionID sanitizes a client-provided session ID. Surrounding
// whitespace is trimmed and inner spaces become underscores so the ID is safe
// to use as a storage namespace.
func validateSessionID(sessionID string) (string, error) {
	sanitized := strings.TrimSpace(sessionID)
	if sanitized == "" {
		return "", errEmptySessionID
	}
	sanitized = strings.ReplaceAll(sanitized, " ", "_")
	if len(sanitized) > maxSessionIDLength {
		return "", errSessionIDTooLong
	}
	return sanitized, nil
}
