package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation  = "operation"
	KeyService    = "service"
	KeyRecipients = "recipients"
	KeyDuration   = "duration"
	KeyStatus     = "status"
	KeyError      = "error"
	KeyState      = "state"
	KeyMessageID  = "message_id"
	KeyPath       = "path"
)

// Status values for consistent logging.
// Note: These are intentionally duplicated from instrumentation package
// to avoid circular dependencies (instrumentation imports logging).
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Service returns a slog attribute for the service name.
func Service(svc string) slog.Attr {
	return slog.String(KeyService, svc)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// State returns a slog attribute for an authorization state name.
func State(state string) slog.Attr {
	return slog.String(KeyState, state)
}

// MessageID returns a slog attribute for a provider-assigned message id.
func MessageID(id string) slog.Attr {
	return slog.String(KeyMessageID, id)
}

// Path returns a slog attribute for a filesystem path.
func Path(path string) slog.Attr {
	return slog.String(KeyPath, path)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
// This allows safely passing Err(maybeNilErr) without adding empty attributes.
//
// Usage:
//
//	logger.Info("operation", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		// Return an empty Group that slog will omit from output
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeEmail returns a hashed representation of an email for logging purposes.
// This allows correlation of log entries without exposing PII.
func AnonymizeEmail(email string) string {
	if email == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "user:" + hex.EncodeToString(hash[:8])
}

// Recipients returns a slog attribute listing the anonymized recipients in order.
func Recipients(addrs []string) slog.Attr {
	hashed := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		hashed = append(hashed, AnonymizeEmail(addr))
	}
	return slog.Any(KeyRecipients, hashed)
}

// SanitizeToken returns a masked version of a token for logging.
// It returns a length indicator without exposing any token content,
// as even partial token prefixes (like JWT headers) can aid attacks.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}
