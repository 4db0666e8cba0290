// Package logging provides structured logging utilities for send-gmail.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Logger construction from a level and a text/json format
//   - PII sanitization (recipient anonymization)
//   - Consistent attribute naming across the codebase
//   - Logger adapter interface for flexibility
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.NewSlogAdapter(slog.Default()).With(logging.Service("gmail"))
//	logger.Info("message sent",
//	    logging.Status(logging.StatusSuccess))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("sending",
//	    logging.Recipients(to))
//
// # Security Considerations
//
//   - Recipient addresses are hashed to prevent PII leakage while allowing correlation
//   - Tokens are never logged directly, only through SanitizeToken
package logging
