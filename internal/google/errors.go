package google

import (
	"errors"
	"fmt"
)

// ErrConsentDeclined is returned by a ConsentPrompter when the user refuses
// consent or enters no code.
var ErrConsentDeclined = errors.New("consent declined")

// ConfigurationError reports a missing or malformed client-secret descriptor.
// It is fatal and never retried.
type ConfigurationError struct {
	Path string
	Err  error
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid OAuth client configuration: %v", e.Err)
	}
	return fmt.Sprintf("invalid OAuth client configuration %s: %v", e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// AuthorizationError reports that no usable credential could be obtained:
// consent was declined, the code exchange failed, or a refresh failed with
// no fallback. The next invocation starts over from consent.
type AuthorizationError struct {
	Reason string
	Err    error
}

func (e *AuthorizationError) Error() string {
	if e.Err == nil {
		return "authorization failed: " + e.Reason
	}
	return fmt.Sprintf("authorization failed: %s: %v", e.Reason, e.Err)
}

func (e *AuthorizationError) Unwrap() error {
	return e.Err
}
