package google

import (
	"context"
	"time"
)

// CredentialSource provides a currently-valid Credential.
// The Authorizer is the production implementation.
type CredentialSource interface {
	Credential(ctx context.Context) (*Credential, error)
}

// StaticCredential is a CredentialSource for callers that already hold a
// Credential and want to reuse it across sends. It never refreshes; an
// expired credential is reported so the caller can re-authorize.
type StaticCredential struct {
	cred *Credential
}

// NewStaticCredential wraps c.
func NewStaticCredential(c *Credential) *StaticCredential {
	return &StaticCredential{cred: c}
}

// Credential returns the wrapped credential if it has not expired.
func (s *StaticCredential) Credential(_ context.Context) (*Credential, error) {
	if s.cred == nil {
		return nil, &AuthorizationError{Reason: "no credential"}
	}
	if s.cred.Expired(time.Now()) {
		return nil, &AuthorizationError{Reason: "credential expired at " + s.cred.Expiry.Format(time.RFC3339)}
	}
	return s.cred, nil
}
