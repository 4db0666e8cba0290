package google

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// expiryDelta is how early a credential is considered expired, so a token
// is never handed out seconds before the provider rejects it.
const expiryDelta = 10 * time.Second

// Credential is the persisted bearer-token material for the Gmail API.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry"`
	Scopes       []string  `json:"scopes"`
}

// Expired reports whether the credential can no longer be used at now.
// A zero Expiry never expires.
func (c *Credential) Expired(now time.Time) bool {
	if c.Expiry.IsZero() {
		return false
	}
	return !now.Add(expiryDelta).Before(c.Expiry)
}

// CanRefresh reports whether the credential carries a refresh token.
func (c *Credential) CanRefresh() bool {
	return c.RefreshToken != ""
}

// Token converts the credential to an oauth2.Token.
func (c *Credential) Token() *oauth2.Token {
	tokenType := c.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		TokenType:    tokenType,
		RefreshToken: c.RefreshToken,
		Expiry:       c.Expiry,
	}
}

// newCredential builds a Credential from a token endpoint response. The
// granted scopes come from the response's scope field when present, falling
// back to the requested set.
func newCredential(tok *oauth2.Token, requested ScopeSet) *Credential {
	scopes := []string(requested)
	if granted, ok := tok.Extra("scope").(string); ok && strings.TrimSpace(granted) != "" {
		scopes = strings.Fields(granted)
	}
	return &Credential{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry.UTC().Round(0),
		Scopes:       append([]string(nil), scopes...),
	}
}

func encodeCredential(c *Credential) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("credential is nil")
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode credential: %w", err)
	}
	return data, nil
}

func decodeCredential(data []byte) (*Credential, error) {
	var c Credential
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode credential: %w", err)
	}
	if c.AccessToken == "" {
		return nil, fmt.Errorf("credential has no access token")
	}
	return &c, nil
}
