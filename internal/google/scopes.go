package google

import (
	gmail "google.golang.org/api/gmail/v1"
)

// ScopeSet is the ordered set of OAuth scopes the application requests.
// Changing it invalidates previously stored credentials.
type ScopeSet []string

// DefaultScopes are the scopes needed to compose and send mail.
var DefaultScopes = ScopeSet{
	gmail.GmailComposeScope,
	gmail.GmailModifyScope,
}

// Contains reports whether scope is in the set.
func (s ScopeSet) Contains(scope string) bool {
	for _, have := range s {
		if have == scope {
			return true
		}
	}
	return false
}

// CoveredBy reports whether every scope in s is present in granted.
func (s ScopeSet) CoveredBy(granted []string) bool {
	g := ScopeSet(granted)
	for _, want := range s {
		if !g.Contains(want) {
			return false
		}
	}
	return true
}
