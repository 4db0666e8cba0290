package instrumentation

import (
	"sort"
	"strings"
)

// ExtractUserDomain extracts the domain part from an email address.
// This reduces cardinality by using the domain instead of the full email.
//
// Example:
//
//	ExtractUserDomain("jane@example.com")  // "example.com"
//	ExtractUserDomain("invalid")           // "unknown"
//	ExtractUserDomain("")                  // "unknown"
func ExtractUserDomain(email string) string {
	if email == "" {
		return "unknown"
	}

	parts := strings.Split(email, "@")
	if len(parts) == 2 && parts[1] != "" {
		return strings.ToLower(parts[1])
	}

	return "unknown"
}

// RecipientDomains returns the sorted, de-duplicated domains of addrs.
func RecipientDomains(addrs []string) []string {
	seen := make(map[string]struct{}, len(addrs))
	domains := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		d := ExtractUserDomain(addr)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains
}

// Operation types for Google API metrics.
// Status, OAuth, and Service constants are defined in config.go.
const (
	OperationSend     = "send"
	OperationRefresh  = "refresh"
	OperationExchange = "exchange"
)
