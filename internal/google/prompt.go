package google

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// ConsentPrompter performs the human part of the OAuth2 consent flow: it
// presents the authorization URL and blocks until an authorization code is
// available. It is the only interactive step in the program.
type ConsentPrompter interface {
	PromptCode(ctx context.Context, req ConsentRequest) (string, error)
}

// ConsentRequest describes one consent attempt.
type ConsentRequest struct {
	// State is the anti-forgery value the provider echoes back with the code.
	State string

	authURL func(redirectURL string) string
}

// AuthCodeURL returns the URL the user must visit. A non-empty redirectURL
// replaces the redirect from the client-secret descriptor for this attempt
// and for the code exchange that follows.
func (r ConsentRequest) AuthCodeURL(redirectURL string) string {
	return r.authURL(redirectURL)
}

// TerminalPrompter prints the authorization URL and reads the code from a
// line of input. The line may be the bare code or the full redirect URL
// copied from the browser.
type TerminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminalPrompter creates a prompter reading from in and writing to out.
func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: bufio.NewReader(in), out: out}
}

// PromptCode implements ConsentPrompter.
func (p *TerminalPrompter) PromptCode(ctx context.Context, req ConsentRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fmt.Fprintf(p.out, "Go to the following link in your browser and authorize access:\n\n%s\n\n", req.AuthCodeURL(""))
	fmt.Fprint(p.out, "Enter the authorization code (or the URL you were redirected to): ")

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read authorization code: %w", err)
	}

	return parseCodeInput(strings.TrimSpace(line), req.State)
}

// parseCodeInput accepts either a bare authorization code or a redirect URL
// carrying code and state query parameters.
func parseCodeInput(input, state string) (string, error) {
	if input == "" {
		return "", ErrConsentDeclined
	}
	if !strings.Contains(input, "://") {
		return input, nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("failed to parse redirect URL: %w", err)
	}
	return codeFromQuery(u.Query(), state)
}

// codeFromQuery extracts the code from redirect query parameters, checking
// state and the provider's error parameter.
func codeFromQuery(q url.Values, state string) (string, error) {
	if e := q.Get("error"); e != "" {
		if e == "access_denied" {
			return "", ErrConsentDeclined
		}
		return "", fmt.Errorf("authorization server returned error %q", e)
	}
	if q.Get("state") != state {
		return "", errors.New("state mismatch in authorization response")
	}
	code := q.Get("code")
	if code == "" {
		return "", ErrConsentDeclined
	}
	return code, nil
}
