package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/justinnhli/send-gmail/internal/logging"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// tokenServer is a fake OAuth2 token endpoint.
type tokenServer struct {
	*httptest.Server

	mu            sync.Mutex
	refreshCalls  int
	exchangeCalls int
	lastForm      url.Values
	failRefresh   bool
	omitRefresh   bool
}

func newTokenServer(t *testing.T) *tokenServer {
	t.Helper()
	ts := &tokenServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(ts.handle))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *tokenServer) handle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.lastForm = r.PostForm

	resp := map[string]any{
		"token_type": "Bearer",
		"expires_in": 3600,
		"scope":      strings.Join(DefaultScopes, " "),
	}

	switch r.PostForm.Get("grant_type") {
	case "refresh_token":
		ts.refreshCalls++
		if ts.failRefresh {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error": "invalid_grant"}`))
			return
		}
		resp["access_token"] = "refreshed-access"
		if !ts.omitRefresh {
			resp["refresh_token"] = "rotated-refresh"
		}
	case "authorization_code":
		ts.exchangeCalls++
		if r.PostForm.Get("code") != "good-code" || r.PostForm.Get("code_verifier") == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error": "invalid_grant"}`))
			return
		}
		resp["access_token"] = "consented-access"
		resp["refresh_token"] = "consented-refresh"
	default:
		http.Error(w, "unsupported grant", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (ts *tokenServer) config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		Scopes:       DefaultScopes,
		RedirectURL:  "http://localhost",
		Endpoint: oauth2.Endpoint{
			AuthURL:   ts.URL + "/auth",
			TokenURL:  ts.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// memStore is an in-memory Store that records saves.
type memStore struct {
	cred    *Credential
	saves   int
	loadErr error
	saveErr error
}

func (s *memStore) Load() (*Credential, error) {
	return s.cred, s.loadErr
}

func (s *memStore) Save(c *Credential) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.cred = c
	return nil
}

// fakePrompter returns a fixed code and remembers the authorization URL.
type fakePrompter struct {
	code    string
	err     error
	calls   int
	authURL string
}

func (p *fakePrompter) PromptCode(_ context.Context, req ConsentRequest) (string, error) {
	p.calls++
	p.authURL = req.AuthCodeURL("")
	return p.code, p.err
}

func newTestAuthorizer(ts *tokenServer, store Store, prompter ConsentPrompter) *Authorizer {
	return NewAuthorizer(ts.config(), store, prompter,
		WithLogger(logging.Discard()),
		WithClock(func() time.Time { return testNow }),
	)
}

func TestAuthorizer_ValidStoredCredential(t *testing.T) {
	ts := newTokenServer(t)
	stored := &Credential{
		AccessToken:  "stored-access",
		RefreshToken: "stored-refresh",
		Expiry:       testNow.Add(time.Hour),
		Scopes:       DefaultScopes,
	}
	store := &memStore{cred: stored}
	prompter := &fakePrompter{}

	cred, err := newTestAuthorizer(ts, store, prompter).Credential(context.Background())
	require.NoError(t, err)

	assert.Same(t, stored, cred)
	assert.Zero(t, ts.refreshCalls)
	assert.Zero(t, ts.exchangeCalls)
	assert.Zero(t, prompter.calls)
	assert.Zero(t, store.saves)
}

func TestAuthorizer_ExpiredCredentialIsRefreshedOnce(t *testing.T) {
	ts := newTokenServer(t)
	store := &memStore{cred: &Credential{
		AccessToken:  "stale-access",
		RefreshToken: "stored-refresh",
		Expiry:       testNow.Add(-time.Minute),
		Scopes:       DefaultScopes,
	}}
	prompter := &fakePrompter{}

	cred, err := newTestAuthorizer(ts, store, prompter).Credential(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "refreshed-access", cred.AccessToken)
	assert.Equal(t, "rotated-refresh", cred.RefreshToken)
	assert.Equal(t, 1, ts.refreshCalls)
	assert.Equal(t, "stored-refresh", ts.lastForm.Get("refresh_token"))
	assert.Zero(t, prompter.calls, "refresh must not prompt")
	assert.Equal(t, 1, store.saves)
	assert.Same(t, cred, store.cred)
}

func TestAuthorizer_RefreshKeepsRefreshTokenWhenNotRotated(t *testing.T) {
	ts := newTokenServer(t)
	ts.omitRefresh = true
	store := &memStore{cred: &Credential{
		AccessToken:  "stale-access",
		RefreshToken: "stored-refresh",
		Expiry:       testNow.Add(-time.Minute),
		Scopes:       DefaultScopes,
	}}

	cred, err := newTestAuthorizer(ts, store, &fakePrompter{}).Credential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stored-refresh", cred.RefreshToken)
}

func TestAuthorizer_FailedRefreshFallsBackToConsent(t *testing.T) {
	ts := newTokenServer(t)
	ts.failRefresh = true
	store := &memStore{cred: &Credential{
		AccessToken:  "stale-access",
		RefreshToken: "revoked-refresh",
		Expiry:       testNow.Add(-time.Minute),
		Scopes:       DefaultScopes,
	}}
	prompter := &fakePrompter{code: "good-code"}

	cred, err := newTestAuthorizer(ts, store, prompter).Credential(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "consented-access", cred.AccessToken)
	assert.Equal(t, 1, ts.refreshCalls)
	assert.Equal(t, 1, ts.exchangeCalls)
	assert.Equal(t, 1, prompter.calls)
	assert.Equal(t, 1, store.saves)
}

func TestAuthorizer_ExpiredWithoutRefreshTokenRequiresConsent(t *testing.T) {
	ts := newTokenServer(t)
	store := &memStore{cred: &Credential{
		AccessToken: "old-access",
		Expiry:      testNow.Add(-time.Minute),
		Scopes:      DefaultScopes,
	}}
	prompter := &fakePrompter{code: "good-code"}

	cred, err := newTestAuthorizer(ts, store, prompter).Credential(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "consented-access", cred.AccessToken)
	assert.Zero(t, ts.refreshCalls, "nothing to refresh with")
	assert.Equal(t, 1, ts.exchangeCalls)
	assert.Equal(t, 1, prompter.calls)
	assert.Equal(t, 1, store.saves)
	assert.Same(t, cred, store.cred)
}

func TestAuthorizer_ConsentWhenNothingStored(t *testing.T) {
	ts := newTokenServer(t)
	store := &memStore{}
	prompter := &fakePrompter{code: "  good-code\n"}

	cred, err := newTestAuthorizer(ts, store, prompter).Credential(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "consented-access", cred.AccessToken)
	assert.Equal(t, "consented-refresh", cred.RefreshToken)
	assert.Equal(t, []string(DefaultScopes), cred.Scopes)
	assert.Equal(t, 1, store.saves)

	u, err := url.Parse(prompter.authURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.NotEmpty(t, q.Get("code_challenge"))
	assert.NotEmpty(t, q.Get("state"))
	assert.NotEmpty(t, ts.lastForm.Get("code_verifier"))
}

func TestAuthorizer_StaleScopesRequireConsent(t *testing.T) {
	ts := newTokenServer(t)
	store := &memStore{cred: &Credential{
		AccessToken:  "narrow-access",
		RefreshToken: "narrow-refresh",
		Expiry:       testNow.Add(time.Hour),
		Scopes:       []string{"https://www.googleapis.com/auth/gmail.readonly"},
	}}
	prompter := &fakePrompter{code: "good-code"}

	cred, err := newTestAuthorizer(ts, store, prompter).Credential(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "consented-access", cred.AccessToken)
	assert.Zero(t, ts.refreshCalls)
	assert.Equal(t, 1, prompter.calls)
}

func TestAuthorizer_ConsentFailures(t *testing.T) {
	tests := []struct {
		name         string
		prompter     *fakePrompter
		wantDeclined bool
	}{
		{name: "declined", prompter: &fakePrompter{err: ErrConsentDeclined}, wantDeclined: true},
		{name: "empty code", prompter: &fakePrompter{code: "   "}, wantDeclined: true},
		{name: "prompter error", prompter: &fakePrompter{err: errors.New("tty closed")}},
		{name: "bad code", prompter: &fakePrompter{code: "wrong-code"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTokenServer(t)
			store := &memStore{}

			_, err := newTestAuthorizer(ts, store, tt.prompter).Credential(context.Background())

			var authErr *AuthorizationError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.wantDeclined, errors.Is(err, ErrConsentDeclined))
			assert.Zero(t, store.saves, "nothing is persisted on failure")
		})
	}
}

func TestAuthorizer_StoreErrors(t *testing.T) {
	ts := newTokenServer(t)

	_, err := newTestAuthorizer(ts, &memStore{loadErr: errors.New("permission denied")}, &fakePrompter{}).
		Credential(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")

	_, err = newTestAuthorizer(ts, &memStore{saveErr: errors.New("disk full")}, &fakePrompter{code: "good-code"}).
		Credential(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestAuthStateString(t *testing.T) {
	assert.Equal(t, "start", stateStart.String())
	assert.Equal(t, "needs_consent", stateNeedsConsent.String())
	assert.Equal(t, "refreshing", stateRefreshing.String())
	assert.Equal(t, "ready", stateReady.String())
	assert.Equal(t, "unknown", authState(42).String())
}
