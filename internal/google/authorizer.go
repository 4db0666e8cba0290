package google

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/justinnhli/send-gmail/internal/instrumentation"
	"github.com/justinnhli/send-gmail/internal/logging"
)

type authState int

const (
	stateStart authState = iota
	stateNeedsConsent
	stateRefreshing
	stateReady
)

func (s authState) String() string {
	switch s {
	case stateStart:
		return "start"
	case stateNeedsConsent:
		return "needs_consent"
	case stateRefreshing:
		return "refreshing"
	case stateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Authorizer produces a currently-valid Credential. Each call to Credential
// starts from the store, so a long-lived process never reuses a credential
// without re-checking its expiry.
type Authorizer struct {
	config   *oauth2.Config
	scopes   ScopeSet
	store    Store
	prompter ConsentPrompter
	logger   logging.Logger
	metrics  *instrumentation.Metrics
	now      func() time.Time
}

// AuthorizerOption configures an Authorizer.
type AuthorizerOption func(*Authorizer)

// WithLogger sets the logger used for state transitions.
func WithLogger(logger logging.Logger) AuthorizerOption {
	return func(a *Authorizer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetrics records OAuth metrics on m.
func WithMetrics(m *instrumentation.Metrics) AuthorizerOption {
	return func(a *Authorizer) {
		a.metrics = m
	}
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) AuthorizerOption {
	return func(a *Authorizer) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAuthorizer creates an Authorizer for config, whose Scopes are the
// ScopeSet stored credentials must cover.
func NewAuthorizer(config *oauth2.Config, store Store, prompter ConsentPrompter, opts ...AuthorizerOption) *Authorizer {
	a := &Authorizer{
		config:   config,
		scopes:   ScopeSet(config.Scopes),
		store:    store,
		prompter: prompter,
		logger:   logging.DefaultLogger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Credential runs the authorization state machine:
//
//	start -> ready            stored credential is valid
//	start -> refreshing       stored credential expired, has refresh token
//	start -> needs_consent    nothing stored, stale scopes, or no refresh token
//	refreshing -> ready       refresh succeeded (saved)
//	refreshing -> needs_consent
//	needs_consent -> ready    code exchanged (saved)
//
// Consent is the only step that waits for a human.
func (a *Authorizer) Credential(ctx context.Context) (*Credential, error) {
	cred, err := a.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}

	state := a.initialState(cred)
	a.logger.Debug("authorization state", logging.State(state.String()))

	for {
		switch state {
		case stateReady:
			return cred, nil

		case stateRefreshing:
			refreshed, err := a.refresh(ctx, cred)
			if err != nil {
				a.logger.Warn("token refresh failed, falling back to consent", logging.Err(err))
				state = stateNeedsConsent
				continue
			}
			if err := a.store.Save(refreshed); err != nil {
				return nil, fmt.Errorf("failed to save refreshed credential: %w", err)
			}
			cred, state = refreshed, stateReady

		case stateNeedsConsent:
			granted, err := a.consent(ctx)
			if err != nil {
				return nil, err
			}
			if err := a.store.Save(granted); err != nil {
				return nil, fmt.Errorf("failed to save credential: %w", err)
			}
			cred, state = granted, stateReady

		default:
			return nil, fmt.Errorf("unexpected authorization state %s", state)
		}

		a.logger.Debug("authorization state", logging.State(state.String()))
	}
}

func (a *Authorizer) initialState(cred *Credential) authState {
	switch {
	case cred == nil:
		return stateNeedsConsent
	case !a.scopes.CoveredBy(cred.Scopes):
		a.logger.Info("stored credential lacks required scopes, re-authorizing")
		return stateNeedsConsent
	case !cred.Expired(a.now()):
		return stateReady
	case cred.CanRefresh():
		return stateRefreshing
	default:
		return stateNeedsConsent
	}
}

// refresh exchanges the refresh token for a new access token. Exactly one
// token endpoint call is made.
func (a *Authorizer) refresh(ctx context.Context, cred *Credential) (*Credential, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceOAuth, "refresh")
	defer span.End()

	// An empty access token forces the token source to hit the endpoint.
	ts := a.config.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken})
	tok, err := ts.Token()
	if err != nil {
		instrumentation.SetSpanError(span, err)
		a.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultFailure)
		return nil, err
	}

	refreshed := newCredential(tok, ScopeSet(cred.Scopes))
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = cred.RefreshToken
	}

	instrumentation.SetSpanSuccess(span)
	a.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultSuccess)
	a.logger.Info("refreshed access token", "access_token", logging.SanitizeToken(refreshed.AccessToken))
	return refreshed, nil
}

// consent drives the interactive authorization-code flow with PKCE.
func (a *Authorizer) consent(ctx context.Context) (*Credential, error) {
	conf := *a.config
	state := oauth2.GenerateVerifier()
	verifier := oauth2.GenerateVerifier()

	req := ConsentRequest{
		State: state,
		authURL: func(redirectURL string) string {
			if redirectURL != "" {
				conf.RedirectURL = redirectURL
			}
			return conf.AuthCodeURL(state,
				oauth2.AccessTypeOffline,
				oauth2.ApprovalForce,
				oauth2.S256ChallengeOption(verifier),
			)
		},
	}

	a.logger.Info("user consent required")
	code, err := a.prompter.PromptCode(ctx, req)
	if err == nil && strings.TrimSpace(code) == "" {
		err = ErrConsentDeclined
	}
	if err != nil {
		if errors.Is(err, ErrConsentDeclined) {
			a.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultDeclined)
			return nil, &AuthorizationError{Reason: "user declined consent", Err: err}
		}
		a.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		return nil, &AuthorizationError{Reason: "consent failed", Err: err}
	}

	tok, err := conf.Exchange(ctx, strings.TrimSpace(code), oauth2.VerifierOption(verifier))
	if err != nil {
		a.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		return nil, &AuthorizationError{Reason: "authorization code exchange failed", Err: err}
	}

	a.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)
	a.logger.Info("authorization granted", "access_token", logging.SanitizeToken(tok.AccessToken))
	return newCredential(tok, a.scopes), nil
}
