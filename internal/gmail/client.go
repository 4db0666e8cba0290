package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/justinnhli/send-gmail/internal/google"
	"github.com/justinnhli/send-gmail/internal/instrumentation"
)

// userID tells the API to act as the account the credential belongs to.
const userID = "me"

// Client wraps the Gmail Users service.
type Client struct {
	svc *gmail.UsersService
}

// SendResult describes a message accepted by Gmail.
type SendResult struct {
	ID       string
	ThreadID string
	LabelIDs []string
}

// NewClient binds cred to the Gmail API. No request is made until Send.
// opts are applied after the authenticated HTTP client, e.g. to override the
// endpoint in tests.
func NewClient(ctx context.Context, cred *google.Credential, opts ...option.ClientOption) (*Client, error) {
	if cred == nil {
		return nil, &google.AuthorizationError{Reason: "no credential"}
	}

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(cred.Token()))

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		ForceAttemptHTTP2: false,
	}

	allOpts := append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	svc, err := gmail.NewService(ctx, allOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{svc: svc.Users}, nil
}

// Send submits the envelope with a single users.messages.send call. Any
// failure is returned as a *TransportError and is not retried.
func (c *Client) Send(ctx context.Context, env *Envelope) (*SendResult, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceGmail, instrumentation.OperationSend,
		instrumentation.NewSpanAttributeBuilder().
			WithEnvelope(len(env.recipients), len(env.attachments), env.body.ContentType).
			Build()...,
	)
	defer span.End()

	sent, err := c.svc.Messages.Send(userID, &gmail.Message{Raw: env.Raw()}).Context(ctx).Do()
	if err != nil {
		terr := &TransportError{Err: err}
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			terr.StatusCode = apiErr.Code
		}
		instrumentation.SetSpanError(span, terr)
		return nil, terr
	}

	span.SetAttributes(instrumentation.NewSpanAttributeBuilder().WithMessageID(sent.Id).Build()...)
	instrumentation.SetSpanSuccess(span)

	return &SendResult{
		ID:       sent.Id,
		ThreadID: sent.ThreadId,
		LabelIDs: sent.LabelIds,
	}, nil
}
