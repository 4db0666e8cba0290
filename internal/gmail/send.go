package gmail

import (
	"context"
	"time"

	"google.golang.org/api/option"

	"github.com/justinnhli/send-gmail/internal/google"
	"github.com/justinnhli/send-gmail/internal/instrumentation"
	"github.com/justinnhli/send-gmail/internal/logging"
)

// Sender composes authorization, message building and the API call into a
// single send.
type Sender struct {
	creds      google.CredentialSource
	logger     logging.Logger
	metrics    *instrumentation.Metrics
	audit      *instrumentation.AuditLogger
	clientOpts []option.ClientOption
}

// SenderOption configures a Sender.
type SenderOption func(*Sender)

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) SenderOption {
	return func(s *Sender) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records send metrics on m.
func WithMetrics(m *instrumentation.Metrics) SenderOption {
	return func(s *Sender) {
		s.metrics = m
	}
}

// WithAuditLogger writes one audit record per send.
func WithAuditLogger(al *instrumentation.AuditLogger) SenderOption {
	return func(s *Sender) {
		s.audit = al
	}
}

// WithClientOptions passes opts to NewClient.
func WithClientOptions(opts ...option.ClientOption) SenderOption {
	return func(s *Sender) {
		s.clientOpts = append(s.clientOpts, opts...)
	}
}

// NewSender creates a Sender that obtains credentials from creds.
func NewSender(creds google.CredentialSource, opts ...SenderOption) *Sender {
	s := &Sender{
		creds:  creds,
		logger: logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send builds msg and submits it. The envelope is built before credentials
// are requested, so an unreadable attachment fails without prompting for
// consent. Exactly one API call is made; a failure is logged and returned as
// a *TransportError.
func (s *Sender) Send(ctx context.Context, msg *EmailMessage) (*SendResult, error) {
	env, err := BuildMessage(msg)
	if err != nil {
		return nil, err
	}

	cred, err := s.creds.Credential(ctx)
	if err != nil {
		return nil, err
	}

	client, err := NewClient(ctx, cred, s.clientOpts...)
	if err != nil {
		return nil, err
	}

	return s.SendEnvelope(ctx, client, env)
}

// SendEnvelope submits an already built envelope through client.
func (s *Sender) SendEnvelope(ctx context.Context, client *Client, env *Envelope) (*SendResult, error) {
	ctx, span := instrumentation.StartSpan(ctx, "gmail.send_message",
		instrumentation.NewSpanAttributeBuilder().
			WithService(instrumentation.ServiceGmail).
			WithOperation(instrumentation.OperationSend).
			WithEnvelope(len(env.recipients), len(env.attachments), env.body.ContentType).
			Build()...,
	)
	defer span.End()

	record := instrumentation.NewSendRecord(env.Recipients()).
		WithEnvelope(env.Subject(), env.Body().ContentType, len(env.attachments), env.Size())

	s.logger.Info("sending message",
		logging.Operation(instrumentation.OperationSend),
		logging.Recipients(env.recipients),
		"attachments", len(env.attachments),
		"size_bytes", env.Size(),
	)

	start := time.Now()
	result, err := client.Send(ctx, env)
	duration := time.Since(start)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	s.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceGmail, instrumentation.OperationSend, status, duration)
	s.metrics.RecordSend(ctx, env.Body().ContentType, status, env.Size(), len(env.attachments))

	if err != nil {
		instrumentation.SetSpanError(span, err)
		s.audit.LogSend(record.WithSpanContext(ctx).Complete("", err))
		s.logger.Error("send failed",
			logging.Operation(instrumentation.OperationSend),
			logging.Status(logging.StatusError),
			logging.Err(err),
		)
		return nil, err
	}

	instrumentation.AddSpanEvent(span, "message_accepted",
		instrumentation.NewSpanAttributeBuilder().WithMessageID(result.ID).Build()...)
	instrumentation.SetSpanSuccess(span)
	s.audit.LogSend(record.WithSpanContext(ctx).Complete(result.ID, nil))
	s.logger.Info("message sent",
		logging.Operation(instrumentation.OperationSend),
		logging.Status(logging.StatusSuccess),
		logging.MessageID(result.ID),
		"duration", duration,
	)
	return result, nil
}
