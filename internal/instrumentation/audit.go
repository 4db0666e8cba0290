package instrumentation

import (
	"context"
	"log/slog"
	"time"
)

// SendRecord captures one send attempt for audit logging.
//
// # Privacy Considerations
//
// Recipients contains PII. Only the recipient domains are logged unless the
// AuditLogger is configured with IncludePII.
type SendRecord struct {
	// Recipients in To, Cc, Bcc order
	Recipients []string

	Subject     string
	BodyType    string
	Attachments int
	SizeBytes   int

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	MessageID string
	Error     string

	// Tracing context
	TraceID string
	SpanID  string
}

// NewSendRecord creates a SendRecord with timing started.
// Call Complete when the send finishes.
func NewSendRecord(recipients []string) *SendRecord {
	return &SendRecord{
		Recipients: recipients,
		StartTime:  time.Now(),
	}
}

// WithEnvelope sets the envelope summary.
func (r *SendRecord) WithEnvelope(subject, bodyType string, attachments, sizeBytes int) *SendRecord {
	r.Subject = subject
	r.BodyType = bodyType
	r.Attachments = attachments
	r.SizeBytes = sizeBytes
	return r
}

// WithSpanContext extracts trace context from the current span.
func (r *SendRecord) WithSpanContext(ctx context.Context) *SendRecord {
	r.TraceID = GetTraceID(ctx)
	r.SpanID = GetSpanID(ctx)
	return r
}

// Complete marks the send as finished and calculates duration.
func (r *SendRecord) Complete(messageID string, err error) *SendRecord {
	r.Duration = time.Since(r.StartTime)
	r.Success = err == nil
	r.MessageID = messageID
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// Status returns "success" or "error" based on the Success field.
func (r *SendRecord) Status() string {
	if r.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns slog attributes with recipients reduced to their domains.
func (r *SendRecord) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.Any("recipient_domains", RecipientDomains(r.Recipients)),
		slog.Int("recipient_count", len(r.Recipients)),
	}
	return append(attrs, r.commonAttrs()...)
}

// LogAuditAttrs returns slog attributes including full recipient addresses
// and the subject.
//
// # Security Warning
//
// This method includes PII. Ensure audit logs are stored with appropriate
// access controls.
func (r *SendRecord) LogAuditAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.Any("recipients", r.Recipients),
		slog.String("subject", r.Subject),
	}
	return append(attrs, r.commonAttrs()...)
}

func (r *SendRecord) commonAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.Int("attachments", r.Attachments),
		slog.Int("size_bytes", r.SizeBytes),
		slog.Duration("duration", r.Duration),
		slog.Bool("success", r.Success),
	}

	if r.BodyType != "" {
		attrs = append(attrs, slog.String("body_type", r.BodyType))
	}
	if r.MessageID != "" {
		attrs = append(attrs, slog.String("message_id", r.MessageID))
	}
	if r.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", r.TraceID))
	}
	if r.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", r.SpanID))
	}
	if r.Error != "" {
		attrs = append(attrs, slog.String("error", r.Error))
	}
	return attrs
}

// AuditLogger provides structured audit logging for sends.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates a new AuditLogger with the given configuration.
// A nil logger falls back to slog.Default().
func NewAuditLogger(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// LogSend logs a completed send. A nil AuditLogger logs nothing.
func (al *AuditLogger) LogSend(r *SendRecord) {
	if al == nil || !al.enabled || r == nil {
		return
	}

	var attrs []slog.Attr
	if al.includePII {
		attrs = r.LogAuditAttrs()
	} else {
		attrs = r.LogAttrs()
	}

	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if r.Success {
		al.logger.Info("message_sent", args...)
	} else {
		al.logger.Warn("message_send_failed", args...)
	}
}
