package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrResult    = "result"
	attrBodyType  = "body_type"
)

// Metrics provides methods for recording observability metrics.
//
// All methods are safe to call on a nil *Metrics or on a zero value, in which
// case nothing is recorded.
type Metrics struct {
	// Google API metrics
	googleAPIOperationsTotal   metric.Int64Counter
	googleAPIOperationDuration metric.Float64Histogram

	// OAuth metrics
	oauthAuthTotal         metric.Int64Counter
	oauthTokenRefreshTotal metric.Int64Counter

	// Send metrics
	messagesSentTotal  metric.Int64Counter
	messageSizeBytes   metric.Int64Histogram
	attachmentsPerSend metric.Int64Histogram
}

// NewMetrics creates a new Metrics instance with all instruments initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	// Google API Metrics
	m.googleAPIOperationsTotal, err = meter.Int64Counter(
		"google_api_operations_total",
		metric.WithDescription("Total number of Google API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operations_total counter: %w", err)
	}

	m.googleAPIOperationDuration, err = meter.Float64Histogram(
		"google_api_operation_duration_seconds",
		metric.WithDescription("Google API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operation_duration_seconds histogram: %w", err)
	}

	// OAuth Metrics
	m.oauthAuthTotal, err = meter.Int64Counter(
		"oauth_auth_total",
		metric.WithDescription("Total number of interactive OAuth consent attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_auth_total counter: %w", err)
	}

	m.oauthTokenRefreshTotal, err = meter.Int64Counter(
		"oauth_token_refresh_total",
		metric.WithDescription("Total number of OAuth token refresh attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_token_refresh_total counter: %w", err)
	}

	// Send Metrics
	m.messagesSentTotal, err = meter.Int64Counter(
		"gmail_messages_sent_total",
		metric.WithDescription("Total number of send attempts"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail_messages_sent_total counter: %w", err)
	}

	m.messageSizeBytes, err = meter.Int64Histogram(
		"gmail_message_size_bytes",
		metric.WithDescription("Size of the encoded message envelope"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(1<<10, 16<<10, 256<<10, 1<<20, 5<<20, 10<<20, 25<<20),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail_message_size_bytes histogram: %w", err)
	}

	m.attachmentsPerSend, err = meter.Int64Histogram(
		"gmail_attachments_per_message",
		metric.WithDescription("Number of attachments per sent message"),
		metric.WithUnit("{attachment}"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 5, 10),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail_attachments_per_message histogram: %w", err)
	}

	return m, nil
}

// RecordGoogleAPIOperation records a Google API operation with service, operation,
// status, and duration.
//
// Parameters:
//   - service: Google service name (gmail, oauth)
//   - operation: Operation type (send, refresh, exchange)
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the operation
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.googleAPIOperationsTotal == nil || m.googleAPIOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.googleAPIOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.googleAPIOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordOAuthAuth records an interactive consent attempt with result.
// Result should be one of: "success", "failure", "declined"
func (m *Metrics) RecordOAuthAuth(ctx context.Context, result string) {
	if m == nil || m.oauthAuthTotal == nil {
		return // Instrumentation not initialized
	}

	m.oauthAuthTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordOAuthTokenRefresh records an OAuth token refresh attempt with result.
// Result should be one of: "success", "failure"
func (m *Metrics) RecordOAuthTokenRefresh(ctx context.Context, result string) {
	if m == nil || m.oauthTokenRefreshTotal == nil {
		return // Instrumentation not initialized
	}

	m.oauthTokenRefreshTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordSend records one send attempt. sizeBytes is the length of the raw
// encoded envelope.
func (m *Metrics) RecordSend(ctx context.Context, bodyType, status string, sizeBytes, attachments int) {
	if m == nil || m.messagesSentTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := metric.WithAttributes(
		attribute.String(attrBodyType, bodyType),
		attribute.String(attrStatus, status),
	)

	m.messagesSentTotal.Add(ctx, 1, attrs)
	if m.messageSizeBytes != nil {
		m.messageSizeBytes.Record(ctx, int64(sizeBytes), attrs)
	}
	if m.attachmentsPerSend != nil {
		m.attachmentsPerSend.Record(ctx, int64(attachments), attrs)
	}
}
