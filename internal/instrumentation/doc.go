// Package instrumentation provides OpenTelemetry instrumentation for
// send-gmail.
//
// Instrumentation is off by default. When enabled, a Provider exports
// metrics and traces to stdout or to an OTLP collector and must be shut down
// before the process exits so the last batch is flushed.
//
// # Metrics
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//
// OAuth Metrics:
//   - oauth_auth_total: Counter of interactive consent attempts by result
//   - oauth_token_refresh_total: Counter of token refresh attempts by result
//
// Send Metrics:
//   - gmail_messages_sent_total: Counter of send attempts by body type and status
//   - gmail_message_size_bytes: Histogram of encoded envelope sizes
//   - gmail_attachments_per_message: Histogram of attachment counts
//
// # Tracing
//
// Spans are created for Google API calls (google.<service>.<operation>),
// covering the message send and the OAuth token refresh.
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: false)
//   - METRICS_EXPORTER: otlp, stdout, none (default: none)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 1.0)
//   - OTEL_SERVICE_NAME: Service name (default: send-gmail)
//   - AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_INCLUDE_PII: per-send audit record
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordGoogleAPIOperation(ctx, "gmail", "send", "success", time.Since(start))
package instrumentation
