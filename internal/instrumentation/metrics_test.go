package instrumentation

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return m, reader
}

func collectSum(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s is %T, want Sum[int64]", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestMetrics_RecordGoogleAPIOperation(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordGoogleAPIOperation(ctx, ServiceGmail, OperationSend, StatusSuccess, 200*time.Millisecond)
	m.RecordGoogleAPIOperation(ctx, ServiceGmail, OperationSend, StatusError, 500*time.Millisecond)

	if got := collectSum(t, reader, "google_api_operations_total"); got != 2 {
		t.Errorf("google_api_operations_total = %d, want 2", got)
	}
}

func TestMetrics_RecordOAuth(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordOAuthAuth(ctx, OAuthResultSuccess)
	m.RecordOAuthAuth(ctx, OAuthResultDeclined)
	m.RecordOAuthTokenRefresh(ctx, OAuthResultFailure)

	if got := collectSum(t, reader, "oauth_auth_total"); got != 2 {
		t.Errorf("oauth_auth_total = %d, want 2", got)
	}
	if got := collectSum(t, reader, "oauth_token_refresh_total"); got != 1 {
		t.Errorf("oauth_token_refresh_total = %d, want 1", got)
	}
}

func TestMetrics_RecordSend(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordSend(context.Background(), "html", StatusSuccess, 2048, 2)

	if got := collectSum(t, reader, "gmail_messages_sent_total"); got != 1 {
		t.Errorf("gmail_messages_sent_total = %d, want 1", got)
	}
}

func TestMetrics_NilAndZeroValueAreNoOps(t *testing.T) {
	ctx := context.Background()

	for name, m := range map[string]*Metrics{"nil": nil, "zero": {}} {
		t.Run(name, func(t *testing.T) {
			// Should not panic
			m.RecordGoogleAPIOperation(ctx, ServiceGmail, OperationSend, StatusSuccess, time.Second)
			m.RecordOAuthAuth(ctx, OAuthResultSuccess)
			m.RecordOAuthTokenRefresh(ctx, OAuthResultSuccess)
			m.RecordSend(ctx, "plain", StatusSuccess, 10, 0)
		})
	}
}
