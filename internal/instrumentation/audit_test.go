package instrumentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

const (
	testRecipient = "jane@example.com"
	testSubject   = "quarterly numbers"
)

func decodeLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestSendRecord_Complete(t *testing.T) {
	r := NewSendRecord([]string{testRecipient})
	if r.StartTime.IsZero() {
		t.Error("StartTime should not be zero")
	}

	r.Complete("msg-1", nil)
	if !r.Success || r.Status() != StatusSuccess {
		t.Error("expected success")
	}
	if r.MessageID != "msg-1" {
		t.Errorf("MessageID = %q, want %q", r.MessageID, "msg-1")
	}
	if r.Duration < 0 {
		t.Error("Duration should not be negative")
	}

	r = NewSendRecord(nil).Complete("", errors.New("quota exceeded"))
	if r.Success || r.Status() != StatusError {
		t.Error("expected failure")
	}
	if r.Error != "quota exceeded" {
		t.Errorf("Error = %q, want %q", r.Error, "quota exceeded")
	}
}

func TestAuditLogger_LogSend(t *testing.T) {
	tests := []struct {
		name         string
		config       AuditLoggingConfig
		err          error
		wantMsg      string
		wantPII      bool
		wantNoOutput bool
	}{
		{
			name:    "anonymized success",
			config:  AuditLoggingConfig{Enabled: true},
			wantMsg: "message_sent",
		},
		{
			name:    "pii failure",
			config:  AuditLoggingConfig{Enabled: true, IncludePII: true},
			err:     errors.New("denied"),
			wantMsg: "message_send_failed",
			wantPII: true,
		},
		{
			name:         "disabled",
			config:       AuditLoggingConfig{Enabled: false},
			wantNoOutput: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)), tt.config)

			r := NewSendRecord([]string{testRecipient}).
				WithEnvelope(testSubject, "text/plain", 1, 512)
			id := ""
			if tt.err == nil {
				id = "msg-1"
			}
			al.LogSend(r.Complete(id, tt.err))

			if tt.wantNoOutput {
				if buf.Len() != 0 {
					t.Errorf("expected no output, got %q", buf.String())
				}
				return
			}

			entry := decodeLogLine(t, &buf)
			if entry["msg"] != tt.wantMsg {
				t.Errorf("msg = %v, want %q", entry["msg"], tt.wantMsg)
			}
			hasAddress := strings.Contains(buf.String(), testRecipient)
			if hasAddress != tt.wantPII {
				t.Errorf("address present = %v, want %v", hasAddress, tt.wantPII)
			}
			if !tt.wantPII {
				if _, ok := entry["recipient_domains"]; !ok {
					t.Error("expected recipient_domains attribute")
				}
				if strings.Contains(buf.String(), testSubject) {
					t.Error("subject should not be logged without PII")
				}
			}
		})
	}
}

func TestAuditLogger_Nil(t *testing.T) {
	var al *AuditLogger
	// Should not panic
	al.LogSend(NewSendRecord(nil).Complete("", nil))
}

func TestSendRecord_WithSpanContext(t *testing.T) {
	withRecorder(t)
	ctx, span := StartSpan(context.Background(), "gmail.send_message")
	defer span.End()

	r := NewSendRecord([]string{testRecipient}).WithSpanContext(ctx)
	if r.TraceID == "" || r.TraceID != span.SpanContext().TraceID().String() {
		t.Errorf("TraceID = %q, want %q", r.TraceID, span.SpanContext().TraceID())
	}
	if r.SpanID != span.SpanContext().SpanID().String() {
		t.Errorf("SpanID = %q, want %q", r.SpanID, span.SpanContext().SpanID())
	}

	empty := NewSendRecord(nil).WithSpanContext(context.Background())
	if empty.TraceID != "" || empty.SpanID != "" {
		t.Errorf("expected no trace context, got %q/%q", empty.TraceID, empty.SpanID)
	}
}
