package instrumentation

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// Test constants to reduce string repetition and satisfy goconst
const (
	testCustomerID     = "1234567890"
	testMaskedCustomer = "******7890"
	testTraceID        = "abc123def456"
	testSpanID         = "span789"
	testToolSearch     = "search"
	testToolCampaigns  = "get_campaigns"
	testToolCustomers  = "list_accessible_customers"
)

func attrsByKey(attrs []slog.Attr) map[string]slog.Attr {
	attrMap := make(map[string]slog.Attr)
	for _, attr := range attrs {
		attrMap[attr.Key] = attr
	}
	return attrMap
}

func TestToolInvocation_NewAndComplete(t *testing.T) {
	ti := NewToolInvocation(testToolSearch)

	if ti.Tool != testToolSearch {
		t.Errorf("Tool = %q, want %q", ti.Tool, testToolSearch)
	}
	if ti.StartTime.IsZero() {
		t.Error("StartTime should not be zero")
	}

	ti.CompleteSuccess()

	if !ti.Success {
		t.Error("Success should be true")
	}
	if ti.Duration < 0 {
		t.Error("Duration should not be negative")
	}
	if ti.Error != "" {
		t.Errorf("Error should be empty, got %q", ti.Error)
	}
}

func TestToolInvocation_CompleteWithError(t *testing.T) {
	ti := NewToolInvocation(testToolCampaigns)
	err := errors.New("permission denied")

	ti.CompleteWithError(err)

	if ti.Success {
		t.Error("Success should be false")
	}
	if ti.Error != "permission denied" {
		t.Errorf("Error = %q, want %q", ti.Error, "permission denied")
	}
}

func TestToolInvocation_WithCustomer(t *testing.T) {
	ti := NewToolInvocation(testToolSearch).WithCustomer(testCustomerID)

	if ti.CustomerID != testCustomerID {
		t.Errorf("CustomerID = %q, want %q", ti.CustomerID, testCustomerID)
	}
	if masked := ti.MaskedCustomerID(); masked != testMaskedCustomer {
		t.Errorf("MaskedCustomerID() = %q, want %q", masked, testMaskedCustomer)
	}
}

func TestToolInvocation_WithService(t *testing.T) {
	ti := NewToolInvocation(testToolSearch)
	ti.WithService(ServiceGoogleAds, OperationSearch)

	if ti.ServiceName != ServiceGoogleAds {
		t.Errorf("ServiceName = %q, want %q", ti.ServiceName, ServiceGoogleAds)
	}
	if ti.Operation != OperationSearch {
		t.Errorf("Operation = %q, want %q", ti.Operation, OperationSearch)
	}
}

func TestToolInvocation_Status(t *testing.T) {
	ti := NewToolInvocation("test")

	ti.Success = true
	if status := ti.Status(); status != StatusSuccess {
		t.Errorf("Status() = %q, want %q", status, StatusSuccess)
	}

	ti.Success = false
	if status := ti.Status(); status != StatusError {
		t.Errorf("Status() = %q, want %q", status, StatusError)
	}
}

func TestToolInvocation_LogAttrs(t *testing.T) {
	ti := NewToolInvocation(testToolSearch).
		WithCustomer(testCustomerID).
		WithService(ServiceGoogleAds, OperationSearch).
		WithRows(3).
		CompleteSuccess()
	ti.TraceID = testTraceID

	attrMap := attrsByKey(ti.LogAttrs())

	for _, key := range []string{"tool", "customer_id", "duration", "success", "rows"} {
		if _, ok := attrMap[key]; !ok {
			t.Errorf("Missing required attribute: %s", key)
		}
	}

	if customer := attrMap["customer_id"].Value.String(); customer != testMaskedCustomer {
		t.Errorf("customer_id = %q, want %q", customer, testMaskedCustomer)
	}
	if service := attrMap["service"].Value.String(); service != ServiceGoogleAds {
		t.Errorf("service = %q, want %q", service, ServiceGoogleAds)
	}
	if rows := attrMap["rows"].Value.Int64(); rows != 3 {
		t.Errorf("rows = %d, want 3", rows)
	}
}

func TestToolInvocation_LogAttrs_WithError(t *testing.T) {
	ti := NewToolInvocation(testToolCampaigns).
		WithCustomer(testCustomerID).
		CompleteWithError(errors.New("test error"))

	attrMap := attrsByKey(ti.LogAttrs())

	if errVal := attrMap["error"].Value.String(); errVal != "test error" {
		t.Errorf("error = %q, want %q", errVal, "test error")
	}
}

func TestToolInvocation_LogAttrs_MinimalFields(t *testing.T) {
	ti := NewToolInvocation(testToolCustomers).CompleteSuccess()

	attrMap := attrsByKey(ti.LogAttrs())

	for _, key := range []string{"customer_id", "service", "operation", "rows", "trace_id"} {
		if _, ok := attrMap[key]; ok {
			t.Errorf("%s should not be present when empty", key)
		}
	}
}

func TestToolInvocation_LogAuditAttrs(t *testing.T) {
	ti := NewToolInvocation(testToolSearch).
		WithCustomer(testCustomerID).
		WithService(ServiceGoogleAds, OperationSearch).
		CompleteSuccess()
	ti.TraceID = testTraceID
	ti.SpanID = testSpanID

	attrMap := attrsByKey(ti.LogAuditAttrs())

	if customer := attrMap["customer_id"].Value.String(); customer != testCustomerID {
		t.Errorf("customer_id = %q, want %q", customer, testCustomerID)
	}
	if traceID := attrMap["trace_id"].Value.String(); traceID != testTraceID {
		t.Errorf("trace_id = %q, want %q", traceID, testTraceID)
	}
	if spanID := attrMap["span_id"].Value.String(); spanID != testSpanID {
		t.Errorf("span_id = %q, want %q", spanID, testSpanID)
	}
}

func TestAuditLogger_New(t *testing.T) {
	al := NewAuditLogger(nil)
	if al.logger == nil {
		t.Error("logger should not be nil when created with nil")
	}

	logger := slog.Default()
	al = NewAuditLogger(logger)
	if al.logger != logger {
		t.Error("logger should be the provided logger")
	}
}

func TestAuditLogger_LogToolInvocation_MasksCustomer(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	al.LogToolInvocation(NewToolInvocation(testToolSearch).WithCustomer(testCustomerID).CompleteSuccess())

	out := buf.String()
	if !strings.Contains(out, "tool_executed") {
		t.Errorf("expected tool_executed message, got %q", out)
	}
	if strings.Contains(out, testCustomerID) {
		t.Errorf("customer ID leaked into non-PII log: %q", out)
	}
}

func TestAuditLogger_LogToolInvocation_IncludePII(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLoggerWithConfig(slog.New(slog.NewTextHandler(&buf, nil)), AuditLoggingConfig{
		Enabled:    true,
		IncludePII: true,
	})

	al.LogToolInvocation(NewToolInvocation(testToolSearch).WithCustomer(testCustomerID).CompleteWithError(errors.New("boom")))

	out := buf.String()
	if !strings.Contains(out, "tool_failed") {
		t.Errorf("expected tool_failed message, got %q", out)
	}
	if !strings.Contains(out, testCustomerID) {
		t.Errorf("expected full customer ID with PII enabled, got %q", out)
	}
}

func TestAuditLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	al.SetEnabled(false)

	al.LogToolInvocation(NewToolInvocation(testToolSearch).CompleteSuccess())
	al.LogToolAudit(NewToolInvocation(testToolSearch).CompleteSuccess())

	if buf.Len() != 0 {
		t.Errorf("expected no output when disabled, got %q", buf.String())
	}
}

func TestAuditLogger_LogToolAudit(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	ti := NewToolInvocation(testToolCampaigns).
		WithCustomer(testCustomerID).
		WithService(ServiceGoogleAds, OperationSearch).
		CompleteSuccess()

	al.LogToolAudit(ti)

	if !strings.Contains(buf.String(), "tool_audit") {
		t.Errorf("expected tool_audit message, got %q", buf.String())
	}
}

func TestToolInvocation_WithSpanContext_NoSpan(t *testing.T) {
	ti := NewToolInvocation("test").WithSpanContext(context.Background())

	if ti.TraceID != "" {
		t.Errorf("TraceID = %q, want empty string", ti.TraceID)
	}
	if ti.SpanID != "" {
		t.Errorf("SpanID = %q, want empty string", ti.SpanID)
	}
}

func TestToolInvocation_Complete_WithError(t *testing.T) {
	ti := NewToolInvocation("test")
	ti.Complete(false, errors.New("some error"))

	if ti.Success {
		t.Error("Success should be false")
	}
	if ti.Error != "some error" {
		t.Errorf("Error = %q, want %q", ti.Error, "some error")
	}
}
