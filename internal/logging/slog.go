package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation  = "operation"
	KeyService    = "service"
	KeyCustomerID = "customer_id"
	KeyDuration   = "duration"
	KeyStatus     = "status"
	KeyError      = "error"
	KeyTool       = "tool"
	KeyAttribute  = "attribute"
	KeyValueType  = "value_type"
	KeyQuery      = "query"
)

// Status values for consistent logging.
// Duplicated from instrumentation, which imports this package.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// NewLogger builds the process logger. Output goes to w (stderr for the
// stdio transport, where stdout carries the protocol).
func NewLogger(w io.Writer, debug bool, format string) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// WithCustomer returns a logger with the masked customer ID attribute set.
func WithCustomer(logger *slog.Logger, customerID string) *slog.Logger {
	return logger.With(CustomerID(customerID))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Service returns a slog attribute for the service name.
func Service(svc string) slog.Attr {
	return slog.String(KeyService, svc)
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Attribute returns a slog attribute for a row attribute path.
func Attribute(path string) slog.Attr {
	return slog.String(KeyAttribute, path)
}

// ValueType returns a slog attribute holding the dynamic type of v.
func ValueType(v any) slog.Attr {
	return slog.String(KeyValueType, fmt.Sprintf("%T", v))
}

// Query returns a slog attribute for a GAQL query, truncated to keep log
// lines bounded.
func Query(q string) slog.Attr {
	const maxLen = 256
	q = strings.Join(strings.Fields(q), " ")
	if len(q) > maxLen {
		q = q[:maxLen] + "..."
	}
	return slog.String(KeyQuery, q)
}

// CustomerID returns a slog attribute with the masked customer ID.
func CustomerID(id string) slog.Attr {
	return slog.String(KeyCustomerID, MaskCustomerID(id))
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
//
// Usage:
//
//	logger.Info("operation", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// MaskCustomerID keeps the last four digits of a customer ID.
//
//	MaskCustomerID("123-456-7890") // "******7890"
//	MaskCustomerID("")             // ""
func MaskCustomerID(id string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, id)
	if digits == "" {
		return ""
	}
	if len(digits) <= 4 {
		return strings.Repeat("*", len(digits))
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}

// SanitizeToken returns a masked version of a token for logging.
// It returns a length indicator without exposing any token content.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}
