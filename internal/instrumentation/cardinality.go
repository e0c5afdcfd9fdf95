package instrumentation

import "github.com/teemow/adsmcp/internal/logging"

// Cardinality management helpers for metrics.
// These functions reduce high-cardinality label values to prevent metrics explosion.
//
// # Warning
//
// High cardinality in metrics can cause:
// - Increased memory usage in Prometheus/metrics backends
// - Slower query performance
// - Higher storage costs
//
// Always use these helpers when recording metrics with customer identifiers.

// CustomerLabel reduces a customer ID to its last four digits.
//
// Example:
//
//	CustomerLabel("123-456-7890")  // "******7890"
//	CustomerLabel("")              // "unknown"
func CustomerLabel(customerID string) string {
	if masked := logging.MaskCustomerID(customerID); masked != "" {
		return masked
	}
	return StatusUnknown
}

// Operation types for Google Ads API metrics.
// Status and Service constants are defined in config.go.
const (
	OperationList   = "list"
	OperationSearch = "search"
)
