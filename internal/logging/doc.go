// Package logging provides structured logging utilities for adsmcp.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "googleads.search")
//	logger.Info("search completed",
//	    logging.CustomerID(customerID),
//	    logging.Status("success"))
//
// # Security Considerations
//
//   - Customer IDs are masked to their last four digits
//   - Tokens are never logged directly, only their length
package logging
