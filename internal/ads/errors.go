package ads

import "errors"

var (
	// ErrInvalidCustomerID is returned for customer IDs that are not ten digits.
	ErrInvalidCustomerID = errors.New("invalid customer ID")

	// ErrMissingDeveloperToken is returned when no developer token is configured.
	ErrMissingDeveloperToken = errors.New("google ads developer token is not configured")

	// ErrEmptyQuery is returned when a search is issued without a query.
	ErrEmptyQuery = errors.New("query must not be empty")
)
