package ads

import (
	"fmt"
	"strings"
)

// NormalizeCustomerID strips dashes and spaces from a customer ID such as
// "123-456-7890" and checks that ten digits remain.
func NormalizeCustomerID(id string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, strings.TrimSpace(id))

	if len(cleaned) != 10 {
		return "", fmt.Errorf("%w: %q must have 10 digits", ErrInvalidCustomerID, id)
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %q contains non-digit characters", ErrInvalidCustomerID, id)
		}
	}
	return cleaned, nil
}

// CustomerIDFromResourceName returns the ID part of "customers/1234567890".
func CustomerIDFromResourceName(resourceName string) string {
	if i := strings.LastIndex(resourceName, "/"); i >= 0 {
		return resourceName[i+1:]
	}
	return resourceName
}

// FormatCustomerID renders a ten digit customer ID as "123-456-7890".
// Other inputs are returned unchanged.
func FormatCustomerID(id string) string {
	if len(id) != 10 {
		return id
	}
	return id[:3] + "-" + id[3:6] + "-" + id[6:]
}
