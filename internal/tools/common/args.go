package common

import (
	"fmt"
	"strings"
)

// ArgCustomerID is the argument naming the target Google Ads customer.
const ArgCustomerID = "customer_id"

// GetCustomerIDFromArgs returns the customer_id argument, or "" if absent.
func GetCustomerIDFromArgs(args map[string]any) string {
	if id, ok := args[ArgCustomerID].(string); ok {
		return strings.TrimSpace(id)
	}
	return ""
}

// ParseStringOrArray parses a parameter that can be either a single string or
// an array of strings.
func ParseStringOrArray(param any, paramName string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	var result []string

	switch v := param.(type) {
	case string:
		if v = strings.TrimSpace(v); v == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		result = []string{v}
	case []any:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			if str = strings.TrimSpace(str); str == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
			}
			result = append(result, str)
		}
	case []string:
		return ParseStringOrArray(toAny(v), paramName)
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}

	return result, nil
}

// ParseFieldList is ParseStringOrArray for field paths, where every item may
// also be a comma separated list ("campaign.id, campaign.name").
func ParseFieldList(param any, paramName string) ([]string, error) {
	items, err := ParseStringOrArray(param, paramName)
	if err != nil {
		return nil, err
	}
	var fields []string
	for _, item := range items {
		for _, f := range strings.Split(item, ",") {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%s cannot be empty", paramName)
	}
	return fields, nil
}

// ParseOptionalStringOrArray is ParseStringOrArray for optional parameters:
// a missing parameter yields nil without error.
func ParseOptionalStringOrArray(param any, paramName string) ([]string, error) {
	if param == nil {
		return nil, nil
	}
	return ParseStringOrArray(param, paramName)
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
