package ads

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCustomerID(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"1234567890", "1234567890", false},
		{"123-456-7890", "1234567890", false},
		{" 123 456 7890 ", "1234567890", false},
		{"", "", true},
		{"12345", "", true},
		{"123-456-789a", "", true},
		{"12345678901", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeCustomerID(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCustomerID) {
					t.Errorf("NormalizeCustomerID(%q) error = %v, want ErrInvalidCustomerID", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeCustomerID(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("NormalizeCustomerID(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCustomerIDFromResourceName(t *testing.T) {
	assert.Equal(t, "1234567890", CustomerIDFromResourceName("customers/1234567890"))
	assert.Equal(t, "1234567890", CustomerIDFromResourceName("1234567890"))
	assert.Equal(t, "", CustomerIDFromResourceName("customers/"))
}

func TestFormatCustomerID(t *testing.T) {
	assert.Equal(t, "123-456-7890", FormatCustomerID("1234567890"))
	assert.Equal(t, "12345", FormatCustomerID("12345"))
}
