package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-32-chars-min!!!"

func protectedHandler(called *bool, subject *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		*subject, _ = SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestNewBearerAuth_EmptySecret(t *testing.T) {
	_, err := NewBearerAuth("")
	assert.ErrorIs(t, err, ErrEmptyAuthSecret)
}

func TestBearerAuth_Middleware(t *testing.T) {
	auth, err := NewBearerAuth(testSecret)
	require.NoError(t, err)

	valid, err := auth.IssueToken("ops", time.Hour)
	require.NoError(t, err)
	expired, err := auth.IssueToken("ops", -time.Minute)
	require.NoError(t, err)

	other, err := NewBearerAuth("another-secret")
	require.NoError(t, err)
	foreign, err := other.IssueToken("ops", time.Hour)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "ops"}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name       string
		method     string
		path       string
		header     string
		wantStatus int
		wantCalled bool
	}{
		{"valid token", http.MethodGet, "/customers", "Bearer " + valid, http.StatusOK, true},
		{"missing header", http.MethodGet, "/customers", "", http.StatusUnauthorized, false},
		{"wrong scheme", http.MethodGet, "/customers", "Basic " + valid, http.StatusUnauthorized, false},
		{"empty bearer", http.MethodGet, "/customers", "Bearer ", http.StatusUnauthorized, false},
		{"expired", http.MethodGet, "/customers", "Bearer " + expired, http.StatusUnauthorized, false},
		{"wrong secret", http.MethodGet, "/customers", "Bearer " + foreign, http.StatusUnauthorized, false},
		{"no expiry", http.MethodGet, "/customers", "Bearer " + noExpiry, http.StatusUnauthorized, false},
		{"public root", http.MethodGet, "/", "", http.StatusOK, true},
		{"public health", http.MethodGet, "/health", "", http.StatusOK, true},
		{"public readyz", http.MethodGet, "/readyz", "", http.StatusOK, true},
		{"preflight", http.MethodOptions, "/search", "", http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			subject := ""
			h := auth.Middleware(protectedHandler(&called, &subject))

			var header []string
			if tt.header != "" {
				header = []string{"Authorization", tt.header}
			}
			rr := doRequest(t, h, tt.method, tt.path, "", header...)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantCalled, called)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, rr.Body.String(), `"detail"`)
				assert.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))
			}
			if tt.name == "valid token" {
				assert.Equal(t, "ops", subject)
			}
		})
	}
}

func TestBearerAuth_RejectsOtherAlgorithms(t *testing.T) {
	auth, err := NewBearerAuth(testSecret)
	require.NoError(t, err)

	claims := jwt.RegisteredClaims{Subject: "ops", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = auth.Validate(hs512)
	assert.Error(t, err)
}
