package google

import (
	"time"

	"github.com/teemow/adsmcp/internal/logging"
)

// TokenStatus describes the current access token of a credential, without
// exposing it.
type TokenStatus struct {
	Source      Source    `json:"source"`
	ProjectID   string    `json:"project_id,omitempty"`
	Valid       bool      `json:"valid"`
	AccessToken string    `json:"access_token,omitempty"`
	Expiry      time.Time `json:"expiry,omitzero"`
	Error       string    `json:"error,omitempty"`
}

// CheckToken fetches a token from creds and reports its state. It may
// trigger a token refresh.
func CheckToken(creds *Credentials) TokenStatus {
	if creds == nil || creds.TokenSource == nil {
		return TokenStatus{Source: SourceNone, Error: ErrNoCredentials.Error()}
	}

	status := TokenStatus{Source: creds.Source, ProjectID: creds.ProjectID}
	token, err := creds.TokenSource.Token()
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Valid = token.Valid()
	status.AccessToken = logging.SanitizeToken(token.AccessToken)
	status.Expiry = token.Expiry
	return status
}
