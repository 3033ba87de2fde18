package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
)

// LoginRequest is the body posted to the login endpoint.
type LoginRequest struct {
	// Phone is the account identifier, a 12 digit number starting with 998.
	// Example: "998901234567"
	Phone string `json:"phone"`

	// Password is the account secret.
	// Security: never logged, never persisted
	Password string `json:"password"`
}

// LoginResponse is the success body of the login endpoint.
type LoginResponse struct {
	// Access is the short lived bearer token.
	// Usage: Include in Authorization header: "Bearer <access>"
	Access string `json:"access"`

	// Refresh is the long lived token used to mint a new access token.
	// Usage: Posted to the refresh endpoint as {"refresh": "<refresh>"}
	Refresh string `json:"refresh"`

	// Role is the backend role of the user.
	// Example: "TEACHER"
	Role string `json:"role"`

	// Name is the display name of the user.
	Name string `json:"name"`

	// UserID is the backend id of the user. The backend sends it either as a
	// JSON string or a number.
	UserID flexString `json:"user_id"`
}

// RefreshRequest is the body posted to the token refresh endpoint.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse is the success body of the token refresh endpoint.
// Only the access token is consumed; a rotated refresh token is ignored.
type RefreshResponse struct {
	Access string `json:"access"`
}

// errorResponse covers the error bodies the backend produces:
// {"error": "..."} from the login view and {"detail": "..."} from the API.
type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// flexString accepts a JSON string or number and keeps its text form.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// errorMessage extracts the server supplied message from an error body,
// falling back to fallback when the body carries none.
func errorMessage(body io.Reader, fallback string) string {
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil || len(data) == 0 {
		return fallback
	}
	var er errorResponse
	if err := json.Unmarshal(data, &er); err != nil {
		return fallback
	}
	if msg := strings.TrimSpace(er.Error); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(er.Detail); msg != "" {
		return msg
	}
	return fallback
}
