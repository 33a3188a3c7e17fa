package transport

import (
	"net/http"

	"github.com/BaSui01/recallbricks/types"
)

// Credential header names.
const (
	HeaderAPIKey       = "X-API-Key"
	HeaderServiceToken = "X-Service-Token"
)

// Credentials holds exactly one of an API key or a service token. The zero
// value is invalid; use NewCredentials.
type Credentials struct {
	apiKey       string
	serviceToken string
}

// NewCredentials requires exactly one non-empty credential.
func NewCredentials(apiKey, serviceToken string) (Credentials, error) {
	switch {
	case apiKey == "" && serviceToken == "":
		return Credentials{}, types.NewError(types.KindValidation, "Either api_key or service_token is required").
			WithCode(types.ErrCodeInvalidCredentials).
			WithField("api_key")
	case apiKey != "" && serviceToken != "":
		return Credentials{}, types.NewError(types.KindValidation, "Provide either api_key or service_token, not both").
			WithCode(types.ErrCodeInvalidCredentials).
			WithField("service_token")
	}
	return Credentials{apiKey: apiKey, serviceToken: serviceToken}, nil
}

// IsServiceToken reports whether service-token auth is in use, which makes
// user_id mandatory on user-scoped operations.
func (c Credentials) IsServiceToken() bool {
	return c.serviceToken != ""
}

func (c Credentials) apply(h http.Header) {
	if c.serviceToken != "" {
		h.Set(HeaderServiceToken, c.serviceToken)
		return
	}
	h.Set(HeaderAPIKey, c.apiKey)
}
