package domain

import (
	"encoding/base64"
	"fmt"
	"net/http"
)

// Credentials stores the authentication pair for an Atlassian backend.
// Atlassian deployments accept HTTP basic authentication with the account
// username (or email) and an API token in place of a password.
type Credentials struct {
	Username string
	APIToken string
}

// CredentialsFromBackend extracts the credentials from a backend configuration.
func CredentialsFromBackend(bc *BackendConfig) *Credentials {
	return &Credentials{
		Username: bc.Username,
		APIToken: bc.APIToken,
	}
}

// Validate checks that both halves of the credential pair are present.
func (c *Credentials) Validate() error {
	if c == nil {
		return fmt.Errorf("credentials cannot be nil")
	}
	if c.Username == "" {
		return fmt.Errorf("username is required for basic authentication")
	}
	if c.APIToken == "" {
		return fmt.Errorf("API token is required for basic authentication")
	}
	return nil
}

// NewAuthenticatedClient returns an HTTP client that applies the credentials
// to every outgoing request. Credentials are fixed at startup; they are never
// accepted from MCP clients at call time.
func NewAuthenticatedClient(creds *Credentials) (*http.Client, error) {
	// Validate credentials first
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	// Create a custom transport that adds authentication headers
	transport := &authenticatedTransport{
		base:        http.DefaultTransport,
		credentials: creds,
	}

	// Return a client with the authenticated transport
	return &http.Client{
		Transport: transport,
	}, nil
}

// authenticatedTransport is an http.RoundTripper that adds authentication headers.
type authenticatedTransport struct {
	base        http.RoundTripper
	credentials *Credentials
}

// RoundTrip implements http.RoundTripper by adding authentication headers to requests.
func (t *authenticatedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	clonedReq := req.Clone(req.Context())

	// Basic authentication: encode username:token in base64
	auth := t.credentials.Username + ":" + t.credentials.APIToken
	encodedAuth := base64.StdEncoding.EncodeToString([]byte(auth))
	clonedReq.Header.Set("Authorization", "Basic "+encodedAuth)

	// Execute the request with the base transport
	return t.base.RoundTrip(clonedReq)
}
