package utils

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
)

// OAuth scopes for Google APIs
const (
	ScopeGmailSend = "https://www.googleapis.com/auth/gmail.send"
)

// requiredScopes returns all scopes required by the application
func requiredScopes() []string {
	return []string{
		ScopeGmailSend,
	}
}

// GetServiceAccountConfig creates a JWT config from a service account key file.
// subject is the mailbox the service account acts as through domain-wide delegation.
func GetServiceAccountConfig(keyFile, subject string) (*jwt.Config, error) {
	data, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account file: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(data, requiredScopes()...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account file: %w", err)
	}

	jwtConfig.Subject = subject
	return jwtConfig, nil
}

// ServiceAccountClient returns an HTTP client authorised as the service account
func ServiceAccountClient(ctx context.Context, keyFile, subject string) (*http.Client, error) {
	jwtConfig, err := GetServiceAccountConfig(keyFile, subject)
	if err != nil {
		return nil, err
	}
	return jwtConfig.Client(ctx), nil
}
