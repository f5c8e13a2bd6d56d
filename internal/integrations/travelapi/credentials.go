package travelapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"travel-agent/internal/fetch"
	"travel-agent/internal/integrations/paramstore"
)

// CredentialsFunc supplies the credentials for one outbound call.
type CredentialsFunc func(ctx context.Context) (fetch.Credentials, error)

// Secrets loads partner credentials from the parameter store:
// <prefix>/travel-api holds {"username","password"} for flights and hotels,
// <prefix>/visa-api-token holds {"token"} for visas.
type Secrets struct {
	getter paramstore.Getter
	prefix string
}

func NewSecrets(getter paramstore.Getter, prefix string) (*Secrets, error) {
	if getter == nil {
		return nil, errors.New("travelapi: paramstore getter must not be nil")
	}
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return nil, errors.New("travelapi: parameter prefix must not be empty")
	}
	return &Secrets{getter: getter, prefix: prefix}, nil
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPayload struct {
	Token string `json:"token"`
}

// Login returns the username/password pair of the flight and hotel APIs.
func (s *Secrets) Login(ctx context.Context) (fetch.Credentials, error) {
	var p loginPayload
	if err := s.load(ctx, "travel-api", &p); err != nil {
		return nil, err
	}
	creds := fetch.UserPassword{Username: p.Username, Password: p.Password}
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return creds, nil
}

// VisaToken returns the token of the visa partner API.
func (s *Secrets) VisaToken(ctx context.Context) (fetch.Credentials, error) {
	var p tokenPayload
	if err := s.load(ctx, "visa-api-token", &p); err != nil {
		return nil, err
	}
	tok := fetch.Token{Value: p.Token}
	if err := tok.Validate(); err != nil {
		return nil, err
	}
	return tok, nil
}

// load decodes one JSON secret. An unset or malformed secret is
// fetch.ErrMissingCredentials; store failures are returned as they are so
// callers treat them as upstream errors.
func (s *Secrets) load(ctx context.Context, key string, out any) error {
	name := s.prefix + "/" + key
	raw, err := s.getter.GetParameter(ctx, name)
	if errors.Is(err, paramstore.ErrNotFound) {
		return fmt.Errorf("%w: %v", fetch.ErrMissingCredentials, err)
	}
	if err != nil {
		return fmt.Errorf("travelapi: read %s: %w", name, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", fetch.ErrMissingCredentials, name, err)
	}
	return nil
}
