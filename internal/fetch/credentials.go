package fetch

import (
	"net/http"
	"strings"
)

// Credentials authenticate an outbound request. Validate is checked before
// any network attempt.
type Credentials interface {
	Validate() error
	Apply(h http.Header)
}

// UserPassword sends the Username and Password headers used by the travel
// search APIs.
type UserPassword struct {
	Username string
	Password string
}

func (c UserPassword) Validate() error {
	if strings.TrimSpace(c.Username) == "" || strings.TrimSpace(c.Password) == "" {
		return ErrMissingCredentials
	}
	return nil
}

func (c UserPassword) Apply(h http.Header) {
	h.Set("Username", c.Username)
	h.Set("Password", c.Password)
}

// Token sends a single token header.
type Token struct {
	Header string
	Value  string
}

func (c Token) Validate() error {
	if strings.TrimSpace(c.Value) == "" {
		return ErrMissingCredentials
	}
	return nil
}

func (c Token) Apply(h http.Header) {
	name := c.Header
	if name == "" {
		name = "token"
	}
	h.Set(name, c.Value)
}
