package travelapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"travel-agent/internal/fetch"
)

// ErrVisaRejected is returned when the visa API answers with a non-zero code.
var ErrVisaRejected = errors.New("travelapi: visa api returned an error")

// Visas fetches per-country visa data from the partner API.
type Visas struct {
	base
}

func NewVisas(f fetcher, baseURL string, creds CredentialsFunc) (*Visas, error) {
	b, err := newBase(f, baseURL, DefaultVisaBaseURL, creds)
	if err != nil {
		return nil, err
	}
	return &Visas{base: b}, nil
}

// FetchVisa returns the data member of the visa payload for country.
func (c *Visas) FetchVisa(ctx context.Context, country string) (json.RawMessage, error) {
	country = strings.TrimSpace(country)
	if country == "" {
		return nil, errors.New("travelapi: country is required")
	}
	body, err := c.do(ctx, fetch.Request{
		Name:   "visa_api",
		Method: http.MethodGet,
		URL:    c.baseURL + visaPath + url.PathEscape(country),
	})
	if err != nil {
		return nil, fmt.Errorf("travelapi: visa fetch: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("travelapi: visa api returned invalid JSON")
	}
	payload := gjson.ParseBytes(body)
	if code := payload.Get("code"); code.String() != "0" {
		msg := payload.Get("message").String()
		if msg == "" {
			msg = "code " + code.String()
		}
		return nil, fmt.Errorf("%w: %s", ErrVisaRejected, msg)
	}
	data := payload.Get("data")
	if !data.Exists() || data.Type == gjson.Null {
		return json.RawMessage(`{}`), nil
	}
	return json.RawMessage(data.Raw), nil
}
