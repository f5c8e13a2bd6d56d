// Package travelapi calls the partner flight, hotel, and visa search APIs and
// renders their results as chat answers.
package travelapi

import (
	"context"
	"errors"
	"strings"

	"travel-agent/internal/fetch"
)

const (
	DefaultTravelBaseURL = "https://api.bdsd.technology"
	DefaultVisaBaseURL   = "https://devapi.visa2fly.com"

	flightSearchPath = "/api/airservice/rest/search"
	hotelSearchPath  = "/api/hotelservice/rest/search"
	visaPath         = "/api/b2b/partner/visa/"
)

// fetcher is satisfied by *fetch.Fetcher.
type fetcher interface {
	Fetch(ctx context.Context, req fetch.Request, creds fetch.Credentials) ([]byte, error)
}

func newBase(f fetcher, baseURL, fallback string, creds CredentialsFunc) (base, error) {
	if f == nil {
		return base{}, errors.New("travelapi: fetcher must not be nil")
	}
	if creds == nil {
		return base{}, errors.New("travelapi: credentials must not be nil")
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = fallback
	}
	return base{fetcher: f, baseURL: baseURL, creds: creds}, nil
}

type base struct {
	fetcher fetcher
	baseURL string
	creds   CredentialsFunc
}

func (b base) do(ctx context.Context, req fetch.Request) ([]byte, error) {
	creds, err := b.creds(ctx)
	if err != nil {
		return nil, err
	}
	return b.fetcher.Fetch(ctx, req, creds)
}
