package travelapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"travel-agent/internal/domain"
	"travel-agent/internal/fetch"
)

const (
	flightUserIP     = "122.161.64.143"
	journeyOneWay    = 1
	journeyRoundTrip = 2
	cabinEconomy     = 1
)

// AirportResolver maps a typed city to an IATA code.
type AirportResolver interface {
	Resolve(text string) (string, bool)
}

type airSegment struct {
	Origin        string `json:"Origin"`
	Destination   string `json:"Destination"`
	PreferredTime string `json:"PreferredTime"`
}

type flightSearchRequest struct {
	UserIP            string       `json:"UserIp"`
	Adult             int          `json:"Adult"`
	Child             int          `json:"Child"`
	Infant            int          `json:"Infant"`
	DirectFlight      bool         `json:"DirectFlight"`
	JourneyType       int          `json:"JourneyType"`
	PreferredCarriers []string     `json:"PreferredCarriers"`
	CabinClass        int          `json:"CabinClass"`
	SeriesFare        *bool        `json:"SeriesFare"`
	AirSegments       []airSegment `json:"AirSegments"`
}

// Flights searches the partner air API.
type Flights struct {
	base
	airports AirportResolver
	logger   *slog.Logger
}

func NewFlights(f fetcher, baseURL string, airports AirportResolver, creds CredentialsFunc, logger *slog.Logger) (*Flights, error) {
	b, err := newBase(f, baseURL, DefaultTravelBaseURL, creds)
	if err != nil {
		return nil, err
	}
	if airports == nil {
		return nil, errors.New("travelapi: airport resolver must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Flights{base: b, airports: airports, logger: logger.With("component", "flight_api")}, nil
}

// iata returns the code for a typed city, or the upper-cased input when the
// city is unknown.
func (c *Flights) iata(city string) string {
	if code, ok := c.airports.Resolve(city); ok {
		return code
	}
	return strings.ToUpper(strings.TrimSpace(city))
}

func (c *Flights) request(q domain.FlightQuery) flightSearchRequest {
	origin, destination := c.iata(q.Origin), c.iata(q.Destination)
	c.logger.Info("city normalization", "origin", q.Origin, "origin_iata", origin, "destination", q.Destination, "destination_iata", destination)

	req := flightSearchRequest{
		UserIP:            flightUserIP,
		Adult:             q.Adults,
		Child:             q.Children,
		Infant:            q.Infants,
		JourneyType:       journeyOneWay,
		PreferredCarriers: []string{},
		CabinClass:        cabinEconomy,
		AirSegments: []airSegment{{
			Origin:        origin,
			Destination:   destination,
			PreferredTime: q.DepartureDate + "T00:00:00",
		}},
	}
	if q.TripType == domain.TripTwoWay && q.ReturnDate != "" {
		req.JourneyType = journeyRoundTrip
		req.AirSegments = append(req.AirSegments, airSegment{
			Origin:        destination,
			Destination:   origin,
			PreferredTime: q.ReturnDate + "T00:00:00",
		})
	}
	return req
}

// SearchFlights runs the search and returns the cheapest options as text.
func (c *Flights) SearchFlights(ctx context.Context, q domain.FlightQuery) (string, error) {
	body, err := c.do(ctx, fetch.Request{
		Name:   "flight_api",
		Method: http.MethodPost,
		URL:    c.baseURL + flightSearchPath,
		Body:   c.request(q),
	})
	if err != nil {
		return "", fmt.Errorf("travelapi: flight search: %w", err)
	}
	return FormatFlights(body), nil
}
