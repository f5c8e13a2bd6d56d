// Package dialogue routes conversation turns to a domain and runs the
// slot-filling machines that collect flight and hotel search parameters and
// answer visa questions.
//
// Every exported machine is a pure function of (turn, context): it never
// stores state between calls and returns the updated context by value for the
// caller to persist.
package dialogue

import (
	"context"
	"encoding/json"

	"travel-agent/internal/domain"
)

// TextCompletion generates text for a prompt.
type TextCompletion interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// CountryExtractor finds a visa destination mentioned in free text.
type CountryExtractor interface {
	Extract(text string) (string, bool)
}

// CityResolver resolves hotel destinations.
type CityResolver interface {
	Resolve(name string) (domain.HotelCity, bool)
	Suggest(partial string, limit int) []string
}

// FlightSearch runs a flight search and returns a user-facing summary.
type FlightSearch interface {
	SearchFlights(ctx context.Context, q domain.FlightQuery) (string, error)
}

// HotelSearch runs a hotel search and returns a user-facing summary.
type HotelSearch interface {
	SearchHotels(ctx context.Context, q domain.HotelQuery) (string, error)
}

// VisaSource fetches the visa payload for a country.
type VisaSource interface {
	FetchVisa(ctx context.Context, country string) (json.RawMessage, error)
}

// Outcome is what a machine hands back after consuming one turn. A nil
// Context means the context must be stored as absent. Persist reports whether
// the caller needs to write Context back at all.
type Outcome[C any] struct {
	Answer  string
	Context *C
	Persist bool
}
