package dialogue

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"travel-agent/internal/domain"
)

// Intent names the dialogue that owns a turn.
type Intent string

const (
	IntentVisa    Intent = "visa"
	IntentFlight  Intent = "flight"
	IntentHotel   Intent = "hotel"
	IntentGeneral Intent = "general"
	IntentCancel  Intent = "cancel"
)

var (
	defaultFlightKeywords = []string{
		"flight", "book flight", "flight booking", "one way flight", "round trip flight",
		"return flight", "airfare", "departure flight", "arrival flight",
	}
	defaultHotelKeywords = []string{"hotel", "hotels", "accommodation", "stay", "room booking"}
	defaultCancelPhrases = []string{"cancel", "stop", "start over", "reset", "nevermind", "never mind"}
)

const classifyPrompt = "Classify the user intent into one of: visa, general. Respond with only the label.\n\nUser Question: "

// Decision is the routing result for one turn. Flight and Hotel carry the
// context the chosen dialogue continues from; Started is set when that
// context was created by this decision.
type Decision struct {
	Intent  Intent
	Country string
	Flight  *domain.FlightContext
	Hotel   *domain.HotelContext
	Started bool
}

// Router picks the dialogue for each turn.
type Router struct {
	countries CountryExtractor
	llm       TextCompletion
	flightKW  []string
	hotelKW   []string
	cancelKW  []string
	logger    *slog.Logger
}

// NewRouter returns a router with the default keyword and cancel lists.
func NewRouter(countries CountryExtractor, llm TextCompletion, logger *slog.Logger) (*Router, error) {
	if countries == nil {
		return nil, errors.New("dialogue: country extractor must not be nil")
	}
	if llm == nil {
		return nil, errors.New("dialogue: text completion must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		countries: countries,
		llm:       llm,
		flightKW:  defaultFlightKeywords,
		hotelKW:   defaultHotelKeywords,
		cancelKW:  defaultCancelPhrases,
		logger:    logger.With("component", "router"),
	}, nil
}

// Route decides which dialogue owns the turn. An active flow always keeps the
// turn unless the user cancels it. Route never fails: a classifier error
// yields IntentGeneral.
func (r *Router) Route(ctx context.Context, turn domain.Turn, flight *domain.FlightContext, hotel *domain.HotelContext) Decision {
	d := r.route(ctx, turn, flight, hotel)
	r.logger.Info("routed turn", "intent", string(d.Intent), "country", d.Country, "started", d.Started)
	return d
}

func (r *Router) route(ctx context.Context, turn domain.Turn, flight *domain.FlightContext, hotel *domain.HotelContext) Decision {
	text := strings.TrimSpace(turn.Question)
	lowered := strings.ToLower(text)

	if (flight != nil || hotel != nil) && r.isCancel(lowered) {
		return Decision{Intent: IntentCancel}
	}
	if flight != nil {
		return Decision{Intent: IntentFlight, Flight: flight}
	}
	if hotel != nil {
		return Decision{Intent: IntentHotel, Hotel: hotel}
	}
	if country, ok := r.countries.Extract(text); ok {
		return Decision{Intent: IntentVisa, Country: country}
	}
	if containsAny(lowered, r.flightKW...) {
		return Decision{Intent: IntentFlight, Flight: &domain.FlightContext{}, Started: true}
	}
	if containsAny(lowered, r.hotelKW...) {
		return Decision{Intent: IntentHotel, Hotel: &domain.HotelContext{}, Started: true}
	}

	label, err := r.llm.Generate(ctx, classifyPrompt+text+"\n")
	if err != nil {
		r.logger.Warn("intent classification failed", "err", err)
		return Decision{Intent: IntentGeneral}
	}
	if strings.Contains(strings.ToLower(label), "visa") {
		return Decision{Intent: IntentVisa}
	}
	return Decision{Intent: IntentGeneral}
}

// isCancel matches a cancel phrase as the whole message or its leading
// words, so "stop" cancels but "a stopover in Doha" does not.
func (r *Router) isCancel(lowered string) bool {
	lowered = strings.Trim(lowered, " .!")
	for _, p := range r.cancelKW {
		if lowered == p || strings.HasPrefix(lowered, p+" ") || strings.HasPrefix(lowered, p+",") {
			return true
		}
	}
	return false
}
