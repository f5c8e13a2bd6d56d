package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"travel-agent/internal/domain"
)

const flightFallback = "Please continue, I'm processing your flight details."

var flightQuestions = Sequence[domain.FlightContext]{
	domain.FlightTripType:      {Prompt: "Is this a one-way trip or a round trip?"},
	domain.FlightAdults:        {Prompt: "How many adults will be traveling?"},
	domain.FlightChildren:      {Prompt: "How many children will be traveling?"},
	domain.FlightChildrenAges:  {Prompt: "What are the ages of the children? (comma-separated)", Skip: func(c *domain.FlightContext) bool { return c.Children == 0 }},
	domain.FlightDepartureDate: {Prompt: "What is your departure date? (YYYY-MM-DD format)"},
	domain.FlightDepartureCity: {Prompt: "Which city are you departing from?"},
	domain.FlightArrivalCity:   {Prompt: "Which city are you traveling to?"},
	domain.FlightReturnDate:    {Prompt: "What is your return date? (YYYY-MM-DD format)", Skip: func(c *domain.FlightContext) bool { return c.TripType == domain.TripOneWay }},
}

// FlightOptions tune behaviour that product has not settled yet.
type FlightOptions struct {
	// KeepContextOnComplete leaves the context at its final step after a
	// search instead of resetting it, so a further turn re-runs the search
	// with a new destination or return date.
	KeepContextOnComplete bool
	// LenientChildAges accepts any non-empty list of ages instead of exactly
	// one age per child.
	LenientChildAges bool
}

// reply is the result of one transition.
type reply struct {
	text     string
	complete bool
}

type flightTransition func(d *FlightDialogue, ctx context.Context, fc *domain.FlightContext, text string) (reply, error)

var flightTransitions = map[domain.FlightStep]flightTransition{
	domain.FlightTripType:      (*FlightDialogue).captureTripType,
	domain.FlightAdults:        (*FlightDialogue).captureAdults,
	domain.FlightChildren:      (*FlightDialogue).captureChildren,
	domain.FlightChildrenAges:  (*FlightDialogue).captureChildrenAges,
	domain.FlightDepartureDate: (*FlightDialogue).captureDepartureDate,
	domain.FlightDepartureCity: (*FlightDialogue).captureDepartureCity,
	domain.FlightArrivalCity:   (*FlightDialogue).captureArrivalCity,
	domain.FlightReturnDate:    (*FlightDialogue).captureReturnDate,
}

// FlightDialogue collects flight search parameters one turn at a time.
type FlightDialogue struct {
	search FlightSearch
	opts   FlightOptions
	logger *slog.Logger
}

// NewFlightDialogue returns a flight dialogue backed by search.
func NewFlightDialogue(search FlightSearch, opts FlightOptions, logger *slog.Logger) (*FlightDialogue, error) {
	if search == nil {
		return nil, errors.New("dialogue: flight search must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FlightDialogue{search: search, opts: opts, logger: logger.With("component", "flight_dialogue")}, nil
}

// Handle consumes one turn. A nil or fresh context treats the message that
// opened the flow as the answer to the first question. Search failures are
// returned as errors and the caller must not persist anything for the turn.
func (d *FlightDialogue) Handle(ctx context.Context, turn domain.Turn, current *domain.FlightContext) (Outcome[domain.FlightContext], error) {
	fc := domain.FlightContext{}
	if current != nil {
		fc = *current
		fc.ChildrenAges = append([]int(nil), current.ChildrenAges...)
	}
	from := fc.Step

	var r reply
	if transition, ok := flightTransitions[fc.Step]; ok {
		var err error
		r, err = transition(d, ctx, &fc, strings.TrimSpace(turn.Question))
		if err != nil {
			return Outcome[domain.FlightContext]{}, err
		}
	}
	if r.text == "" {
		r.text = flightFallback
		if q, ok := flightQuestions.Prompt(int(fc.Step), &fc); ok {
			r.text = q
		}
	}

	d.logger.Info("flight turn", "from", from.String(), "to", fc.Step.String(), "complete", r.complete)

	if r.complete && !d.opts.KeepContextOnComplete {
		return Outcome[domain.FlightContext]{Answer: r.text, Persist: true}, nil
	}
	return Outcome[domain.FlightContext]{Answer: r.text, Context: &fc, Persist: true}, nil
}

// ask re-emits the question of the current step.
func (d *FlightDialogue) ask(fc *domain.FlightContext) reply {
	q, _ := flightQuestions.Prompt(int(fc.Step), fc)
	return reply{text: q}
}

// advance moves to the next slot that applies and asks it.
func (d *FlightDialogue) advance(fc *domain.FlightContext) reply {
	fc.Step = domain.FlightStep(flightQuestions.Next(int(fc.Step), fc))
	return d.ask(fc)
}

func (d *FlightDialogue) captureTripType(_ context.Context, fc *domain.FlightContext, text string) (reply, error) {
	lowered := strings.ToLower(text)
	switch {
	case strings.Contains(lowered, "one-way"), strings.Contains(lowered, "one way"), lowered == "one":
		fc.TripType = domain.TripOneWay
	case strings.Contains(lowered, "two-way"), strings.Contains(lowered, "two way"), strings.Contains(lowered, "round"):
		fc.TripType = domain.TripTwoWay
	default:
		return d.ask(fc), nil
	}
	return d.advance(fc), nil
}

func (d *FlightDialogue) captureAdults(_ context.Context, fc *domain.FlightContext, text string) (reply, error) {
	n, ok := firstNumber(text)
	if !ok {
		return d.ask(fc), nil
	}
	fc.Adults = n
	return d.advance(fc), nil
}

func (d *FlightDialogue) captureChildren(_ context.Context, fc *domain.FlightContext, text string) (reply, error) {
	n, ok := firstNumber(text)
	if !ok {
		return d.ask(fc), nil
	}
	fc.Children = n
	fc.ChildrenAges = nil
	return d.advance(fc), nil
}

func (d *FlightDialogue) captureChildrenAges(_ context.Context, fc *domain.FlightContext, text string) (reply, error) {
	if fc.Children == 0 {
		return reply{}, nil
	}
	ages := allNumbers(text)
	if len(ages) == 0 {
		return d.ask(fc), nil
	}
	if !d.opts.LenientChildAges && len(ages) != fc.Children {
		return reply{text: agesCountPrompt(fc.Children)}, nil
	}
	fc.ChildrenAges = ages
	return d.advance(fc), nil
}

func (d *FlightDialogue) captureDepartureDate(_ context.Context, fc *domain.FlightContext, text string) (reply, error) {
	date, ok := firstDate(text)
	if !ok {
		return d.ask(fc), nil
	}
	fc.DepartureDate = date.Format(dateLayout)
	return d.advance(fc), nil
}

func (d *FlightDialogue) captureDepartureCity(_ context.Context, fc *domain.FlightContext, text string) (reply, error) {
	if text == "" {
		return d.ask(fc), nil
	}
	fc.DepartureCity = text
	return d.advance(fc), nil
}

func (d *FlightDialogue) captureArrivalCity(ctx context.Context, fc *domain.FlightContext, text string) (reply, error) {
	if text == "" {
		return d.ask(fc), nil
	}
	fc.ArrivalCity = text
	if !flightQuestions.Done(int(fc.Step), fc) {
		return d.advance(fc), nil
	}
	return d.runSearch(ctx, fc)
}

func (d *FlightDialogue) captureReturnDate(ctx context.Context, fc *domain.FlightContext, text string) (reply, error) {
	if fc.TripType != domain.TripTwoWay {
		return reply{}, nil
	}
	date, ok := firstDate(text)
	if !ok {
		return d.ask(fc), nil
	}
	fc.ReturnDate = date.Format(dateLayout)
	return d.runSearch(ctx, fc)
}

func (d *FlightDialogue) runSearch(ctx context.Context, fc *domain.FlightContext) (reply, error) {
	child, infants := passengerSplit(fc.ChildrenAges, fc.Children)
	q := domain.FlightQuery{
		TripType:      fc.TripType,
		Adults:        fc.Adults,
		Children:      child,
		Infants:       infants,
		DepartureDate: fc.DepartureDate,
		Origin:        fc.DepartureCity,
		Destination:   fc.ArrivalCity,
	}
	heading := fmt.Sprintf("Perfect! Here's what I found for %s → %s:", fc.DepartureCity, fc.ArrivalCity)
	if fc.TripType == domain.TripTwoWay {
		q.ReturnDate = fc.ReturnDate
		heading = fmt.Sprintf("Perfect! Here's what I found for %s → %s (Round Trip):", fc.DepartureCity, fc.ArrivalCity)
	}

	summary, err := d.search.SearchFlights(ctx, q)
	if err != nil {
		return reply{}, fmt.Errorf("dialogue: flight search: %w", err)
	}
	return reply{text: heading + "\n\n" + summary, complete: true}, nil
}

func agesCountPrompt(children int) string {
	return fmt.Sprintf("Please provide exactly %d age(s) for the children.", children)
}
