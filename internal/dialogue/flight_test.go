package dialogue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"travel-agent/internal/domain"
)

func newTestFlightDialogue(t *testing.T, search *mockFlightSearch, opts FlightOptions) *FlightDialogue {
	t.Helper()
	d, err := NewFlightDialogue(search, opts, nil)
	require.NoError(t, err)
	return d
}

// play feeds the turns in order and returns the last outcome.
func playFlight(t *testing.T, d *FlightDialogue, fc *domain.FlightContext, turns ...string) Outcome[domain.FlightContext] {
	t.Helper()
	var out Outcome[domain.FlightContext]
	for _, text := range turns {
		var err error
		out, err = d.Handle(context.Background(), turn(text), fc)
		require.NoError(t, err)
		fc = out.Context
	}
	return out
}

func TestNewFlightDialogueRequiresSearch(t *testing.T) {
	_, err := NewFlightDialogue(nil, FlightOptions{}, nil)
	require.Error(t, err)
}

func TestFlightOpeningTurn(t *testing.T) {
	d := newTestFlightDialogue(t, &mockFlightSearch{}, FlightOptions{})

	out, err := d.Handle(context.Background(), turn("I want to book a flight"), nil)
	require.NoError(t, err)
	require.Equal(t, "Is this a one-way trip or a round trip?", out.Answer)
	require.True(t, out.Persist)
	require.Equal(t, domain.FlightTripType, out.Context.Step)

	out, err = d.Handle(context.Background(), turn("I need a one-way flight please"), &domain.FlightContext{})
	require.NoError(t, err)
	require.Equal(t, "How many adults will be traveling?", out.Answer)
	require.Equal(t, domain.FlightAdults, out.Context.Step)
	require.Equal(t, domain.TripOneWay, out.Context.TripType)
}

func TestFlightOneWaySearchesWithoutReturnDate(t *testing.T) {
	search := &mockFlightSearch{result: "1. Emirates"}
	d := newTestFlightDialogue(t, search, FlightOptions{})

	out := playFlight(t, d, &domain.FlightContext{},
		"one-way", "2", "0", "2025-06-01", "Delhi", "Dubai")

	require.Len(t, search.queries, 1)
	q := search.queries[0]
	require.Equal(t, domain.TripOneWay, q.TripType)
	require.Equal(t, 2, q.Adults)
	require.Zero(t, q.Children)
	require.Zero(t, q.Infants)
	require.Equal(t, "2025-06-01", q.DepartureDate)
	require.Empty(t, q.ReturnDate)
	require.Equal(t, "Delhi", q.Origin)
	require.Equal(t, "Dubai", q.Destination)

	require.Equal(t, "Perfect! Here's what I found for Delhi → Dubai:\n\n1. Emirates", out.Answer)
	require.NotContains(t, out.Answer, "return date")
	require.Nil(t, out.Context)
	require.True(t, out.Persist)
}

func TestFlightRoundTripSplitsInfants(t *testing.T) {
	search := &mockFlightSearch{result: "options"}
	d := newTestFlightDialogue(t, search, FlightOptions{})

	out := playFlight(t, d, &domain.FlightContext{},
		"round trip please", "1", "1", "1", "2025-06-01", "Delhi", "Dubai")
	require.Empty(t, search.queries)
	require.Equal(t, "What is your return date? (YYYY-MM-DD format)", out.Answer)
	require.Equal(t, domain.FlightReturnDate, out.Context.Step)

	out = playFlight(t, d, out.Context, "2025-06-10")
	require.Len(t, search.queries, 1)
	q := search.queries[0]
	require.Equal(t, domain.TripTwoWay, q.TripType)
	require.Equal(t, 1, q.Infants)
	require.Zero(t, q.Children)
	require.Equal(t, "2025-06-10", q.ReturnDate)
	require.Contains(t, out.Answer, "(Round Trip)")
}

func TestFlightReturnDateIsTakenAsGiven(t *testing.T) {
	search := &mockFlightSearch{result: "options"}
	d := newTestFlightDialogue(t, search, FlightOptions{})
	start := &domain.FlightContext{
		Step: domain.FlightReturnDate, TripType: domain.TripTwoWay, Adults: 1,
		DepartureDate: "2025-06-10", DepartureCity: "Delhi", ArrivalCity: "Dubai",
	}

	playFlight(t, d, start, "2025-06-01")
	require.Len(t, search.queries, 1)
	require.Equal(t, "2025-06-01", search.queries[0].ReturnDate)
}

func TestFlightInvalidInputRepeatsQuestion(t *testing.T) {
	d := newTestFlightDialogue(t, &mockFlightSearch{}, FlightOptions{})

	tests := []struct {
		name  string
		start domain.FlightContext
		input string
		want  string
	}{
		{"trip type", domain.FlightContext{}, "maybe", "Is this a one-way trip or a round trip?"},
		{"adults", domain.FlightContext{Step: domain.FlightAdults}, "two", "How many adults will be traveling?"},
		{"children", domain.FlightContext{Step: domain.FlightChildren}, "none", "How many children will be traveling?"},
		{"ages", domain.FlightContext{Step: domain.FlightChildrenAges, Children: 2}, "young", "What are the ages of the children? (comma-separated)"},
		{"departure date", domain.FlightContext{Step: domain.FlightDepartureDate}, "next friday", "What is your departure date? (YYYY-MM-DD format)"},
		{"return date", domain.FlightContext{Step: domain.FlightReturnDate, TripType: domain.TripTwoWay, DepartureDate: "2025-06-10"}, "soon", "What is your return date? (YYYY-MM-DD format)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := tt.start
			for i := 0; i < 3; i++ {
				out, err := d.Handle(context.Background(), turn(tt.input), &fc)
				require.NoError(t, err)
				require.Equal(t, tt.want, out.Answer)
				require.Equal(t, tt.start.Step, out.Context.Step)
				fc = *out.Context
			}
		})
	}
}

func TestFlightZeroChildrenSkipsAges(t *testing.T) {
	d := newTestFlightDialogue(t, &mockFlightSearch{}, FlightOptions{})
	out := playFlight(t, d, &domain.FlightContext{Step: domain.FlightChildren}, "0")
	require.Equal(t, domain.FlightDepartureDate, out.Context.Step)
	require.Empty(t, out.Context.ChildrenAges)
}

func TestFlightChildAgesCount(t *testing.T) {
	start := domain.FlightContext{Step: domain.FlightChildrenAges, Children: 2}

	strict := newTestFlightDialogue(t, &mockFlightSearch{}, FlightOptions{})
	out := playFlight(t, strict, &start, "5")
	require.Equal(t, "Please provide exactly 2 age(s) for the children.", out.Answer)
	require.Equal(t, domain.FlightChildrenAges, out.Context.Step)

	lenient := newTestFlightDialogue(t, &mockFlightSearch{}, FlightOptions{LenientChildAges: true})
	out = playFlight(t, lenient, &start, "5")
	require.Equal(t, domain.FlightDepartureDate, out.Context.Step)
	require.Equal(t, []int{5}, out.Context.ChildrenAges)
}

func TestFlightKeepContextOnComplete(t *testing.T) {
	search := &mockFlightSearch{result: "ok"}
	d := newTestFlightDialogue(t, search, FlightOptions{KeepContextOnComplete: true})

	out := playFlight(t, d, &domain.FlightContext{},
		"one way", "1", "0", "2025-06-01", "Delhi", "Dubai")
	require.NotNil(t, out.Context)
	require.Equal(t, domain.FlightArrivalCity, out.Context.Step)

	out = playFlight(t, d, out.Context, "Doha")
	require.Len(t, search.queries, 2)
	require.Equal(t, "Doha", search.queries[1].Destination)
	require.Contains(t, out.Answer, "Delhi → Doha")
}

func TestFlightSearchFailurePropagates(t *testing.T) {
	boom := errors.New("upstream down")
	d := newTestFlightDialogue(t, &mockFlightSearch{err: boom}, FlightOptions{})

	fc := &domain.FlightContext{
		Step: domain.FlightArrivalCity, TripType: domain.TripOneWay,
		Adults: 1, DepartureDate: "2025-06-01", DepartureCity: "Delhi",
	}
	out, err := d.Handle(context.Background(), turn("Dubai"), fc)
	require.ErrorIs(t, err, boom)
	require.Empty(t, out.Answer)
	require.False(t, out.Persist)
	require.Empty(t, fc.ArrivalCity)
}

func TestFlightUnknownStepFallsBack(t *testing.T) {
	d := newTestFlightDialogue(t, &mockFlightSearch{}, FlightOptions{})
	out := playFlight(t, d, &domain.FlightContext{Step: domain.FlightStep(42)}, "hello")
	require.Equal(t, flightFallback, out.Answer)
}
