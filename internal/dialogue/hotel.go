package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"travel-agent/internal/domain"
)

const (
	hotelFallback    = "Please continue, I'm processing your hotel request."
	citySuggestLimit = 5
)

var hotelQuestions = Sequence[domain.HotelContext]{
	domain.HotelCheckIn:      {Prompt: "What is your check-in date? (YYYY-MM-DD format)"},
	domain.HotelCheckOut:     {Prompt: "What is your check-out date? (YYYY-MM-DD format)"},
	domain.HotelCityStep:     {Prompt: "Which city are you looking for a hotel in?"},
	domain.HotelRooms:        {Prompt: "How many rooms do you need?"},
	domain.HotelAdults:       {Prompt: "How many adults will be staying?"},
	domain.HotelChildren:     {Prompt: "How many children will be staying?"},
	domain.HotelChildrenAges: {Prompt: "What are the ages of the children? (comma-separated)", Skip: func(c *domain.HotelContext) bool { return c.Children == 0 }},
	domain.HotelRating:       {Prompt: "What is the highest star rating you'd like? (1-5)"},
	domain.HotelNationality:  {Prompt: "What is the guests' nationality? (2-letter country code, e.g. IN)"},
}

type hotelTransition func(d *HotelDialogue, ctx context.Context, hc *domain.HotelContext, text string) (reply, error)

var hotelTransitions = map[domain.HotelStep]hotelTransition{
	domain.HotelCheckIn:      (*HotelDialogue).captureCheckIn,
	domain.HotelCheckOut:     (*HotelDialogue).captureCheckOut,
	domain.HotelCityStep:     (*HotelDialogue).captureCity,
	domain.HotelRooms:        (*HotelDialogue).captureRooms,
	domain.HotelAdults:       (*HotelDialogue).captureAdults,
	domain.HotelChildren:     (*HotelDialogue).captureChildren,
	domain.HotelChildrenAges: (*HotelDialogue).captureChildrenAges,
	domain.HotelRating:       (*HotelDialogue).captureRating,
	domain.HotelNationality:  (*HotelDialogue).captureNationality,
}

// HotelDialogue collects hotel search parameters one turn at a time. A
// successful search always resets the context.
type HotelDialogue struct {
	cities CityResolver
	search HotelSearch
	logger *slog.Logger
}

// NewHotelDialogue returns a hotel dialogue resolving cities through cities.
func NewHotelDialogue(cities CityResolver, search HotelSearch, logger *slog.Logger) (*HotelDialogue, error) {
	if cities == nil {
		return nil, errors.New("dialogue: city resolver must not be nil")
	}
	if search == nil {
		return nil, errors.New("dialogue: hotel search must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HotelDialogue{cities: cities, search: search, logger: logger.With("component", "hotel_dialogue")}, nil
}

// Handle consumes one turn, starting from check-in when current is nil. A
// completed search resets the context.
func (d *HotelDialogue) Handle(ctx context.Context, turn domain.Turn, current *domain.HotelContext) (Outcome[domain.HotelContext], error) {
	hc := domain.HotelContext{}
	if current != nil {
		hc = *current
		hc.ChildrenAges = append([]int(nil), current.ChildrenAges...)
	}
	from := hc.Step

	var r reply
	if transition, ok := hotelTransitions[hc.Step]; ok {
		var err error
		r, err = transition(d, ctx, &hc, strings.TrimSpace(turn.Question))
		if err != nil {
			return Outcome[domain.HotelContext]{}, err
		}
	}
	if r.text == "" {
		r.text = hotelFallback
		if q, ok := hotelQuestions.Prompt(int(hc.Step), &hc); ok {
			r.text = q
		}
	}

	d.logger.Info("hotel turn", "from", from.String(), "to", hc.Step.String(), "complete", r.complete)

	if r.complete {
		return Outcome[domain.HotelContext]{Answer: r.text, Persist: true}, nil
	}
	return Outcome[domain.HotelContext]{Answer: r.text, Context: &hc, Persist: true}, nil
}

func (d *HotelDialogue) ask(hc *domain.HotelContext) reply {
	q, _ := hotelQuestions.Prompt(int(hc.Step), hc)
	return reply{text: q}
}

func (d *HotelDialogue) advance(hc *domain.HotelContext) reply {
	hc.Step = domain.HotelStep(hotelQuestions.Next(int(hc.Step), hc))
	return d.ask(hc)
}

func (d *HotelDialogue) captureCheckIn(_ context.Context, hc *domain.HotelContext, text string) (reply, error) {
	date, ok := firstDate(text)
	if !ok {
		return d.ask(hc), nil
	}
	hc.CheckIn = date.Format(dateLayout)
	return d.advance(hc), nil
}

func (d *HotelDialogue) captureCheckOut(_ context.Context, hc *domain.HotelContext, text string) (reply, error) {
	date, ok := firstDate(text)
	if !ok || date.Format(dateLayout) <= hc.CheckIn {
		return d.ask(hc), nil
	}
	hc.CheckOut = date.Format(dateLayout)
	return d.advance(hc), nil
}

func (d *HotelDialogue) captureCity(_ context.Context, hc *domain.HotelContext, text string) (reply, error) {
	city, ok := d.cities.Resolve(text)
	if !ok {
		if suggestions := d.cities.Suggest(text, citySuggestLimit); len(suggestions) > 0 {
			return reply{text: fmt.Sprintf("I couldn't find that city for hotels. Did you mean: %s?", strings.Join(suggestions, ", "))}, nil
		}
		return reply{text: "Please enter a valid city name."}, nil
	}
	hc.CityName = city.Name
	hc.CityID = city.CityID
	hc.CountryCode = city.CountryCode
	return d.advance(hc), nil
}

func (d *HotelDialogue) captureRooms(_ context.Context, hc *domain.HotelContext, text string) (reply, error) {
	n, ok := firstNumber(text)
	if !ok || n < 1 {
		return d.ask(hc), nil
	}
	hc.Rooms = n
	return d.advance(hc), nil
}

func (d *HotelDialogue) captureAdults(_ context.Context, hc *domain.HotelContext, text string) (reply, error) {
	n, ok := firstNumber(text)
	if !ok {
		return d.ask(hc), nil
	}
	hc.Adults = n
	return d.advance(hc), nil
}

func (d *HotelDialogue) captureChildren(_ context.Context, hc *domain.HotelContext, text string) (reply, error) {
	n, ok := firstNumber(text)
	if !ok {
		return d.ask(hc), nil
	}
	hc.Children = n
	hc.ChildrenAges = nil
	return d.advance(hc), nil
}

func (d *HotelDialogue) captureChildrenAges(_ context.Context, hc *domain.HotelContext, text string) (reply, error) {
	if hc.Children == 0 {
		return reply{}, nil
	}
	ages := allNumbers(text)
	if len(ages) != hc.Children {
		return reply{text: agesCountPrompt(hc.Children)}, nil
	}
	hc.ChildrenAges = ages
	return d.advance(hc), nil
}

func (d *HotelDialogue) captureRating(_ context.Context, hc *domain.HotelContext, text string) (reply, error) {
	n, ok := firstNumber(text)
	if !ok || n < 1 || n > 5 {
		return d.ask(hc), nil
	}
	hc.MinRating = 1
	hc.MaxRating = n
	return d.advance(hc), nil
}

func (d *HotelDialogue) captureNationality(ctx context.Context, hc *domain.HotelContext, text string) (reply, error) {
	if len(text) != 2 || !isAlpha(text) {
		return d.ask(hc), nil
	}
	hc.GuestNationality = strings.ToUpper(text)

	q := domain.HotelQuery{
		CheckIn:     hc.CheckIn,
		CheckOut:    hc.CheckOut,
		CityName:    hc.CityName,
		CityID:      hc.CityID,
		CountryCode: hc.CountryCode,
		Rooms:       hc.Rooms,
		RoomGuests: []domain.RoomGuest{{
			Adult:    hc.Adults,
			Child:    hc.Children,
			ChildAge: append([]int{}, hc.ChildrenAges...),
		}},
		MinRating:        hc.MinRating,
		MaxRating:        hc.MaxRating,
		GuestNationality: hc.GuestNationality,
	}
	summary, err := d.search.SearchHotels(ctx, q)
	if err != nil {
		return reply{}, fmt.Errorf("dialogue: hotel search: %w", err)
	}
	return reply{
		text:     fmt.Sprintf("Here are the best hotel options in %s:\n\n%s", hc.CityName, summary),
		complete: true,
	}, nil
}
