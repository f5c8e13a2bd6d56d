package travelapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"travel-agent/internal/domain"
	"travel-agent/internal/fetch"
)

const hotelUserIP = "117.99.10.7"

type hotelSearchRequest struct {
	CheckInDate       string             `json:"CheckInDate"`
	CheckOutDate      string             `json:"CheckOutDate"`
	NoOfNights        int                `json:"NoOfNights"`
	CountryCode       string             `json:"CountryCode"`
	DestinationCityID int                `json:"DestinationCityId"`
	ResultCount       *int               `json:"ResultCount"`
	GuestNationality  string             `json:"GuestNationality"`
	NoOfRooms         int                `json:"NoOfRooms"`
	RoomGuests        []domain.RoomGuest `json:"RoomGuests"`
	MinRating         int                `json:"MinRating"`
	MaxRating         int                `json:"MaxRating"`
	UserIP            string             `json:"UserIp"`
}

// Hotels searches the partner hotel API.
type Hotels struct {
	base
	logger *slog.Logger
}

func NewHotels(f fetcher, baseURL string, creds CredentialsFunc, logger *slog.Logger) (*Hotels, error) {
	b, err := newBase(f, baseURL, DefaultTravelBaseURL, creds)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hotels{base: b, logger: logger.With("component", "hotel_api")}, nil
}

func hotelRequest(q domain.HotelQuery) (hotelSearchRequest, error) {
	in, err := time.Parse(time.DateOnly, q.CheckIn)
	if err != nil {
		return hotelSearchRequest{}, fmt.Errorf("travelapi: invalid check-in date %q: %w", q.CheckIn, err)
	}
	out, err := time.Parse(time.DateOnly, q.CheckOut)
	if err != nil {
		return hotelSearchRequest{}, fmt.Errorf("travelapi: invalid check-out date %q: %w", q.CheckOut, err)
	}
	guests := make([]domain.RoomGuest, len(q.RoomGuests))
	for i, g := range q.RoomGuests {
		guests[i] = g
		if g.ChildAge == nil {
			guests[i].ChildAge = []int{}
		}
	}
	return hotelSearchRequest{
		CheckInDate:       q.CheckIn,
		CheckOutDate:      q.CheckOut,
		NoOfNights:        int(out.Sub(in).Hours() / 24),
		CountryCode:       q.CountryCode,
		DestinationCityID: q.CityID,
		GuestNationality:  q.GuestNationality,
		NoOfRooms:         q.Rooms,
		RoomGuests:        guests,
		MinRating:         q.MinRating,
		MaxRating:         q.MaxRating,
		UserIP:            hotelUserIP,
	}, nil
}

// SearchHotels runs the search and returns the cheapest options as text.
func (c *Hotels) SearchHotels(ctx context.Context, q domain.HotelQuery) (string, error) {
	req, err := hotelRequest(q)
	if err != nil {
		return "", err
	}
	c.logger.Info("hotel search", "city_id", req.DestinationCityID, "nights", req.NoOfNights, "rooms", req.NoOfRooms)
	body, err := c.do(ctx, fetch.Request{
		Name:   "hotel_api",
		Method: http.MethodPost,
		URL:    c.baseURL + hotelSearchPath,
		Body:   req,
	})
	if err != nil {
		return "", fmt.Errorf("travelapi: hotel search: %w", err)
	}
	return FormatHotels(body), nil
}
