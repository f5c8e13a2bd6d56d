package domain

import (
	"encoding/json"
	"time"
)

// TripType is the flight journey kind. The zero value means unset.
type TripType string

const (
	TripOneWay TripType = "one-way"
	TripTwoWay TripType = "two-way"
)

// FlightStep identifies the flight slot currently being asked for.
type FlightStep int

const (
	FlightTripType FlightStep = iota
	FlightAdults
	FlightChildren
	FlightChildrenAges
	FlightDepartureDate
	FlightDepartureCity
	FlightArrivalCity
	FlightReturnDate
)

var flightStepNames = [...]string{
	"trip_type", "adults", "children", "children_ages",
	"departure_date", "departure_city", "arrival_city", "return_date",
}

func (s FlightStep) String() string {
	if s < 0 || int(s) >= len(flightStepNames) {
		return "unknown"
	}
	return flightStepNames[s]
}

// HotelStep identifies the hotel slot currently being asked for.
type HotelStep int

const (
	HotelCheckIn HotelStep = iota
	HotelCheckOut
	HotelCityStep
	HotelRooms
	HotelAdults
	HotelChildren
	HotelChildrenAges
	HotelRating
	HotelNationality
)

var hotelStepNames = [...]string{
	"check_in", "check_out", "city", "rooms", "adults",
	"children", "children_ages", "rating", "nationality",
}

func (s HotelStep) String() string {
	if s < 0 || int(s) >= len(hotelStepNames) {
		return "unknown"
	}
	return hotelStepNames[s]
}

// VisaContext caches the visa payload fetched for one country.
type VisaContext struct {
	Country   string          `json:"country" bson:"country"`
	Data      json.RawMessage `json:"data" bson:"data"`
	FetchedAt time.Time       `json:"fetchedAt" bson:"fetched_at"`
}

// FlightContext carries the flight slots collected so far. Fields after Step
// are unset.
type FlightContext struct {
	Step          FlightStep `json:"questionIndex" bson:"question_index"`
	TripType      TripType   `json:"tripType,omitempty" bson:"trip_type,omitempty"`
	Adults        int        `json:"adults" bson:"adults"`
	Children      int        `json:"children" bson:"children"`
	ChildrenAges  []int      `json:"childrenAges,omitempty" bson:"children_ages,omitempty"`
	DepartureDate string     `json:"departureDate,omitempty" bson:"departure_date,omitempty"`
	DepartureCity string     `json:"departureCity,omitempty" bson:"departure_city,omitempty"`
	ArrivalCity   string     `json:"arrivalCity,omitempty" bson:"arrival_city,omitempty"`
	ReturnDate    string     `json:"returnDate,omitempty" bson:"return_date,omitempty"`
}

// HotelContext carries the hotel slots collected so far.
type HotelContext struct {
	Step             HotelStep `json:"questionIndex" bson:"question_index"`
	CheckIn          string    `json:"checkIn,omitempty" bson:"check_in,omitempty"`
	CheckOut         string    `json:"checkOut,omitempty" bson:"check_out,omitempty"`
	CityName         string    `json:"cityName,omitempty" bson:"city_name,omitempty"`
	CityID           int       `json:"cityId,omitempty" bson:"city_id,omitempty"`
	CountryCode      string    `json:"countryCode,omitempty" bson:"country_code,omitempty"`
	Rooms            int       `json:"rooms" bson:"rooms"`
	Adults           int       `json:"adults" bson:"adults"`
	Children         int       `json:"children" bson:"children"`
	ChildrenAges     []int     `json:"childrenAges,omitempty" bson:"children_ages,omitempty"`
	MinRating        int       `json:"minRating,omitempty" bson:"min_rating,omitempty"`
	MaxRating        int       `json:"maxRating,omitempty" bson:"max_rating,omitempty"`
	GuestNationality string    `json:"guestNationality,omitempty" bson:"guest_nationality,omitempty"`
}

// HotelCity is a resolved hotel destination.
type HotelCity struct {
	Name        string
	CityID      int
	CountryCode string
}

// FlightQuery is the fully collected flight search request.
type FlightQuery struct {
	TripType      TripType
	Adults        int
	Children      int
	Infants       int
	DepartureDate string
	ReturnDate    string
	Origin        string
	Destination   string
}

// RoomGuest describes the occupants of one room.
type RoomGuest struct {
	Adult    int   `json:"Adult"`
	Child    int   `json:"Child"`
	ChildAge []int `json:"ChildAge"`
}

// HotelQuery is the fully collected hotel search request.
type HotelQuery struct {
	CheckIn          string
	CheckOut         string
	CityName         string
	CityID           int
	CountryCode      string
	Rooms            int
	RoomGuests       []RoomGuest
	MinRating        int
	MaxRating        int
	GuestNationality string
}
