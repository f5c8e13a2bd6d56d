package gazetteer

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"travel-agent/internal/domain"
)

//go:embed data/hotel_cities.csv
var hotelCitiesCSV []byte

// HotelCities resolves hotel destinations to the supplier's city ids.
type HotelCities struct {
	names  []string
	lookup map[string]domain.HotelCity
}

// LoadHotelCities builds the index from the embedded city list.
func LoadHotelCities() (*HotelCities, error) {
	return ReadHotelCities(bytes.NewReader(hotelCitiesCSV))
}

// ReadHotelCities parses a destination,city_id,country_code CSV.
func ReadHotelCities(r io.Reader) (*HotelCities, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("gazetteer: read hotel city header: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"destination", "city_id", "country_code"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("gazetteer: hotel city list missing column %q", required)
		}
	}

	h := &HotelCities{lookup: map[string]domain.HotelCity{}}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gazetteer: read hotel city row: %w", err)
		}
		name := strings.TrimSpace(row[cols["destination"]])
		id, err := strconv.Atoi(strings.TrimSpace(row[cols["city_id"]]))
		if err != nil {
			return nil, fmt.Errorf("gazetteer: hotel city %q: bad city_id: %w", name, err)
		}
		key := strings.ToLower(name)
		if _, dup := h.lookup[key]; !dup {
			h.names = append(h.names, name)
		}
		h.lookup[key] = domain.HotelCity{
			Name:        name,
			CityID:      id,
			CountryCode: strings.ToUpper(strings.TrimSpace(row[cols["country_code"]])),
		}
	}
	sort.Strings(h.names)
	return h, nil
}

func (h *HotelCities) Resolve(name string) (domain.HotelCity, bool) {
	city, ok := h.lookup[normalizeKey(name)]
	return city, ok
}

// Suggest returns up to limit destination names containing partial.
func (h *HotelCities) Suggest(partial string, limit int) []string {
	return suggest(h.names, partial, limit)
}
