package travelapi

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

const topResults = 5

// FormatFlights renders the cheapest flight itineraries of a search
// response.
func FormatFlights(body []byte) string {
	type option struct {
		flight   gjson.Result
		cheapest gjson.Result
	}
	var options []option
	gjson.GetBytes(body, "Result").ForEach(func(_, group gjson.Result) bool {
		group.ForEach(func(_, flight gjson.Result) bool {
			fares := flight.Get("FareList").Array()
			if len(fares) == 0 || len(flight.Get("Segments").Array()) == 0 {
				return true
			}
			cheapest := fares[0]
			for _, f := range fares[1:] {
				if f.Get("PublishedPrice").Float() < cheapest.Get("PublishedPrice").Float() {
					cheapest = f
				}
			}
			options = append(options, option{flight: flight, cheapest: cheapest})
			return true
		})
		return true
	})
	if len(options) == 0 {
		return "No flights found."
	}

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].cheapest.Get("PublishedPrice").Float() < options[j].cheapest.Get("PublishedPrice").Float()
	})
	if len(options) > topResults {
		options = options[:topResults]
	}

	blocks := []string{"Cheapest 5 flight options:"}
	for i, o := range options {
		blocks = append(blocks, formatFlight(o.flight, o.cheapest, i+1))
	}
	return strings.Join(blocks, "\n\n")
}

func formatFlight(flight, fare gjson.Result, index int) string {
	lines := []string{fmt.Sprintf("Flight Option %d", index)}

	for i, trip := range flight.Get("Segments").Array() {
		segments := trip.Array()
		if len(segments) == 0 {
			continue
		}
		leg := "Outbound"
		if i > 0 {
			leg = "Return"
		}
		first, last := segments[0], segments[len(segments)-1]

		stops := "Direct"
		if n := len(segments) - 1; n > 0 {
			via := make([]string, 0, n)
			for _, s := range segments[:n] {
				via = append(via, s.Get("Destination.CityName").String())
			}
			stops = fmt.Sprintf("%d stop(s) via %s", n, strings.Join(via, ", "))
		}
		minutes := first.Get("TotalDuration").Int()

		lines = append(lines,
			"",
			leg+" Journey:",
			"Airline: "+first.Get("Airline.AirlineName").String(),
			fmt.Sprintf("Route: %s → %s", first.Get("Origin.CityCode").String(), last.Get("Destination.CityCode").String()),
			"Stops: "+stops,
			fmt.Sprintf("Duration: %dh %dm", minutes/60, minutes%60),
		)
	}

	baggage := fare.Get("SeatBaggage.0.0")
	lines = append(lines, "", "Baggage:", fmt.Sprintf("Cabin: %s | Check-in: %s",
		orDefault(baggage.Get("Cabin").String(), "Not specified"),
		orDefault(baggage.Get("CheckIn").String(), "Not specified")))

	lines = append(lines, "", "Fare breakup:")
	for _, p := range []struct{ key, label string }{{"ADT", "Adult"}, {"CHD", "Child"}, {"INF", "Infant"}} {
		b := fare.Get("FareBreakdown." + p.key)
		if !b.Exists() {
			continue
		}
		base, tax := b.Get("BaseFare").Float(), b.Get("Tax").Float()
		lines = append(lines, fmt.Sprintf("- %s x%d: INR %s (Base %s + Tax %s)",
			p.label, b.Get("PassengerCount").Int(), number(base+tax), number(base), number(tax)))
	}

	lines = append(lines, "", fmt.Sprintf("Total Price: INR %s (%s)",
		number(fare.Get("PublishedPrice").Float()), fare.Get("FareType").String()))
	return strings.Join(lines, "\n")
}

// FormatHotels renders the cheapest hotels of a search response.
func FormatHotels(body []byte) string {
	hotels := gjson.GetBytes(body, "Result").Array()
	if len(hotels) == 0 {
		return "No hotels found for the selected criteria."
	}
	sort.SliceStable(hotels, func(i, j int) bool {
		return hotelPrice(hotels[i]) < hotelPrice(hotels[j])
	})
	if len(hotels) > topResults {
		hotels = hotels[:topResults]
	}

	blocks := []string{"Top hotel options:"}
	for i, h := range hotels {
		price := "N/A"
		if p := hotelPrice(h); !math.IsInf(p, 1) {
			price = number(math.Round(p*100) / 100)
		}
		rating := "N/A"
		if r := h.Get("StarRating"); r.Exists() && r.String() != "" {
			rating = r.String()
		}
		lines := []string{
			fmt.Sprintf("Hotel Option %d", i+1),
			"Name: " + orDefault(h.Get("HotelName").String(), "Unknown Hotel"),
			"Rating: " + rating,
			"Address: " + orDefault(h.Get("HotelAddress").String(), "Address not available"),
			"Price: INR " + price,
		}
		if img := h.Get("HotelPicture").String(); img != "" {
			lines = append(lines, "Image: "+img)
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

// hotelPrice is the offered price, else the published price, else +Inf.
func hotelPrice(h gjson.Result) float64 {
	for _, path := range []string{"Price.OfferedPrice", "Price.PublishedPrice"} {
		if p := h.Get(path); p.Exists() && p.Float() != 0 {
			return p.Float()
		}
	}
	return math.Inf(1)
}

func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
