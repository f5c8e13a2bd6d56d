package gazetteer

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed data/airports.json
var airportsJSON []byte

var airportAliases = map[string]string{
	"banglore":  "BLR",
	"bengaluru": "BLR",
	"new delhi": "DEL",
	"jeddha":    "JED",
	"jedha":     "JED",
	"mecca":     "JED",
	"makkah":    "JED",
	"medina":    "MED",
}

// Airports resolves city names, airport labels, and IATA codes to IATA codes.
type Airports struct {
	labels []string
	lookup map[string]string
}

// LoadAirports builds the index from the embedded airport list.
func LoadAirports() (*Airports, error) {
	var raw map[string]string
	if err := json.Unmarshal(airportsJSON, &raw); err != nil {
		return nil, fmt.Errorf("gazetteer: decode airports: %w", err)
	}
	return NewAirports(raw, airportAliases), nil
}

// NewAirports indexes label -> IATA entries. Each label is reachable by the
// full label, the city before the first comma, and the code itself.
func NewAirports(labels map[string]string, aliases map[string]string) *Airports {
	a := &Airports{lookup: make(map[string]string, len(labels)*3+len(aliases))}
	for label, code := range labels {
		code = strings.ToUpper(strings.TrimSpace(code))
		lower := strings.ToLower(label)
		a.labels = append(a.labels, label)
		a.lookup[lower] = code
		city, _, _ := strings.Cut(lower, ",")
		a.lookup[strings.TrimSpace(city)] = code
		a.lookup[strings.ToLower(code)] = code
	}
	for alias, code := range aliases {
		a.lookup[strings.ToLower(alias)] = strings.ToUpper(code)
	}
	sort.Strings(a.labels)
	return a
}

// Resolve returns the IATA code for a typed city or airport.
func (a *Airports) Resolve(text string) (string, bool) {
	key := normalizeKey(text)
	if key == "" {
		return "", false
	}
	code, ok := a.lookup[key]
	return code, ok
}

// Suggest returns up to limit airport labels containing text.
func (a *Airports) Suggest(text string, limit int) []string {
	return suggest(a.labels, text, limit)
}

func normalizeKey(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = strings.NewReplacer("-", " ", "_", " ").Replace(text)
	return strings.Join(strings.Fields(text), " ")
}

func suggest(labels []string, text string, limit int) []string {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" || limit <= 0 {
		return nil
	}
	var out []string
	for _, label := range labels {
		if strings.Contains(strings.ToLower(label), text) {
			out = append(out, label)
			if len(out) >= limit {
				break
			}
		}
	}
	return out
}
