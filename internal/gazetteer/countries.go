package gazetteer

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// defaultCountries are the destinations the visa partner serves, keyed by
// the lower-cased phrase users type.
var defaultCountries = map[string]string{
	"dubai":                "Dubai",
	"uae":                  "UAE",
	"united arab emirates": "UAE",
	"france":               "France",
	"germany":              "Germany",
	"finland":              "Finland",
	"sri lanka":            "Sri Lanka",
	"canada":               "Canada",
	"united kingdom":       "United Kingdom",
	"uk":                   "United Kingdom",
	"spain":                "Spain",
	"switzerland":          "Switzerland",
	"egypt":                "Egypt",
	"south africa":         "South Africa",
	"netherlands":          "Netherlands",
	"czech republic":       "Czech Republic",
	"austria":              "Austria",
	"ukraine":              "Ukraine",
	"usa":                  "USA",
	"united states":        "USA",
	"denmark":              "Denmark",
	"greece":               "Greece",
	"hungary":              "Hungary",
	"sweden":               "Sweden",
	"singapore":            "Singapore",
	"turkey":               "Turkey",
	"australia":            "Australia",
	"thailand":             "Thailand",
	"new zealand":          "New Zealand",
	"italy":                "Italy",
	"hong kong":            "Hong Kong",
	"bangladesh":           "Bangladesh",
	"slovenia":             "Slovenia",
	"saudi arabia":         "Saudi Arabia",
	"belgium":              "Belgium",
	"poland":               "Poland",
	"slovakia":             "Slovakia",
	"iceland":              "Iceland",
	"portugal":             "Portugal",
	"norway":               "Norway",
	"latvia":               "Latvia",
	"malta":                "Malta",
	"malaysia":             "Malaysia",
	"vietnam":              "Vietnam",
	"cambodia":             "Cambodia",
	"liechtenstein":        "Liechtenstein",
	"philippines":          "Philippines",
}

// Countries finds a visa destination mentioned in free text. Safe for
// concurrent use.
type Countries struct {
	names  []string // longest first
	lookup map[string]string
}

// NewCountries builds the index from phrase -> canonical country. A nil map
// uses the built-in destination list.
func NewCountries(lookup map[string]string) *Countries {
	if lookup == nil {
		lookup = defaultCountries
	}
	c := &Countries{lookup: make(map[string]string, len(lookup))}
	for phrase, country := range lookup {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		if phrase == "" {
			continue
		}
		c.lookup[phrase] = country
		c.names = append(c.names, phrase)
	}
	sort.Slice(c.names, func(i, j int) bool {
		if len(c.names[i]) != len(c.names[j]) {
			return len(c.names[i]) > len(c.names[j])
		}
		return c.names[i] < c.names[j]
	})
	return c
}

// Extract returns the country of the longest phrase found in text as a whole
// word.
func (c *Countries) Extract(text string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, name := range c.names {
		if containsWord(lowered, name) {
			return c.lookup[name], true
		}
	}
	return "", false
}

func containsWord(text, word string) bool {
	for start := 0; start < len(text); {
		i := strings.Index(text[start:], word)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(word)
		if boundaryBefore(text, i) && boundaryAfter(text, end) {
			return true
		}
		start = i + 1
	}
	return false
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
