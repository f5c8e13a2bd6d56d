package dialogue

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const dateLayout = "2006-01-02"

var (
	isoDatePattern  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	digitRunPattern = regexp.MustCompile(`\d+`)
)

// firstNumber returns the first whitespace-delimited token made only of
// digits.
func firstNumber(text string) (int, bool) {
	for _, tok := range strings.Fields(text) {
		if !allDigits(tok) {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		return n, true
	}
	return 0, false
}

// allNumbers returns every run of decimal digits in text.
func allNumbers(text string) []int {
	var out []int
	for _, run := range digitRunPattern.FindAllString(text, -1) {
		n, err := strconv.Atoi(run)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// firstDate returns the first YYYY-MM-DD substring when it is a real
// calendar date.
func firstDate(text string) (time.Time, bool) {
	m := isoDatePattern.FindString(text)
	if m == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(dateLayout, m)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) || r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// passengerSplit separates infants (under two) from children. Infants never
// exceed the captured child count.
func passengerSplit(ages []int, children int) (child, infants int) {
	for _, age := range ages {
		if age < 2 {
			infants++
		}
	}
	if infants > children {
		infants = children
	}
	return children - infants, infants
}
