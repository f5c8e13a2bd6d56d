package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"travel-agent/internal/domain"
)

type mockLLM struct {
	answers []string
	err     error
	prompts []string
}

func (m *mockLLM) Generate(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	if len(m.answers) == 0 {
		return "", errors.New("no llm response configured")
	}
	idx := len(m.prompts) - 1
	if idx >= len(m.answers) {
		idx = len(m.answers) - 1
	}
	return m.answers[idx], nil
}

type mockFlightSearch struct {
	queries []domain.FlightQuery
	result  string
	err     error
}

func (m *mockFlightSearch) SearchFlights(_ context.Context, q domain.FlightQuery) (string, error) {
	m.queries = append(m.queries, q)
	return m.result, m.err
}

type mockHotelSearch struct {
	queries []domain.HotelQuery
	result  string
	err     error
}

func (m *mockHotelSearch) SearchHotels(_ context.Context, q domain.HotelQuery) (string, error) {
	m.queries = append(m.queries, q)
	return m.result, m.err
}

type mockCities struct {
	cities      map[string]domain.HotelCity
	suggestions []string
}

func (m *mockCities) Resolve(name string) (domain.HotelCity, bool) {
	c, ok := m.cities[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

func (m *mockCities) Suggest(string, int) []string {
	return m.suggestions
}

type mockCountries struct {
	names []string
}

func (m *mockCountries) Extract(text string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, n := range m.names {
		if strings.Contains(lowered, strings.ToLower(n)) {
			return n, true
		}
	}
	return "", false
}

type mockVisaSource struct {
	payloads map[string]string
	err      error
	calls    []string
}

func (m *mockVisaSource) FetchVisa(_ context.Context, country string) (json.RawMessage, error) {
	m.calls = append(m.calls, country)
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.payloads[country]
	if !ok {
		return nil, errors.New("unknown country")
	}
	return json.RawMessage(p), nil
}

func turn(text string) domain.Turn {
	return domain.Turn{Question: text}
}
