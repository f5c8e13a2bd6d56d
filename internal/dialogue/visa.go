package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"travel-agent/internal/domain"
)

// DefaultVisaDisclaimer closes every scripted visa answer.
const DefaultVisaDisclaimer = "Please check with our visa expert by dialling +919008447887."

const askVisaCountry = "Yes, we provide visa services. " +
	"Please let me know the destination country and I will fetch pricing and requirements."

// VisaDialogue answers visa questions from a per-country cache of the
// partner payload. It never fails a turn: upstream problems degrade to a
// scripted answer.
type VisaDialogue struct {
	source     VisaSource
	llm        TextCompletion
	disclaimer string
	now        func() time.Time
	logger     *slog.Logger
}

// NewVisaDialogue returns a visa dialogue. An empty disclaimer uses
// DefaultVisaDisclaimer.
func NewVisaDialogue(source VisaSource, llm TextCompletion, disclaimer string, logger *slog.Logger) (*VisaDialogue, error) {
	if source == nil {
		return nil, errors.New("dialogue: visa source must not be nil")
	}
	if llm == nil {
		return nil, errors.New("dialogue: text completion must not be nil")
	}
	if strings.TrimSpace(disclaimer) == "" {
		disclaimer = DefaultVisaDisclaimer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VisaDialogue{
		source:     source,
		llm:        llm,
		disclaimer: disclaimer,
		now:        time.Now,
		logger:     logger.With("component", "visa_dialogue"),
	}, nil
}

// Handle answers a visa turn. country is the destination resolved from this
// turn, empty when none was mentioned.
func (d *VisaDialogue) Handle(ctx context.Context, turn domain.Turn, country string, current *domain.VisaContext) Outcome[domain.VisaContext] {
	keep := Outcome[domain.VisaContext]{Context: current}
	if country == "" && current != nil {
		country = current.Country
	}
	if country == "" {
		keep.Answer = askVisaCountry
		return keep
	}

	if current == nil || current.Country != country {
		data, err := d.source.FetchVisa(ctx, country)
		if err != nil {
			d.logger.Warn("visa fetch failed, using scripted answer", "country", country, "err", err)
			keep.Answer = d.genericAnswer(country, turn.Question)
			return keep
		}
		fresh := &domain.VisaContext{Country: country, Data: data, FetchedAt: d.now().UTC()}
		answer, err := d.priceAnswerWithLLM(ctx, data, country, turn.Question)
		if err != nil {
			d.logger.Info("llm price summary rejected, using template", "country", country, "err", err)
			answer = d.priceAnswer(data, country)
		}
		return Outcome[domain.VisaContext]{Answer: answer, Context: fresh, Persist: true}
	}

	snippet := visaSnippet(turn.Question, current.Data)
	if snippetEmpty(snippet) {
		keep.Answer = d.genericAnswer(country, turn.Question)
		return keep
	}
	prompt := "You are a visa assistant. Use only the provided visa data to answer the user. " +
		"If the data does not contain the answer, say so clearly. " +
		"Keep the answer short (2-4 sentences).\n\n" +
		fmt.Sprintf("Visa Country: %s\nVisa Data: %s\n\nUser Question: %s\n", current.Country, snippet, turn.Question)
	answer, err := d.llm.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(answer) == "" {
		d.logger.Warn("visa follow-up generation failed, using scripted answer", "country", country, "err", err)
		keep.Answer = d.genericAnswer(country, turn.Question)
		return keep
	}
	keep.Answer = strings.TrimSpace(answer)
	return keep
}

func (d *VisaDialogue) genericAnswer(country, question string) string {
	lowered := strings.ToLower(question)
	parts := []string{"Yes, we provide visa services."}
	if country != "" {
		parts[0] = fmt.Sprintf("Yes, we provide visa services for %s.", country)
	}
	switch {
	case containsAny(lowered, "document", "requirement"):
		parts = append(parts, "Typical requirements include a valid passport, recent photos, a completed application form, "+
			"and supporting travel/financial documents.")
	case containsAny(lowered, "time", "processing", "duration"):
		parts = append(parts, "Processing times vary by nationality and visa type, and expedited options may be available.")
	case containsAny(lowered, "price", "cost", "fee"):
		parts = append(parts, "Visa fees vary based on visa type, duration, and processing speed.")
	default:
		parts = append(parts, "Requirements, timelines, and fees vary by nationality and visa type.")
	}
	parts = append(parts, d.disclaimer)
	return strings.Join(parts, " ")
}

type priceQuotes struct {
	currency string
	minPrice string
	lines    []string
}

func parseQuotes(data []byte, limit int) (priceQuotes, bool) {
	quotes := gjson.GetBytes(data, "displayQuotes").Array()
	if len(quotes) == 0 {
		return priceQuotes{}, false
	}
	out := priceQuotes{currency: quotes[0].Get("currency").String()}
	min, found := 0.0, false
	for i, q := range quotes {
		if base := q.Get("basePrice"); base.Type == gjson.Number && (!found || base.Float() < min) {
			min, found = base.Float(), true
		}
		if i >= limit {
			continue
		}
		currency := out.currency
		if c := q.Get("currency"); c.Exists() {
			currency = c.String()
		}
		out.lines = append(out.lines, fmt.Sprintf("%s (%s, %s): %s %s",
			q.Get("purpose").String(), q.Get("entryType").String(), q.Get("stayPeriod").String(),
			currency, q.Get("basePrice").String()))
	}
	if found {
		out.minPrice = strconv.FormatFloat(min, 'f', -1, 64)
	}
	return out, true
}

// priceAnswer is the deterministic price summary.
func (d *VisaDialogue) priceAnswer(data []byte, country string) string {
	quotes, ok := parseQuotes(data, 3)
	if !ok {
		return d.genericAnswer(country, "price")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Yes, we provide visa services for %s.", country)
	if quotes.minPrice != "" {
		fmt.Fprintf(&b, " Prices start as low as %s %s.", quotes.currency, quotes.minPrice)
	}
	fmt.Fprintf(&b, " Here are current prices: %s.", strings.Join(quotes.lines, "; "))
	return b.String()
}

// priceAnswerWithLLM asks the model for a price summary and rejects answers
// that drop the numbers.
func (d *VisaDialogue) priceAnswerWithLLM(ctx context.Context, data []byte, country, question string) (string, error) {
	quotes, ok := parseQuotes(data, 4)
	if !ok {
		return "", errors.New("no pricing data")
	}
	prompt := "You are a visa assistant. Use only the provided pricing data. " +
		"Reply to the user's question, confirm we provide visa services for the country, " +
		"then say prices start as low as the minimum basePrice, then list 2-4 prices. " +
		"Do not mention categories or documents. Always include numeric prices with currency. " +
		"Keep it short (2-3 sentences).\n\n" +
		fmt.Sprintf("Country: %s\nMinimum Price: %s %s\nPrice Lines: %s\nUser Question: %s\n",
			country, quotes.currency, quotes.minPrice, strings.Join(quotes.lines, "; "), question)

	answer, err := d.llm.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if !strings.ContainsAny(answer, "0123456789") {
		return "", errors.New("answer missing prices")
	}
	if quotes.minPrice != "" && quotes.currency != "" && !strings.Contains(answer, quotes.currency+" "+quotes.minPrice) {
		return "", errors.New("answer missing minimum price")
	}
	return answer, nil
}

// visaSnippet narrows the cached payload to the part the question is about.
func visaSnippet(question string, data []byte) string {
	lowered := strings.ToLower(question)
	pick := func(key string) string {
		raw := gjson.GetBytes(data, key).Raw
		if raw == "" {
			raw = "null"
		}
		return fmt.Sprintf(`{%q:%s}`, key, raw)
	}
	switch {
	case containsAny(lowered, "document", "requirement"):
		return pick("documentRequired")
	case containsAny(lowered, "faq", "question"):
		return pick("faqs")
	case containsAny(lowered, "important", "info"):
		return pick("importantInfo")
	case containsAny(lowered, "price", "cost", "fee"):
		return pick("displayQuotes")
	}
	if len(data) == 0 {
		return "null"
	}
	return string(data)
}

// snippetEmpty reports whether every leaf of the JSON value is null, an
// empty string, or an empty collection.
func snippetEmpty(raw string) bool {
	return leafEmpty(gjson.Parse(raw))
}

func leafEmpty(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null:
		return true
	case gjson.String:
		return v.Str == ""
	case gjson.JSON:
		empty := true
		v.ForEach(func(_, child gjson.Result) bool {
			empty = leafEmpty(child)
			return empty
		})
		return empty
	default:
		return false
	}
}

func containsAny(s string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
