package usecase

import (
	"fmt"
	"strings"

	"travel-agent/internal/domain"
)

// DefaultCompanyContext describes the business to the general-answer prompt
// when no override is stored in the parameter store.
const DefaultCompanyContext = `You are a helpful assistant for Marhaba Haji (marhabahaji.com), an Umrah and Hajj travel services provider.

Company Information:
- Marhaba Ventures is a trusted partner for Hajj and Umrah services
- It plans complete Umrah journeys: accommodation, guided tours and travel planning
- The platform is being rebuilt to offer a world-class Umrah and Hajj experience

Services Offered:
1. Umrah Packages
2. Hajj Packages
3. Hotel Accommodation in Makkah and Madinah
4. Ground Transportation in Saudi Arabia
5. Ziarath (guided tours to Islamic historical sites)
6. Guide Services
7. Visa Processing
8. Group Flight Arrangements
9. Travel Resources and guides for pilgrims

Instructions:
- Answer questions about Marhaba Haji services professionally
- If asked for prices or package details not listed here, suggest contacting Marhaba Haji through the website
- Be warm and respectful of the spiritual nature of the journey
- If the question is unrelated to these services, politely steer back to them`

func buildGeneralPrompt(companyContext string, turn domain.Turn) string {
	parts := []string{
		strings.TrimSpace(companyContext),
		"",
		"User Name: " + normalizePromptInput(turn.Name),
	}
	if lines := historyLines(turn.History); len(lines) > 0 {
		parts = append(parts, "Conversation so far:")
		parts = append(parts, lines...)
	}
	parts = append(parts,
		"User Question: "+strings.TrimSpace(turn.Question),
		"",
		answerRules(turn.IsFirstMessage),
	)
	return strings.Join(parts, "\n")
}

func historyLines(history []domain.HistoryEntry) []string {
	lines := make([]string, 0, len(history))
	for _, h := range history {
		text := normalizePromptInput(h.Text)
		if h.Role == "" || text == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", titleRole(h.Role), text))
	}
	return lines
}

func answerRules(firstMessage bool) string {
	greeting := "Do not greet again."
	if firstMessage {
		greeting = "Greet the user by name at the start."
	}
	return "Please provide a helpful and accurate response based on the services described above. " +
		"Keep the answer short (2-4 sentences) and warm. " + greeting
}

func titleRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return role
	}
	return strings.ToUpper(role[:1]) + role[1:]
}

func normalizePromptInput(s string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
}
