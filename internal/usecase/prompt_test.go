package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"travel-agent/internal/domain"
)

func TestBuildGeneralPrompt(t *testing.T) {
	prompt := buildGeneralPrompt("  Company facts.  ", domain.Turn{
		Question: " Do you arrange transport? ",
		Name:     "  Omar   Ali ",
		History: []domain.HistoryEntry{
			{Role: "user", Text: "hello"},
			{Role: "assistant", Text: "  Hi   Omar "},
			{Role: "", Text: "dropped"},
			{Role: "user", Text: "   "},
		},
	})

	require.Equal(t, "Company facts.\n\n"+
		"User Name: Omar Ali\n"+
		"Conversation so far:\n"+
		"User: hello\n"+
		"Assistant: Hi Omar\n"+
		"User Question: Do you arrange transport?\n\n"+
		"Please provide a helpful and accurate response based on the services described above. "+
		"Keep the answer short (2-4 sentences) and warm. Do not greet again.", prompt)
}

func TestBuildGeneralPrompt_FirstMessageGreets(t *testing.T) {
	prompt := buildGeneralPrompt(DefaultCompanyContext, domain.Turn{Question: "hi", Name: "Sara", IsFirstMessage: true})
	require.Contains(t, prompt, "Greet the user by name at the start.")
	require.NotContains(t, prompt, "Conversation so far")
}

func TestUserLocks_ReleasesEntries(t *testing.T) {
	l := newUserLocks()
	unlockA := l.Lock("a")
	unlockB := l.Lock("b")
	require.Equal(t, 2, l.size())
	unlockA()
	unlockB()
	require.Equal(t, 0, l.size())
}
