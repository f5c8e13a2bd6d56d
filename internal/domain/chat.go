package domain

import "time"

// ChatMessage is the provider-agnostic chat message shape used by the LLM
// integrations.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// HistoryEntry is one retained line of the conversation.
type HistoryEntry struct {
	Role string    `json:"role" bson:"role"`
	Text string    `json:"text" bson:"text"`
	At   time.Time `json:"at" bson:"at"`
}

// Turn is the immutable per-request input handed to routing and dialogues.
type Turn struct {
	Question       string
	Name           string
	History        []HistoryEntry
	IsFirstMessage bool
}
