package domain

// Conversation role tags used when the service itself authors a message.
// Caller-supplied history may carry other tags; they are forwarded verbatim.
const (
	RoleUser      = "user"
	RoleModel     = "model"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatMessage is the provider-agnostic chat message shape used by the handler,
// the prompt composer and LLM integrations.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
