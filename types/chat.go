package types

const (
	RoleUser   = "user"
	RoleSystem = "system"
)

// Message is a single turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the frame a client sends over the chat socket.
type ChatRequest struct {
	Manual  string `json:"manual"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Valid reports whether the frame names a manual and carries a user turn.
func (r ChatRequest) Valid() bool {
	return r.Manual != "" && r.Role == RoleUser && r.Content != ""
}

// AskRequest is the one-shot HTTP variant of ChatRequest.
type AskRequest struct {
	ChatRequest
	History []Message `json:"history"`
}
