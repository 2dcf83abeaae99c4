package entity

// Chat message roles accepted from the portal.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one turn of the assistant conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Identity describes the caller as resolved by the portal's auth layer.
type Identity struct {
	Authenticated bool   `json:"authenticated"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	Location      string `json:"location"`
	Module        string `json:"module"`
}
