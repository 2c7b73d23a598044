package model

// Message roles, mirroring the chat-completions convention the client uses.
const (
	RoleUser  = "user"
	RoleSanta = "assistant"
)

// Message is one turn of a conversation. History lives only in client
// memory; the server never persists it.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SantaReply is the simulator's answer to a conversation turn.
type SantaReply struct {
	Text  string `json:"text"`
	Video string `json:"video"`
}
