package domain

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of recent conversation context, oldest first.
type Turn struct {
	Role    Role
	Content string
}

// ChatRecord is a single persisted question/answer exchange.
type ChatRecord struct {
	PK        string
	SK        string
	SessionID string
	UserID    string
	Category  string
	Message   string
	Response  string
	Source    Source
	TTL       int64
}
