package store

// ChatMessageRole identifies the author of a chat message.
type ChatMessageRole string

const (
	ChatMessageRoleUser      ChatMessageRole = "USER"
	ChatMessageRoleAssistant ChatMessageRole = "ASSISTANT"
)

// ChatMessage is one turn of the assistant conversation. Assistant turns
// carry the extracted intent and the dispatch outcome for auditing.
type ChatMessage struct {
	ID        int32
	UID       string
	SessionID string
	Role      ChatMessageRole
	Content   string
	Intent    string // JSON string, empty for user turns
	Outcome   string // dispatch outcome, empty for user turns
	CreatedTs int64
}

type FindChatMessage struct {
	ID        *int32
	UID       *string
	SessionID *string
	Role      *ChatMessageRole
	Limit     *int
	Offset    *int
}

type DeleteChatMessage struct {
	ID        *int32
	SessionID *string
}
