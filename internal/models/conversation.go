package models

import "time"

// Turn roles. Turns are immutable once appended.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

const (
	ConversationStatusNew     = "new"
	ConversationStatusEngaged = "engaged"
)

// Turn is a single entry in a conversation transcript.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation represents a per-sender transcript stored in the
// 'conversations' table. Messages holds the full ordered transcript; the
// engine always writes the whole sequence, never a delta.
type Conversation struct {
	ID             int64     `db:"id" json:"id"`
	RedditUsername string    `db:"reddit_username" json:"reddit_username"`
	Status         string    `db:"status" json:"status"`
	LastMessage    string    `db:"last_message" json:"last_message"`
	LastMessageAt  time.Time `db:"last_message_at" json:"last_message_at"`
	MessagesJSON   string    `db:"messages" json:"-"`
	HumanTakeover  bool      `db:"human_takeover" json:"human_takeover"`
	Turns          []Turn    `db:"-" json:"messages"`
}
