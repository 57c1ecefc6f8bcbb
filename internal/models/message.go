package models

// Sender kinds. A message can come from a user or from a subreddit
// (e.g. moderator mail); the variant is resolved once at ingestion.
const (
	SenderUser      = "user"
	SenderSubreddit = "subreddit"
)

// Sender identifies who produced an inbound message.
type Sender struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// InboundMessage is a read-only view of an unread inbox message.
type InboundMessage struct {
	ID   string `json:"id"`
	From Sender `json:"from"`
	Body string `json:"body"`
}
