// Package sink holds the best-effort outbound edges of the engine: the
// dashboard collector sync and the operator notification channels. Every
// method returns an error that the orchestrators log and discard — a sink
// failure never propagates and is never retried.
package sink

import (
	"context"

	"leadmonitor/internal/models"
)

// LeadSink receives discovered leads.
type LeadSink interface {
	SyncLead(ctx context.Context, lead *models.Lead) error
}

// ConversationSink receives conversation summaries with the full
// serialized transcript.
type ConversationSink interface {
	SyncConversation(ctx context.Context, summary *ConversationSummary) error
}

// Notifier posts a human-readable notification.
type Notifier interface {
	Notify(ctx context.Context, content string) error
}

// ConversationSummary is the payload synced to the collector. History is
// the JSON-encoded transcript, matching what the dashboard stores.
type ConversationSummary struct {
	Username    string `json:"username"`
	LastMessage string `json:"last_message"`
	History     string `json:"history"`
	Timestamp   string `json:"timestamp"`
}
