// Package monitor implements the conversation side of the engine: inbox
// processing with per-sender takeover gating and auto-reply policy.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"leadmonitor/internal/models"
	"leadmonitor/internal/repository"
	"leadmonitor/internal/sink"
)

const (
	repliedTTL     = 30 * 24 * time.Hour
	previewRuneMax = 200
)

// Mailbox is the inbox/reply collaborator (the Reddit client in
// production).
type Mailbox interface {
	ListUnreadMessages(ctx context.Context) ([]models.InboundMessage, error)
	SendDirectMessage(ctx context.Context, to, subject, body string) error
	MarkRead(ctx context.Context, messageID string) error
}

// Config carries the reply policy. AutoReplyEnabled is the single
// process-wide toggle deciding between replied and muted handling.
type Config struct {
	AutoReplyEnabled bool
	ReplySubject     string
	ReplyBody        string
}

// Monitor orchestrates one inbox cycle. Processing one message never
// aborts the rest of the inbox; a listing failure ends the cycle only.
type Monitor struct {
	mailbox   Mailbox
	seen      repository.SeenStore
	convos    repository.ConversationRepository
	collector sink.ConversationSink
	notifiers []sink.Notifier
	cfg       Config
	logger    *zap.Logger
}

func New(
	mailbox Mailbox,
	seen repository.SeenStore,
	convos repository.ConversationRepository,
	collector sink.ConversationSink,
	notifiers []sink.Notifier,
	cfg Config,
	logger *zap.Logger,
) *Monitor {
	return &Monitor{
		mailbox:   mailbox,
		seen:      seen,
		convos:    convos,
		collector: collector,
		notifiers: notifiers,
		cfg:       cfg,
		logger:    logger,
	}
}

// CheckMessages runs one inbox cycle.
func (m *Monitor) CheckMessages(ctx context.Context) {
	m.logger.Info("Checking DMs...")

	messages, err := m.mailbox.ListUnreadMessages(ctx)
	if err != nil {
		m.logger.Error("Error checking DMs", zap.Error(err))
		return
	}

	for _, message := range messages {
		m.processMessage(ctx, message)
	}
}

func (m *Monitor) processMessage(ctx context.Context, message models.InboundMessage) {
	sender := message.From.Name
	if sender == "" {
		return
	}

	// Hard gate: human takeover silences everything for this sender —
	// no markers, no transcript, no notifications.
	takeover, err := m.seen.Has(repository.TakeoverKey(sender))
	if err != nil {
		m.logger.Error("Failed to check takeover flag", zap.String("sender", sender), zap.Error(err))
		return
	}
	if takeover {
		m.logger.Info("Human takeover active, skipping auto-reply", zap.String("sender", sender))
		return
	}

	repliedKey := repository.RepliedKey(message.ID)
	alreadyReplied, err := m.seen.Has(repliedKey)
	if err != nil {
		m.logger.Error("Failed to check replied marker", zap.String("message_id", message.ID), zap.Error(err))
		return
	}
	if alreadyReplied {
		return
	}

	replySent := false
	if m.cfg.AutoReplyEnabled {
		if err := m.mailbox.SendDirectMessage(ctx, sender, m.cfg.ReplySubject, m.cfg.ReplyBody); err != nil {
			// Abandon without a marker; the message stays unread and
			// is retried on the next tick.
			m.logger.Error("Failed to reply", zap.String("sender", sender), zap.Error(err))
			return
		}
		m.logger.Info("Replied to DM", zap.String("sender", sender))
		replySent = true

		if err := m.seen.Mark(repliedKey, repository.MarkerReplied, repliedTTL); err != nil {
			m.logger.Error("Failed to mark message as replied", zap.String("message_id", message.ID), zap.Error(err))
		}
	} else {
		m.logger.Info("Auto-reply disabled, staying silent", zap.String("sender", sender))

		// Muted, not replied: the message is never retried even if the
		// toggle is re-enabled later.
		if err := m.seen.Mark(repliedKey, repository.MarkerMuted, repliedTTL); err != nil {
			m.logger.Error("Failed to mark message as muted", zap.String("message_id", message.ID), zap.Error(err))
		}
	}

	convo := m.appendTurns(message, sender, replySent)
	if convo == nil {
		return
	}

	m.syncConversation(ctx, convo, message)
	m.notify(ctx, sender, message.Body, replySent)

	if err := m.mailbox.MarkRead(ctx, message.ID); err != nil {
		m.logger.Warn("Failed to mark message read", zap.String("message_id", message.ID), zap.Error(err))
	}
}

// appendTurns loads the sender's transcript, appends the user turn plus
// either the assistant reply or a system note, and persists the whole
// sequence. Returns nil if the transcript could not be persisted.
func (m *Monitor) appendTurns(message models.InboundMessage, sender string, replySent bool) *models.Conversation {
	convo, err := m.convos.GetBySender(sender)
	if err != nil {
		m.logger.Error("Failed to load conversation", zap.String("sender", sender), zap.Error(err))
		return nil
	}
	if convo == nil {
		convo = &models.Conversation{
			RedditUsername: sender,
			Status:         models.ConversationStatusNew,
		}
	}

	now := time.Now().UTC()
	convo.Turns = append(convo.Turns, models.Turn{
		Role:      models.RoleUser,
		Content:   message.Body,
		Timestamp: now,
	})
	if replySent {
		convo.Turns = append(convo.Turns, models.Turn{
			Role:      models.RoleAssistant,
			Content:   m.cfg.ReplyBody,
			Timestamp: now,
		})
		convo.Status = models.ConversationStatusEngaged
	} else {
		convo.Turns = append(convo.Turns, models.Turn{
			Role:      models.RoleSystem,
			Content:   "(Auto-reply disabled)",
			Timestamp: now,
		})
	}
	convo.LastMessage = message.Body
	convo.LastMessageAt = now

	if err := m.convos.Upsert(convo); err != nil {
		m.logger.Error("Failed to persist conversation", zap.String("sender", sender), zap.Error(err))
		return nil
	}
	return convo
}

func (m *Monitor) syncConversation(ctx context.Context, convo *models.Conversation, message models.InboundMessage) {
	history, err := json.Marshal(convo.Turns)
	if err != nil {
		m.logger.Error("Failed to encode transcript", zap.String("sender", convo.RedditUsername), zap.Error(err))
		return
	}

	summary := &sink.ConversationSummary{
		Username:    convo.RedditUsername,
		LastMessage: message.Body,
		History:     string(history),
		Timestamp:   convo.LastMessageAt.Format(time.RFC3339),
	}
	if err := m.collector.SyncConversation(ctx, summary); err != nil {
		m.logger.Error("Conversation sync failed", zap.String("sender", convo.RedditUsername), zap.Error(err))
	}
}

func (m *Monitor) notify(ctx context.Context, sender, body string, replySent bool) {
	status := "**AI Reply:** Disabled (Silent)"
	if replySent {
		status = "**AI Reply:** Sent standard intro"
	}

	preview := body
	if runes := []rune(preview); len(runes) > previewRuneMax {
		preview = string(runes[:previewRuneMax]) + "..."
	}

	notification := fmt.Sprintf("💬 **New DM from u/%s**\n\n**User:** %s\n\n%s", sender, preview, status)
	for _, notifier := range m.notifiers {
		if err := notifier.Notify(ctx, notification); err != nil {
			m.logger.Error("DM notification failed", zap.String("sender", sender), zap.Error(err))
		}
	}
}
