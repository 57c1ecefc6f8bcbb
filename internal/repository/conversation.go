package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"leadmonitor/internal/models"
)

type ConversationRepository interface {
	GetBySender(username string) (*models.Conversation, error)
	// Upsert writes the full transcript. The store holds the whole
	// ordered sequence, not a delta.
	Upsert(convo *models.Conversation) error
	SetTakeover(username string, enable bool) error
	GetAll(skip, limit int) ([]*models.Conversation, error)
}

type conversationRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewConversationRepository(db *sqlx.DB, logger *zap.Logger) ConversationRepository {
	return &conversationRepository{db: db, logger: logger}
}

func (r *conversationRepository) GetBySender(username string) (*models.Conversation, error) {
	var convo models.Conversation
	query := `SELECT id, reddit_username, status, last_message, last_message_at, messages, human_takeover
	          FROM conversations WHERE reddit_username = $1`
	err := r.db.Get(&convo, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Conversation not found
		}
		return nil, err
	}
	if err := decodeTurns(&convo); err != nil {
		return nil, err
	}
	return &convo, nil
}

func (r *conversationRepository) Upsert(convo *models.Conversation) error {
	encoded, err := json.Marshal(convo.Turns)
	if err != nil {
		return fmt.Errorf("failed to encode transcript: %w", err)
	}
	convo.MessagesJSON = string(encoded)

	query := `INSERT INTO conversations (reddit_username, status, last_message, last_message_at, messages, human_takeover)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (reddit_username) DO UPDATE SET
	              status = EXCLUDED.status,
	              last_message = EXCLUDED.last_message,
	              last_message_at = EXCLUDED.last_message_at,
	              messages = EXCLUDED.messages
	          RETURNING id, human_takeover`
	return r.db.QueryRowx(query, convo.RedditUsername, convo.Status, convo.LastMessage,
		convo.LastMessageAt, convo.MessagesJSON, convo.HumanTakeover).Scan(&convo.ID, &convo.HumanTakeover)
}

func (r *conversationRepository) SetTakeover(username string, enable bool) error {
	result, err := r.db.Exec(`UPDATE conversations SET human_takeover = $1 WHERE reddit_username = $2`, enable, username)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *conversationRepository) GetAll(skip, limit int) ([]*models.Conversation, error) {
	var convos []*models.Conversation
	query := `SELECT id, reddit_username, status, last_message, last_message_at, messages, human_takeover
	          FROM conversations ORDER BY last_message_at DESC OFFSET $1 LIMIT $2`
	err := r.db.Select(&convos, query, skip, limit)
	if err != nil {
		return nil, err
	}
	for _, convo := range convos {
		if err := decodeTurns(convo); err != nil {
			return nil, err
		}
	}
	return convos, nil
}

func decodeTurns(convo *models.Conversation) error {
	if convo.MessagesJSON == "" {
		convo.Turns = nil
		return nil
	}
	if err := json.Unmarshal([]byte(convo.MessagesJSON), &convo.Turns); err != nil {
		return fmt.Errorf("failed to decode transcript for %s: %w", convo.RedditUsername, err)
	}
	return nil
}
