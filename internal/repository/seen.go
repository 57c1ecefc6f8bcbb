package repository

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Marker key prefixes. The three namespaces are independent; callers must
// build keys with these helpers and never mix them.
const (
	seenPostPrefix = "seen_post:"
	repliedPrefix  = "replied:"
	takeoverPrefix = "takeover:"
)

func SeenPostKey(postID string) string   { return seenPostPrefix + postID }
func RepliedKey(messageID string) string { return repliedPrefix + messageID }
func TakeoverKey(sender string) string   { return takeoverPrefix + sender }

// Marker values for the replied namespace.
const (
	MarkerReplied = "true"
	MarkerMuted   = "muted"
)

// SeenStore is a TTL-backed presence/value store used for post dedup,
// reply dedup and takeover flags.
type SeenStore interface {
	// Has reports whether key exists and has not expired. No side effects.
	Has(key string) (bool, error)
	// Get returns the stored value, or "" if absent or expired.
	Get(key string) (string, error)
	// Mark upserts key with value. A zero ttl means the marker never
	// expires; otherwise the marker becomes absent once ttl elapses.
	Mark(key, value string, ttl time.Duration) error
	// Clear removes key.
	Clear(key string) error
}

type seenStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewSeenStore(db *sqlx.DB, logger *zap.Logger) SeenStore {
	return &seenStore{db: db, logger: logger}
}

func (s *seenStore) Has(key string) (bool, error) {
	value, err := s.Get(key)
	if err != nil {
		return false, err
	}
	return value != "", nil
}

func (s *seenStore) Get(key string) (string, error) {
	var value string
	query := `SELECT value FROM seen_markers WHERE key = $1 AND (expires_at IS NULL OR expires_at > NOW())`
	err := s.db.Get(&value, query, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

func (s *seenStore) Mark(key, value string, ttl time.Duration) error {
	var expiresAt *time.Time
	if ttl > 0 {
		t := time.Now().Add(ttl)
		expiresAt = &t
	}
	query := `INSERT INTO seen_markers (key, value, expires_at) VALUES ($1, $2, $3)
	          ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`
	_, err := s.db.Exec(query, key, value, expiresAt)
	return err
}

func (s *seenStore) Clear(key string) error {
	_, err := s.db.Exec(`DELETE FROM seen_markers WHERE key = $1`, key)
	return err
}
