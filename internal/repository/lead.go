package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"leadmonitor/internal/models"
)

type LeadRepository interface {
	// Save upserts by reddit post id. Re-saving the same post overwrites
	// the existing row instead of creating a duplicate.
	Save(lead *models.Lead) error
	GetByRedditID(redditID string) (*models.Lead, error)
	GetAll(skip, limit int) ([]*models.Lead, error)
	UpdateStatus(redditID, status string) error
}

type leadRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewLeadRepository(db *sqlx.DB, logger *zap.Logger) LeadRepository {
	return &leadRepository{db: db, logger: logger}
}

func (r *leadRepository) Save(lead *models.Lead) error {
	query := `INSERT INTO leads (reddit_id, title, body, subreddit, author, url, score, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          ON CONFLICT (reddit_id) DO UPDATE SET
	              title = EXCLUDED.title,
	              body = EXCLUDED.body,
	              subreddit = EXCLUDED.subreddit,
	              author = EXCLUDED.author,
	              url = EXCLUDED.url,
	              score = EXCLUDED.score
	          RETURNING id`
	return r.db.QueryRowx(query, lead.RedditID, lead.Title, lead.Body, lead.Subreddit,
		lead.Author, lead.URL, lead.Score, lead.Status, lead.CreatedAt).Scan(&lead.ID)
}

func (r *leadRepository) GetByRedditID(redditID string) (*models.Lead, error) {
	var lead models.Lead
	query := `SELECT id, reddit_id, title, body, subreddit, author, url, score, status, created_at FROM leads WHERE reddit_id = $1`
	err := r.db.Get(&lead, query, redditID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Lead not found
		}
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepository) GetAll(skip, limit int) ([]*models.Lead, error) {
	var leads []*models.Lead
	query := `SELECT id, reddit_id, title, body, subreddit, author, url, score, status, created_at
	          FROM leads ORDER BY created_at DESC OFFSET $1 LIMIT $2`
	err := r.db.Select(&leads, query, skip, limit)
	if err != nil {
		return nil, err
	}
	return leads, nil
}

func (r *leadRepository) UpdateStatus(redditID, status string) error {
	result, err := r.db.Exec(`UPDATE leads SET status = $1 WHERE reddit_id = $2`, status, redditID)
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
