package models

import "time"

// Lead statuses are written by the dashboard only; the engine always
// creates leads as "new".
const (
	LeadStatusNew        = "new"
	LeadStatusIgnored    = "ignored"
	LeadStatusContacted  = "contacted"
	LeadStatusBookmarked = "bookmarked"
)

// Lead represents a matched post stored in the 'leads' table.
// RedditID equals the originating post id, so re-saving the same post
// overwrites instead of duplicating.
type Lead struct {
	ID        int64     `db:"id" json:"-"`
	RedditID  string    `db:"reddit_id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Body      string    `db:"body" json:"body"`
	Subreddit string    `db:"subreddit" json:"subreddit"`
	Author    string    `db:"author" json:"author"`
	URL       string    `db:"url" json:"url"`
	Score     float64   `db:"score" json:"score"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
