package models

import "time"

// Post is a read-only view of a candidate item fetched from a monitored
// subreddit. ID is the platform-global post id ("t3_..." fullname) and is
// the dedup key.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Subreddit string    `json:"subreddit"`
	Author    string    `json:"author"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}
