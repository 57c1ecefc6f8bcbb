// Package scanner implements the discovery side of the engine: periodic
// keyword scans of monitored subreddits that produce scored leads.
package scanner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"leadmonitor/internal/matcher"
	"leadmonitor/internal/models"
	"leadmonitor/internal/repository"
	"leadmonitor/internal/sink"
)

const seenPostTTL = 7 * 24 * time.Hour

// FeedSource lists recent candidate posts for a subreddit.
type FeedSource interface {
	ListNewPosts(ctx context.Context, subreddit string, limit int) ([]models.Post, error)
}

// SourceListProvider fetches the monitored-subreddit override for one
// cycle. Errors and empty lists fall back to the configured defaults.
type SourceListProvider interface {
	FetchMonitoredSources(ctx context.Context) ([]string, error)
}

// Config carries the scan policy. Explicit configuration rather than
// package-level state so behavior is testable.
type Config struct {
	Subreddits []string
	PostLimit  int
	LeadScore  float64
}

// Scanner orchestrates one discovery cycle: fetch, dedup, match, persist,
// fan out. Scanning one subreddit never aborts the rest, and Scan never
// returns an error to the caller.
type Scanner struct {
	feed      FeedSource
	sources   SourceListProvider
	seen      repository.SeenStore
	leads     repository.LeadRepository
	collector sink.LeadSink
	notifiers []sink.Notifier
	matcher   *matcher.Matcher
	cfg       Config
	logger    *zap.Logger
}

func New(
	feed FeedSource,
	sources SourceListProvider,
	seen repository.SeenStore,
	leads repository.LeadRepository,
	collector sink.LeadSink,
	notifiers []sink.Notifier,
	m *matcher.Matcher,
	cfg Config,
	logger *zap.Logger,
) *Scanner {
	return &Scanner{
		feed:      feed,
		sources:   sources,
		seen:      seen,
		leads:     leads,
		collector: collector,
		notifiers: notifiers,
		matcher:   m,
		cfg:       cfg,
		logger:    logger,
	}
}

// Scan runs one discovery cycle over the current source list.
func (s *Scanner) Scan(ctx context.Context) {
	s.logger.Info("Running post monitor...")

	for _, subreddit := range s.resolveSources(ctx) {
		if err := s.scanSubreddit(ctx, subreddit); err != nil {
			s.logger.Error("Error monitoring subreddit", zap.String("subreddit", subreddit), zap.Error(err))
		}
	}
}

// resolveSources applies the dashboard override for this cycle only.
func (s *Scanner) resolveSources(ctx context.Context) []string {
	if s.sources == nil {
		return s.cfg.Subreddits
	}
	list, err := s.sources.FetchMonitoredSources(ctx)
	if err != nil {
		s.logger.Warn("Failed to fetch subreddits from backend, using defaults", zap.Error(err))
		return s.cfg.Subreddits
	}
	if len(list) == 0 {
		return s.cfg.Subreddits
	}
	s.logger.Info("Using targeted subreddits from dashboard", zap.Strings("subreddits", list))
	return list
}

func (s *Scanner) scanSubreddit(ctx context.Context, subreddit string) error {
	posts, err := s.feed.ListNewPosts(ctx, subreddit, s.cfg.PostLimit)
	if err != nil {
		return fmt.Errorf("failed to list new posts: %w", err)
	}

	for _, post := range posts {
		s.processPost(ctx, subreddit, post)
	}
	return nil
}

// processPost handles a single candidate. The seen-check happens before
// any other work, and the seen-mark after all of it; a crash in between
// re-delivers the item next cycle, which is harmless because lead writes
// are idempotent by post id.
func (s *Scanner) processPost(ctx context.Context, subreddit string, post models.Post) {
	seenKey := repository.SeenPostKey(post.ID)

	alreadySeen, err := s.seen.Has(seenKey)
	if err != nil {
		s.logger.Error("Failed to check seen marker", zap.String("post_id", post.ID), zap.Error(err))
		return
	}
	if alreadySeen {
		return
	}

	fullText := post.Title + " " + post.Body
	if s.matcher.Matches(fullText) {
		s.logger.Info("Found matching post", zap.String("title", post.Title), zap.String("subreddit", subreddit))

		lead := &models.Lead{
			RedditID:  post.ID,
			Title:     post.Title,
			Body:      post.Body,
			Subreddit: subreddit,
			Author:    post.Author,
			URL:       post.URL,
			Score:     s.cfg.LeadScore,
			Status:    models.LeadStatusNew,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.leads.Save(lead); err != nil {
			// Leave the seen marker unwritten so the next cycle retries.
			s.logger.Error("Failed to save lead", zap.String("post_id", post.ID), zap.Error(err))
			return
		}

		if err := s.collector.SyncLead(ctx, lead); err != nil {
			s.logger.Error("Dashboard sync failed", zap.String("post_id", post.ID), zap.Error(err))
		}

		notification := fmt.Sprintf(
			"🚨 **New Lead Found!**\n**Subreddit:** r/%s\n**Title:** %s\n**Author:** u/%s\n**URL:** %s",
			subreddit, post.Title, post.Author, post.URL,
		)
		for _, notifier := range s.notifiers {
			if err := notifier.Notify(ctx, notification); err != nil {
				s.logger.Error("Lead notification failed", zap.String("post_id", post.ID), zap.Error(err))
			}
		}
	}

	if err := s.seen.Mark(seenKey, "true", seenPostTTL); err != nil {
		s.logger.Error("Failed to mark post as seen", zap.String("post_id", post.ID), zap.Error(err))
	}
}
