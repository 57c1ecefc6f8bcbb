package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_FullFile(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost/leads
reddit:
  client_id: abc
  client_secret: def
  refresh_token: ghi
  username: bot
discovery:
  subreddits: [golang, devops]
  keywords: [monitoring]
  post_limit: 25
  lead_score: 80
  interval_seconds: 120
conversation:
  auto_reply_enabled: true
  reply_subject: Hello
  reply_body: Thanks for writing.
  interval_seconds: 30
sinks:
  backend_url: http://localhost:9000
  webhook_url: http://hooks.example/x
server:
  port: ":9001"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Database.URL != "postgres://localhost/leads" {
		t.Errorf("database url = %q", cfg.Database.URL)
	}
	if cfg.Reddit.ClientID != "abc" || cfg.Reddit.Username != "bot" {
		t.Errorf("reddit section = %+v", cfg.Reddit)
	}
	if len(cfg.Discovery.Subreddits) != 2 || cfg.Discovery.Subreddits[0] != "golang" {
		t.Errorf("subreddits = %v", cfg.Discovery.Subreddits)
	}
	if cfg.Discovery.PostLimit != 25 || cfg.Discovery.LeadScore != 80 {
		t.Errorf("discovery = %+v", cfg.Discovery)
	}
	if !cfg.Conversation.AutoReplyEnabled || cfg.Conversation.IntervalSeconds != 30 {
		t.Errorf("conversation = %+v", cfg.Conversation)
	}
	if cfg.Server.Port != ":9001" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost/leads
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(cfg.Discovery.Subreddits) == 0 {
		t.Error("expected default subreddits")
	}
	if len(cfg.Discovery.Keywords) == 0 {
		t.Error("expected default keywords")
	}
	if cfg.Discovery.PostLimit != 10 {
		t.Errorf("post limit = %d, want 10", cfg.Discovery.PostLimit)
	}
	if cfg.Discovery.LeadScore != 95 {
		t.Errorf("lead score = %v, want 95", cfg.Discovery.LeadScore)
	}
	if cfg.Discovery.IntervalSeconds != 300 {
		t.Errorf("discovery interval = %d, want 300", cfg.Discovery.IntervalSeconds)
	}
	if cfg.Conversation.IntervalSeconds != 60 {
		t.Errorf("conversation interval = %d, want 60", cfg.Conversation.IntervalSeconds)
	}
	if cfg.Server.Port != ":8000" {
		t.Errorf("port = %q, want :8000", cfg.Server.Port)
	}
}

func TestLoadConfig_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_DB_URL", "postgres://env-host/leads")
	t.Setenv("TEST_REDDIT_SECRET", "s3cret")

	path := writeConfig(t, `
database:
  url: ${TEST_DB_URL}
reddit:
  client_id: abc
  client_secret: ${TEST_REDDIT_SECRET}
  refresh_token: ghi
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Database.URL != "postgres://env-host/leads" {
		t.Errorf("database url = %q, env not expanded", cfg.Database.URL)
	}
	if cfg.Reddit.ClientSecret != "s3cret" {
		t.Errorf("client secret = %q, env not expanded", cfg.Reddit.ClientSecret)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "database: [not: a: mapping")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}
