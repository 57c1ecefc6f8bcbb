package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Reddit struct {
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
		RefreshToken string `yaml:"refresh_token"`
		Username     string `yaml:"username"`
	} `yaml:"reddit"`
	Discovery struct {
		Subreddits      []string `yaml:"subreddits"`
		Keywords        []string `yaml:"keywords"`
		PostLimit       int      `yaml:"post_limit"`
		LeadScore       float64  `yaml:"lead_score"`
		IntervalSeconds int64    `yaml:"interval_seconds"`
	} `yaml:"discovery"`
	Conversation struct {
		AutoReplyEnabled bool   `yaml:"auto_reply_enabled"`
		ReplySubject     string `yaml:"reply_subject"`
		ReplyBody        string `yaml:"reply_body"`
		IntervalSeconds  int64  `yaml:"interval_seconds"`
	} `yaml:"conversation"`
	Sinks struct {
		BackendURL     string `yaml:"backend_url"`
		WebhookURL     string `yaml:"webhook_url"`
		TelegramToken  string `yaml:"telegram_token"`
		TelegramChatID int64  `yaml:"telegram_chat_id"`
	} `yaml:"sinks"`
	Server struct {
		Port          string `yaml:"port"`
		JWTSecret     string `yaml:"jwt_secret"`
		AdminUsername string `yaml:"admin_username"`
		AdminPassword string `yaml:"admin_password"`
	} `yaml:"server"`
}

// Defaults restored when the config file leaves them out.
var (
	defaultSubreddits = []string{
		"sales",
		"freelance_sales",
		"sidehustle",
		"remotejobs",
		"forhire",
		"workfromhome",
	}
	defaultKeywords = []string{
		"commission",
		"sales rep",
		"remote work",
		"freelance",
		"side hustle",
		"earn money",
		"work from home",
		"closer",
		"appointment setter",
	}
)

// LoadConfig reads configuration from the specified YAML file. Values may
// reference environment variables as ${VAR}; they are expanded after parsing.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.expandEnv()
	config.applyDefaults()

	return config, nil
}

func (c *Config) expandEnv() {
	c.Database.URL = os.ExpandEnv(c.Database.URL)
	c.Reddit.ClientID = os.ExpandEnv(c.Reddit.ClientID)
	c.Reddit.ClientSecret = os.ExpandEnv(c.Reddit.ClientSecret)
	c.Reddit.RefreshToken = os.ExpandEnv(c.Reddit.RefreshToken)
	c.Reddit.Username = os.ExpandEnv(c.Reddit.Username)
	c.Sinks.BackendURL = os.ExpandEnv(c.Sinks.BackendURL)
	c.Sinks.WebhookURL = os.ExpandEnv(c.Sinks.WebhookURL)
	c.Sinks.TelegramToken = os.ExpandEnv(c.Sinks.TelegramToken)
	c.Server.JWTSecret = os.ExpandEnv(c.Server.JWTSecret)
	c.Server.AdminPassword = os.ExpandEnv(c.Server.AdminPassword)
}

func (c *Config) applyDefaults() {
	if len(c.Discovery.Subreddits) == 0 {
		c.Discovery.Subreddits = append([]string(nil), defaultSubreddits...)
	}
	if len(c.Discovery.Keywords) == 0 {
		c.Discovery.Keywords = append([]string(nil), defaultKeywords...)
	}
	if c.Discovery.PostLimit <= 0 {
		c.Discovery.PostLimit = 10
	}
	if c.Discovery.LeadScore == 0 {
		c.Discovery.LeadScore = 95
	}
	if c.Discovery.IntervalSeconds <= 0 {
		c.Discovery.IntervalSeconds = 300
	}
	if c.Conversation.IntervalSeconds <= 0 {
		c.Conversation.IntervalSeconds = 60
	}
	if c.Server.Port == "" {
		c.Server.Port = ":8000"
	}
}
