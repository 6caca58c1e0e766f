package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for the gov.uk travel advice backup.
const (
	DefaultGitRemote    = "git@github.com:fcobackup/fco-backup.git"
	DefaultBranch       = "master"
	DefaultIndexURL     = "https://www.gov.uk/foreign-travel-advice"
	DefaultFeedURL      = "https://www.gov.uk/foreign-travel-advice.atom"
	DefaultAuthorName   = "FCO Backup"
	DefaultAuthorEmail  = "ukfcobackup@gmail.com"
	DefaultPollInterval = 5 * time.Minute
	DefaultPageDelay    = time.Second
)

// Duration wraps time.Duration so YAML values like "5m" parse naturally.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MirrorConfig configures the optional S3 snapshot mirror.
// The mirror is disabled when Bucket is empty.
type MirrorConfig struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
}

// Config holds runtime configuration for the fetcher
type Config struct {
	GitRemote    string        `yaml:"git_remote"`
	Branch       string        `yaml:"branch"`
	IndexURL     string        `yaml:"index_url"`
	FeedURL      string        `yaml:"feed_url"`
	AuthorName   string        `yaml:"author_name"`
	AuthorEmail  string        `yaml:"author_email"`
	PollInterval Duration      `yaml:"poll_interval"`
	PageDelay    Duration      `yaml:"page_delay"`
	HistoryDB    string        `yaml:"history_db"`
	LogLevel     string        `yaml:"log_level"`
	LogFile      string        `yaml:"log_file"`
	Mirror       MirrorConfig  `yaml:"mirror"`
}

// Default returns a Config populated with the stock gov.uk values
func Default() *Config {
	return &Config{
		GitRemote:    DefaultGitRemote,
		Branch:       DefaultBranch,
		IndexURL:     DefaultIndexURL,
		FeedURL:      DefaultFeedURL,
		AuthorName:   DefaultAuthorName,
		AuthorEmail:  DefaultAuthorEmail,
		PollInterval: Duration(DefaultPollInterval),
		PageDelay:    Duration(DefaultPageDelay),
		LogLevel:     "info",
	}
}

// Load reads configuration from path, falling back to defaults for anything
// unset. A missing file is not an error; environment variables override the
// file in all cases.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = Duration(DefaultPollInterval)
	}
	if cfg.PageDelay < 0 {
		cfg.PageDelay = 0
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	setIfEnv := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setIfEnv(&c.GitRemote, "FCOBACKUP_GIT_REMOTE")
	setIfEnv(&c.Branch, "FCOBACKUP_BRANCH")
	setIfEnv(&c.IndexURL, "FCOBACKUP_INDEX_URL")
	setIfEnv(&c.FeedURL, "FCOBACKUP_FEED_URL")
	setIfEnv(&c.AuthorName, "FCOBACKUP_AUTHOR_NAME")
	setIfEnv(&c.AuthorEmail, "FCOBACKUP_AUTHOR_EMAIL")
	setIfEnv(&c.HistoryDB, "FCOBACKUP_HISTORY_DB")
	setIfEnv(&c.LogLevel, "FCOBACKUP_LOG_LEVEL")
	setIfEnv(&c.LogFile, "FCOBACKUP_LOG_FILE")
	setIfEnv(&c.Mirror.Bucket, "FCOBACKUP_MIRROR_BUCKET")
	setIfEnv(&c.Mirror.Prefix, "FCOBACKUP_MIRROR_PREFIX")
	setIfEnv(&c.Mirror.Region, "FCOBACKUP_MIRROR_REGION")

	if v := os.Getenv("FCOBACKUP_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.PollInterval = Duration(d)
		}
	}
	if v := os.Getenv("FCOBACKUP_PAGE_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.PageDelay = Duration(d)
		}
	}
}
