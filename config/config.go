// Package config provides configuration structures for campaign runs
package config

import (
	"fmt"
	"time"
)

// CampaignConfig holds configuration for one campaign scrape-and-match run
type CampaignConfig struct {
	// Input files
	AccountsFile string `yaml:"accounts_file" json:"accounts_file"` // Account list, one handle or profile URL per line
	TargetsFile  string `yaml:"targets_file" json:"targets_file"`   // Target-sound list CSV (sound URL, song, artist)

	// Collection configuration
	StartDate        time.Time     `yaml:"start_date" json:"start_date"`                 // Drop videos uploaded before this date (zero = no bound)
	MaxVideos        int           `yaml:"max_videos" json:"max_videos"`                 // Max videos listed per account
	AccountTimeout   time.Duration `yaml:"account_timeout" json:"account_timeout"`       // Hard timeout for one account's listing call
	AccountWorkers   int           `yaml:"account_workers" json:"account_workers"`       // Accounts processed concurrently
	ExtractWorkers   int           `yaml:"extract_workers" json:"extract_workers"`       // Parallel workers for sound-ID extraction
	ExtractTimeout   time.Duration `yaml:"extract_timeout" json:"extract_timeout"`       // Per-video page fetch timeout
	RetryAttempts    int           `yaml:"retry_attempts" json:"retry_attempts"`         // Retry ceiling for transient source errors
	RetryBaseDelay   time.Duration `yaml:"retry_base_delay" json:"retry_base_delay"`     // Initial backoff delay
	RetryMaxDelay    time.Duration `yaml:"retry_max_delay" json:"retry_max_delay"`       // Backoff delay cap
	UserAgent        string        `yaml:"user_agent" json:"user_agent"`                 // User agent for source requests

	// Matching configuration
	FuzzyThreshold float64 `yaml:"fuzzy_threshold" json:"fuzzy_threshold"` // Minimum normalized title similarity for strategy 4

	// Storage configuration
	CacheDir   string `yaml:"cache_dir" json:"cache_dir"`     // Per-account cache snapshot directory
	OutputFile string `yaml:"output_file" json:"output_file"` // Matched-video CSV report path
	SnapshotDB string `yaml:"snapshot_db" json:"snapshot_db"` // Optional SQLite run-snapshot path (empty = disabled)

	RunID string `yaml:"run_id" json:"run_id"` // Unique identifier for this run
}

// DefaultCampaignConfig returns a configuration with sensible defaults
func DefaultCampaignConfig() *CampaignConfig {
	return &CampaignConfig{
		MaxVideos:      500,
		AccountTimeout: 10 * time.Minute,
		AccountWorkers: 4,
		ExtractWorkers: 10,
		ExtractTimeout: 30 * time.Second,
		RetryAttempts:  3,
		RetryBaseDelay: 2 * time.Second,
		RetryMaxDelay:  10 * time.Second,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		FuzzyThreshold: 0.8,
		CacheDir:       "cache",
		OutputFile:     "output/matched_videos.csv",
	}
}

// Validate checks if the configuration is valid
func (c *CampaignConfig) Validate() error {
	if c.AccountsFile == "" {
		return fmt.Errorf("accounts_file cannot be empty")
	}

	if c.TargetsFile == "" {
		return fmt.Errorf("targets_file cannot be empty")
	}

	if c.MaxVideos < 1 {
		return fmt.Errorf("max_videos must be at least 1")
	}

	if c.AccountWorkers < 1 {
		return fmt.Errorf("account_workers must be at least 1")
	}

	if c.ExtractWorkers < 1 {
		return fmt.Errorf("extract_workers must be at least 1")
	}

	if c.RetryAttempts < 0 {
		return fmt.Errorf("retry_attempts cannot be negative")
	}

	if c.AccountTimeout <= 0 {
		return fmt.Errorf("account_timeout must be positive")
	}

	if c.ExtractTimeout <= 0 {
		return fmt.Errorf("extract_timeout must be positive")
	}

	if c.FuzzyThreshold <= 0 || c.FuzzyThreshold > 1 {
		return fmt.Errorf("fuzzy_threshold must be in (0, 1]")
	}

	if c.CacheDir == "" {
		return fmt.Errorf("cache_dir cannot be empty")
	}

	return nil
}
