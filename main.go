package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/trackwatch/campaign-scraper/campaign"
	"github.com/trackwatch/campaign-scraper/client"
	"github.com/trackwatch/campaign-scraper/collector"
	"github.com/trackwatch/campaign-scraper/common"
	"github.com/trackwatch/campaign-scraper/config"
	"github.com/trackwatch/campaign-scraper/extractor"
	"github.com/trackwatch/campaign-scraper/matcher"
	"github.com/trackwatch/campaign-scraper/report"
	"github.com/trackwatch/campaign-scraper/runner"
	"github.com/trackwatch/campaign-scraper/state"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("Campaign run failed")
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaign-scraper",
		Short: "Scrape campaign accounts and match their videos against target sounds",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig()
			if err != nil {
				return err
			}
			return runCampaign(cfg)
		},
		SilenceUsage: true,
	}

	flags := cmd.Flags()
	flags.String("accounts", "", "Path to account list, one handle or profile URL per line")
	flags.String("targets", "", "Path to target-sound CSV")
	flags.String("start-date", "", "Ignore videos uploaded before this date (YYYY-MM-DD)")
	flags.Int("limit", 500, "Maximum videos listed per account")
	flags.Int("account-workers", 4, "Accounts processed concurrently")
	flags.Int("extract-workers", 10, "Parallel workers for sound-ID extraction")
	flags.Duration("account-timeout", 10*time.Minute, "Hard timeout per account listing")
	flags.Duration("extract-timeout", 30*time.Second, "Per-video page fetch timeout")
	flags.Int("retry-attempts", 3, "Retry ceiling for transient source errors")
	flags.Float64("threshold", 0.8, "Minimum title similarity for fuzzy matching")
	flags.String("cache-dir", "cache", "Per-account cache snapshot directory")
	flags.String("output", "output/matched_videos.csv", "Matched-video CSV report path")
	flags.String("snapshot-db", "", "Optional SQLite run-snapshot path")

	viper.SetEnvPrefix("CAMPAIGN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlags(flags); err != nil {
		log.Fatal().Err(err).Msg("Failed to bind flags")
	}

	return cmd
}

func buildConfig() (*config.CampaignConfig, error) {
	cfg := config.DefaultCampaignConfig()
	cfg.AccountsFile = viper.GetString("accounts")
	cfg.TargetsFile = viper.GetString("targets")
	cfg.MaxVideos = viper.GetInt("limit")
	cfg.AccountWorkers = viper.GetInt("account-workers")
	cfg.ExtractWorkers = viper.GetInt("extract-workers")
	cfg.AccountTimeout = viper.GetDuration("account-timeout")
	cfg.ExtractTimeout = viper.GetDuration("extract-timeout")
	cfg.RetryAttempts = viper.GetInt("retry-attempts")
	cfg.FuzzyThreshold = viper.GetFloat64("threshold")
	cfg.CacheDir = viper.GetString("cache-dir")
	cfg.OutputFile = viper.GetString("output")
	cfg.SnapshotDB = viper.GetString("snapshot-db")
	cfg.RunID = common.GenerateRunID()

	if raw := viper.GetString("start-date"); raw != "" {
		start, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("invalid start-date %q: %w", raw, err)
		}
		cfg.StartDate = start
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runCampaign(cfg *config.CampaignConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handles, err := campaign.LoadAccounts(cfg.AccountsFile)
	if err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}
	targets, err := campaign.LoadTargets(cfg.TargetsFile)
	if err != nil {
		return fmt.Errorf("load targets: %w", err)
	}
	log.Info().Int("accounts", len(handles)).Int("targets", len(targets)).Msg("Loaded campaign inputs")

	source := client.NewTikTokClient(cfg.ExtractTimeout, cfg.UserAgent)
	cache, err := state.NewFileStore(cfg.CacheDir, source.Platform())
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}

	retry := common.RetryPolicy{
		MaxAttempts: cfg.RetryAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
		MaxDelay:    cfg.RetryMaxDelay,
		Multiplier:  2,
	}

	r := runner.New(cfg,
		collector.New(source, cache, retry),
		extractor.New(source, retry, cfg.ExtractWorkers, cfg.ExtractTimeout),
		matcher.New(targets, cfg.FuzzyThreshold),
	)

	result := r.Run(ctx, handles)

	if err := report.WriteCSV(cfg.OutputFile, result); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	for _, s := range report.AggregateBySound(result.Matches) {
		log.Info().
			Str("soundId", s.Target.SoundID).
			Str("song", s.Target.Song).
			Int("uses", s.Uses).
			Int64("views", s.TotalViews).
			Float64("avgEngagement", s.AvgEngagementRate).
			Msg("Sound usage")
	}

	if cfg.SnapshotDB != "" {
		store, err := report.OpenSnapshotStore(cfg.SnapshotDB)
		if err != nil {
			return fmt.Errorf("open snapshot db: %w", err)
		}
		defer store.Close()
		if _, err := store.SaveRun(ctx, result); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
	}

	return nil
}
