// Package runner orchestrates the campaign pipeline: collect, extract,
// validate and match per account, then aggregate across accounts.
package runner

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/trackwatch/campaign-scraper/client"
	"github.com/trackwatch/campaign-scraper/collector"
	"github.com/trackwatch/campaign-scraper/config"
	"github.com/trackwatch/campaign-scraper/extractor"
	"github.com/trackwatch/campaign-scraper/matcher"
	"github.com/trackwatch/campaign-scraper/model"
	"github.com/trackwatch/campaign-scraper/validator"
)

// Runner drives one campaign run. Accounts are processed concurrently up to
// the configured worker count; within one account the stages stay strictly
// sequential, because matching needs the extractor's output in its final
// state.
type Runner struct {
	cfg       *config.CampaignConfig
	collector *collector.Collector
	extractor *extractor.Extractor
	matcher   *matcher.Matcher
}

// New wires a runner from its stages.
func New(cfg *config.CampaignConfig, c *collector.Collector, e *extractor.Extractor, m *matcher.Matcher) *Runner {
	return &Runner{cfg: cfg, collector: c, extractor: e, matcher: m}
}

type accountStats struct {
	scanned     int
	unresolved  int
	quarantined int
}

// Run processes every account and aggregates the match results. A single
// account's failure is recorded in the summary and never aborts the run;
// cancelling the context stops new accounts from being started. The matched
// set is sorted deterministically regardless of account completion order.
func (r *Runner) Run(ctx context.Context, handles []string) *model.CampaignResult {
	start := time.Now()
	summary := model.RunSummary{
		RunID:             r.cfg.RunID,
		AccountsAttempted: len(handles),
		StartedAt:         start.UTC(),
	}

	log.Info().
		Str("run_id", r.cfg.RunID).
		Int("accounts", len(handles)).
		Int("targets", len(r.matcher.Targets())).
		Int("account_workers", r.cfg.AccountWorkers).
		Msg("Starting campaign run")

	var (
		mu      sync.Mutex
		matches []model.MatchResult
	)

	var g errgroup.Group
	g.SetLimit(r.cfg.AccountWorkers)

	for _, handle := range handles {
		if ctx.Err() != nil {
			mu.Lock()
			summary.AccountsFailed++
			summary.FailedAccounts = append(summary.FailedAccounts, model.AccountFailure{
				Handle: handle,
				Reason: "cancelled",
			})
			mu.Unlock()
			continue
		}
		g.Go(func() error {
			stats, accMatches, err := r.processAccount(ctx, handle)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.AccountsFailed++
				summary.FailedAccounts = append(summary.FailedAccounts, model.AccountFailure{
					Handle: handle,
					Reason: client.FailureReason(err),
				})
				log.Error().Err(err).Str("handle", handle).Msg("Account failed, continuing with the rest")
				return nil
			}
			summary.AccountsSucceeded++
			summary.VideosScanned += stats.scanned
			summary.VideosUnresolved += stats.unresolved
			summary.VideosQuarantined += stats.quarantined
			summary.VideosMatched += len(accMatches)
			matches = append(matches, accMatches...)
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Video.AccountHandle != matches[j].Video.AccountHandle {
			return matches[i].Video.AccountHandle < matches[j].Video.AccountHandle
		}
		return matches[i].Video.ID < matches[j].Video.ID
	})
	sort.Slice(summary.FailedAccounts, func(i, j int) bool {
		return summary.FailedAccounts[i].Handle < summary.FailedAccounts[j].Handle
	})

	summary.Duration = time.Since(start)

	log.Info().
		Str("run_id", summary.RunID).
		Int("attempted", summary.AccountsAttempted).
		Int("succeeded", summary.AccountsSucceeded).
		Int("failed", summary.AccountsFailed).
		Int("scanned", summary.VideosScanned).
		Int("matched", summary.VideosMatched).
		Int("unresolved", summary.VideosUnresolved).
		Int("quarantined", summary.VideosQuarantined).
		Dur("duration", summary.Duration).
		Msg("Campaign run complete")

	return &model.CampaignResult{Summary: summary, Matches: matches}
}

// processAccount runs the sequential per-account pipeline. The collector's
// batch is fully materialized before extraction starts, and extraction joins
// completely before validation and matching.
func (r *Runner) processAccount(ctx context.Context, handle string) (accountStats, []model.MatchResult, error) {
	delta, err := r.collector.Collect(ctx, handle, collector.Options{
		StartDate: r.cfg.StartDate,
		Limit:     r.cfg.MaxVideos,
		Timeout:   r.cfg.AccountTimeout,
	}, r.cfg.RunID)
	if err != nil {
		return accountStats{}, nil, err
	}

	enriched := r.extractor.Enrich(ctx, delta.Videos)
	outcome := validator.Validate(enriched.Videos)

	var matches []model.MatchResult
	for _, v := range outcome.Valid {
		if res, ok := r.matcher.Match(v); ok {
			matches = append(matches, res)
		}
	}

	return accountStats{
		scanned:     len(delta.Videos),
		unresolved:  enriched.Unresolved,
		quarantined: outcome.Quarantined,
	}, matches, nil
}
