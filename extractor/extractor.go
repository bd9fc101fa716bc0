// Package extractor resolves authoritative sound identifiers by fetching
// each video's detail page with bounded parallelism.
package extractor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/trackwatch/campaign-scraper/client"
	"github.com/trackwatch/campaign-scraper/common"
	"github.com/trackwatch/campaign-scraper/model"
)

// Result is the outcome of one batch enrichment. Videos holds every input
// record, in input order, with extracted identifiers filled in where
// resolution succeeded. The batch is complete when Enrich returns: every
// video either resolved, exhausted its retries, or hit its timeout.
type Result struct {
	Videos     []model.Video
	Resolved   int
	Unresolved int
}

// Extractor runs per-video page fetches over a fixed-size worker pool. The
// page fetch dominates campaign latency, so this is the one stage fanned out
// aggressively; the pool bound keeps the source from rate-limiting us into
// the ground.
type Extractor struct {
	source         client.Client
	retry          common.RetryPolicy
	workers        int
	perCallTimeout time.Duration
}

// New wires an extractor. Workers below 1 are clamped to 1.
func New(source client.Client, retry common.RetryPolicy, workers int, perCallTimeout time.Duration) *Extractor {
	if workers < 1 {
		workers = 1
	}
	return &Extractor{
		source:         source,
		retry:          retry,
		workers:        workers,
		perCallTimeout: perCallTimeout,
	}
}

// Enrich fetches the detail page of every video in the batch and writes the
// extracted sound identifier back onto the record. A video whose fetch fails
// after the retry ceiling stays in the result without an identifier; it is
// counted unresolved, not dropped, so the lower-priority matching strategies
// still get a shot at it. Cancelling the context stops new fetches from
// being issued and fails the in-flight ones.
func (e *Extractor) Enrich(ctx context.Context, videos []model.Video) Result {
	out := make([]model.Video, len(videos))
	copy(out, videos)

	var (
		mu         sync.Mutex
		resolved   int
		unresolved int
	)

	var g errgroup.Group
	g.SetLimit(e.workers)

	for i := range out {
		if ctx.Err() != nil {
			mu.Lock()
			unresolved += len(out) - i
			mu.Unlock()
			break
		}
		g.Go(func() error {
			page, err := e.fetchWithRetry(ctx, out[i].URL)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				unresolved++
				log.Warn().Err(err).Str("url", out[i].URL).Msg("Sound extraction failed, leaving unresolved")
				return nil
			}
			out[i].ExtractedSoundID = page.SoundID
			out[i].ExtractedTitle = page.SongTitle
			if page.SoundID != "" {
				resolved++
			} else {
				unresolved++
			}
			return nil
		})
	}

	_ = g.Wait()

	log.Info().
		Int("total", len(out)).
		Int("resolved", resolved).
		Int("unresolved", unresolved).
		Msg("Sound extraction batch complete")

	return Result{Videos: out, Resolved: resolved, Unresolved: unresolved}
}

// fetchWithRetry gives each attempt its own timeout, distinct from the
// batch-level deadline carried by ctx.
func (e *Extractor) fetchWithRetry(ctx context.Context, videoURL string) (client.VideoPage, error) {
	var page client.VideoPage
	err := e.retry.Do(ctx, func(ctx context.Context) error {
		callCtx := ctx
		if e.perCallTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, e.perCallTimeout)
			defer cancel()
		}
		var ferr error
		page, ferr = e.source.FetchVideoPage(callCtx, videoURL)
		return ferr
	}, client.IsTransient)
	return page, err
}
