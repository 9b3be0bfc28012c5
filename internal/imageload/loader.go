// Package imageload loads catalog images through an ordered fallback chain
// and tracks the per-view load state.
package imageload

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"decor-gallery/internal/domain/gallery"
	"decor-gallery/internal/imagepath"
	"decor-gallery/internal/observability"
)

// DefaultPlaceholder is shown when every candidate fails
const DefaultPlaceholder = "/images/placeholder.svg"

// preloadConcurrency bounds the chains Preload runs at once
const preloadConcurrency = 8

// Options configures a Loader
type Options struct {
	Cache       gallery.ProbeCache
	CacheTTL    time.Duration
	Placeholder string
	Logger      *observability.Logger
	Metrics     *observability.GalleryMetrics
}

// Result is the outcome of one fallback-chain load
type Result struct {
	Src        string   `json:"src"`
	Loaded     bool     `json:"loaded"`
	HasError   bool     `json:"has_error"`
	Cancelled  bool     `json:"cancelled,omitempty"`
	Cached     bool     `json:"cached,omitempty"`
	Attempts   int      `json:"attempts"`
	Candidates []string `json:"candidates,omitempty"`
	Err        error    `json:"-"`
}

// Loader tries the candidates of a raw source one at a time until one loads
type Loader struct {
	resolver    *imagepath.Resolver
	prober      gallery.Prober
	cache       gallery.ProbeCache
	cacheTTL    time.Duration
	placeholder string
	logger      *observability.Logger
	metrics     *observability.GalleryMetrics
}

// NewLoader creates a loader resolving sources with resolver and loading them
// with prober
func NewLoader(resolver *imagepath.Resolver, prober gallery.Prober, opts Options) *Loader {
	if opts.Placeholder == "" {
		opts.Placeholder = DefaultPlaceholder
	}
	if opts.Logger == nil {
		opts.Logger = observability.NewNopLogger()
	}

	return &Loader{
		resolver:    resolver,
		prober:      prober,
		cache:       opts.Cache,
		cacheTTL:    opts.CacheTTL,
		placeholder: opts.Placeholder,
		logger:      opts.Logger.Component("imageload"),
		metrics:     opts.Metrics,
	}
}

// Resolver returns the resolver used by Load
func (l *Loader) Resolver() *imagepath.Resolver {
	return l.resolver
}

// Placeholder returns the fallback image source
func (l *Loader) Placeholder() string {
	return l.placeholder
}

// Load runs the fallback chain for raw with the loader's own resolver
func (l *Loader) Load(ctx context.Context, raw string) Result {
	return l.LoadFrom(ctx, l.resolver, raw)
}

// LoadFrom runs the fallback chain for raw using r to build the candidates.
// Candidates are probed strictly in order; a candidate is only tried after the
// previous one failed. ctx is checked before every probe and before the
// winner is committed. An empty raw source yields a zero Result.
func (l *Loader) LoadFrom(ctx context.Context, r *imagepath.Resolver, raw string) Result {
	if raw == "" {
		return Result{}
	}

	candidates := r.Candidates(raw)
	result := Result{Candidates: candidates}
	key := cacheKey(r, raw)

	if winner, ok := l.cachedWinner(ctx, key, candidates); ok {
		if err := ctx.Err(); err != nil {
			return l.cancelled(ctx, result, err)
		}
		result.Src = winner
		result.Loaded = true
		result.Cached = true
		l.metrics.RecordImageLoad(ctx, observability.OutcomeCached, 0)
		return result
	}

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return l.cancelled(ctx, result, err)
		}

		result.Attempts++
		probeErr := l.prober.Probe(ctx, candidate)

		if err := ctx.Err(); err != nil {
			return l.cancelled(ctx, result, err)
		}

		if probeErr != nil {
			l.logger.Debug(ctx).
				Err(probeErr).
				Str("candidate", candidate).
				Int("attempt", result.Attempts).
				Msg("Image candidate failed")
			continue
		}

		result.Src = candidate
		result.Loaded = true
		l.remember(ctx, key, candidate)
		l.metrics.RecordImageLoad(ctx, observability.OutcomeLoaded, result.Attempts)
		return result
	}

	l.logger.Warn(ctx).
		Str("src", raw).
		Strs("candidates", candidates).
		Msg("All image candidates failed, using placeholder")

	result.Src = l.placeholder
	result.HasError = true
	result.Err = fmt.Errorf("%w: %s", gallery.ErrImageUnavailable, raw)
	l.metrics.RecordImageLoad(ctx, observability.OutcomeFailed, result.Attempts)
	return result
}

// Preload runs the fallback chain of every source concurrently and waits
// for all of them to settle. Each chain is still probed in order; winners
// land in the probe cache so later loads are served from it. Results are in
// the order of raws.
func (l *Loader) Preload(ctx context.Context, raws []string) []Result {
	results := make([]Result, len(raws))

	var g errgroup.Group
	g.SetLimit(preloadConcurrency)
	for i, raw := range raws {
		g.Go(func() error {
			results[i] = l.Load(ctx, raw)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // chains never fail, outcomes are in results

	return results
}

func (l *Loader) cancelled(ctx context.Context, result Result, err error) Result {
	result.Cancelled = true
	result.Err = err
	l.metrics.RecordImageLoad(context.WithoutCancel(ctx), observability.OutcomeCancelled, result.Attempts)
	return result
}

func (l *Loader) cachedWinner(ctx context.Context, key string, candidates []string) (string, bool) {
	if l.cache == nil {
		return "", false
	}

	winner, err := l.cache.GetWinner(ctx, key)
	if err != nil || winner == "" {
		return "", false
	}

	// a winner from another resolver context is not trusted
	if !slices.Contains(candidates, winner) {
		return "", false
	}
	return winner, true
}

func (l *Loader) remember(ctx context.Context, key, winner string) {
	if l.cache == nil {
		return
	}

	if err := l.cache.SetWinner(ctx, key, winner, l.cacheTTL); err != nil {
		l.logger.Warn(ctx).Err(err).Str("winner", winner).Msg("Failed to cache image winner")
	}
}

// cacheKey scopes a raw source to the resolver context that produced its
// candidates
func cacheKey(r *imagepath.Resolver, raw string) string {
	return r.BasePath() + "|" + strconv.FormatBool(r.FileContext()) + "|" + raw
}
