package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/turnoutpaths/pkg/cache"
	apperrors "github.com/matzehuels/turnoutpaths/pkg/errors"
	"github.com/matzehuels/turnoutpaths/pkg/geom"
	"github.com/matzehuels/turnoutpaths/pkg/observability"
	"github.com/matzehuels/turnoutpaths/pkg/paths"
	"github.com/matzehuels/turnoutpaths/pkg/turnout"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// cachedTable is the cache entry of a generated table.
type cachedTable struct {
	Table     paths.Table `json:"table"`
	SubPaths  int         `json:"subpaths"`
	Groups    int         `json:"groups"`
	Bumpers   int         `json:"bumpers"`
	Truncated bool        `json:"truncated,omitempty"`
}

// GeometryHash identifies a definition's geometry in the turnout's local
// frame. Title, flags and the saved table do not contribute.
func GeometryHash(def turnout.Definition) (string, error) {
	in := def.Input()
	return cache.HashJSON(struct {
		Segments  []geom.Segment  `json:"segments"`
		Endpoints []geom.Endpoint `json:"endpoints"`
	}{in.Segments, in.Endpoints})
}

// Generate produces the Path Table of one definition.
//
// Generation is skipped when opts.DisableGeneration or the definition's
// PathOverride is set; the saved table (or the empty table) is used. Otherwise
// the table comes from the cache or the engine and is checked against the
// saved table when the definition has one. Only invalid definitions and
// unencodable tables are errors; cache failures are logged and ignored.
func (r *Runner) Generate(ctx context.Context, def turnout.Definition, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()
	if err := def.Validate(); err != nil {
		return nil, err
	}

	hooks := observability.Generation()
	hooks.OnGenerateStart(ctx, def.Title, len(def.Segments))
	start := time.Now()
	res := &Result{Title: def.Title, Source: def.Source}

	if opts.DisableGeneration || def.PathOverride {
		res.Table = paths.Table{}
		if def.Paths != nil {
			res.Table = def.Paths.Clone()
		}
		res.Stats.FromSaved = true
	} else {
		fresh := r.table(ctx, def, opts, res)
		tbl, check := turnout.Reconcile(def, def.Paths, fresh, opts.PreferSavedTable, opts.Logger)
		res.Table = tbl.Clone()
		res.Comparison = check
		if check != nil {
			hooks.OnCompare(ctx, def.Title, check.Match)
			res.Stats.FromSaved = opts.PreferSavedTable
		}
	}

	enc, err := res.Table.Encode()
	res.Stats.Duration = time.Since(start)
	stats := observability.GenerationStats{
		SubPaths:  res.Stats.SubPaths,
		Groups:    res.Stats.Groups,
		Bumpers:   res.Stats.Bumpers,
		Truncated: res.Stats.Truncated,
		Cached:    res.Stats.CacheHit,
	}
	if err != nil {
		err = apperrors.Wrap(apperrors.ErrCodeInvalidTable, err, "encode paths of %s (%s)", def.Title, def.Source)
		hooks.OnGenerateComplete(ctx, def.Title, stats, res.Stats.Duration, err)
		return nil, err
	}
	res.Encoded = enc
	hooks.OnGenerateComplete(ctx, def.Title, stats, res.Stats.Duration, nil)

	opts.Logger.Debug("paths ready",
		"turnout", def.Title,
		"groups", len(res.Table.Groups),
		"cached", res.Stats.CacheHit,
		"saved", res.Stats.FromSaved,
		"duration", res.Stats.Duration)
	return res, nil
}

// table returns the generated table, from the cache when possible.
func (r *Runner) table(ctx context.Context, def turnout.Definition, opts Options, res *Result) paths.Table {
	key := ""
	if hash, err := GeometryHash(def); err == nil {
		key = r.Keyer.TableKey(hash, opts.TableKeyOpts(def))
	} else {
		opts.Logger.Warn("hash geometry", "turnout", def.Title, "error", err)
	}

	if key != "" && !opts.Refresh {
		var ct cachedTable
		err := cache.GetJSON(ctx, r.Cache, "table", key, &ct)
		if err == nil {
			res.Stats.CacheHit = true
			res.Stats.SubPaths, res.Stats.Groups, res.Stats.Bumpers = ct.SubPaths, ct.Groups, ct.Bumpers
			res.Stats.Truncated = ct.Truncated
			return ct.Table
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			opts.Logger.Warn("cache read failed", "turnout", def.Title, "error", err)
		}
	}

	gen := paths.Generate(def.Input(), opts.Engine(def))
	res.Generation = gen
	res.Stats.SubPaths, res.Stats.Groups, res.Stats.Bumpers = len(gen.SubPaths), len(gen.Groups), gen.Bumpers
	res.Stats.Truncated = gen.Truncated

	if key != "" {
		ct := cachedTable{
			Table:     gen.Table,
			SubPaths:  len(gen.SubPaths),
			Groups:    len(gen.Groups),
			Bumpers:   gen.Bumpers,
			Truncated: gen.Truncated,
		}
		if err := cache.SetJSON(ctx, r.Cache, "table", key, ct, opts.TTL); err != nil {
			opts.Logger.Warn("cache write failed", "turnout", def.Title, "error", err)
		}
	}
	return gen.Table
}

// GenerateAll generates every definition, running up to opts.Concurrency at
// once. Results are in the order of defs. The first error cancels the
// remaining work.
func (r *Runner) GenerateAll(ctx context.Context, defs []turnout.Definition, opts Options) ([]*Result, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()

	results := make([]*Result, len(defs))
	var finished atomic.Int32
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, def := range defs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.Generate(ctx, def, opts)
			if err != nil {
				return err
			}
			results[i] = res
			if opts.OnProgress != nil {
				opts.OnProgress(int(finished.Add(1)), len(defs))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := Summarize(results)
	r.Logger.Info("generated library",
		"turnouts", s.Turnouts,
		"generated", s.Generated,
		"cached", s.Cached,
		"saved", s.Saved,
		"mismatches", len(s.Mismatches))
	return results, nil
}

// Compare generates def and checks it against its saved table. It fails
// when the definition has no saved table.
func (r *Runner) Compare(ctx context.Context, def turnout.Definition, opts Options) (*Result, error) {
	if def.Paths == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "turnout %q has no saved paths to compare", def.Title)
	}
	opts.DisableGeneration = false
	def.PathOverride = false
	return r.Generate(ctx, def, opts)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
