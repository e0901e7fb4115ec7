// Package pipeline runs path generation for turnout definitions with
// caching, saved-table checks and diagram output.
//
// This package is the single place where the CLI and the HTTP API turn a
// definition into a Path Table, so both report mismatches, hit the cache
// and emit observability events the same way.
//
// # Stages
//
//  1. Generate: look up the table by geometry hash and options, otherwise
//     run the engine and store the result
//  2. Check: compare against the definition's saved table, if any
//  3. Render (optional): draw the track graph with one group highlighted
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Generate(ctx, def, pipeline.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	buf := res.Encoded
//
// A whole library is generated with [Runner.GenerateAll], which works on
// several turnouts at once and returns results in library order.
package pipeline

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/turnoutpaths/pkg/cache"
	"github.com/matzehuels/turnoutpaths/pkg/paths"
	"github.com/matzehuels/turnoutpaths/pkg/turnout"
)

// DefaultTTL is how long generated tables stay in the cache.
const DefaultTTL = 30 * 24 * time.Hour

// Output formats for [Runner.Render].
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// ValidFormats is the set of supported diagram formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
}

// ValidateFormat checks that a diagram format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg, png, pdf)", format)
	}
	return nil
}

// Options configures a pipeline run. It supports JSON for API requests.
type Options struct {
	AngleTolerance    float64 `json:"angle_tolerance,omitempty"`
	ConnectDistance   float64 `json:"connect_distance,omitempty"`
	MaxGroups         int     `json:"max_groups,omitempty"`
	IgnoreNoCombine   bool    `json:"ignore_no_combine,omitempty"`
	EndpointConflicts bool    `json:"endpoint_conflicts,omitempty"`

	// DisableGeneration returns saved tables only.
	DisableGeneration bool `json:"disable_generation,omitempty"`
	// PreferSavedTable returns the saved table when there is one.
	PreferSavedTable bool `json:"prefer_saved,omitempty"`
	// Refresh skips the cache lookup; the fresh table is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Verbosity   int           `json:"-"`
	TTL         time.Duration `json:"-"`
	Concurrency int           `json:"-"`
	Logger      *log.Logger   `json:"-"`

	// OnProgress is called by GenerateAll after each turnout finishes.
	// It may be called from several goroutines.
	OnProgress func(done, total int) `json:"-"`
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if o.AngleTolerance <= 0 {
		o.AngleTolerance = paths.DefaultAngleTolerance
	}
	if o.ConnectDistance <= 0 {
		o.ConnectDistance = paths.DefaultConnectDistance
	}
	if o.MaxGroups <= 0 {
		o.MaxGroups = paths.DefaultMaxGroups
	}
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	if o.Concurrency <= 0 {
		o.Concurrency = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// FromSettings builds options from turnout settings.
func FromSettings(s turnout.Settings) Options {
	return Options{
		AngleTolerance:    s.Options.AngleTolerance,
		ConnectDistance:   s.Options.ConnectDistance,
		MaxGroups:         s.Options.MaxGroups,
		IgnoreNoCombine:   s.Options.IgnoreNoCombine,
		EndpointConflicts: s.Options.EndpointConflicts,
		Verbosity:         s.Options.Verbosity,
		Logger:            s.Options.Logger,
		DisableGeneration: s.DisableGeneration,
		PreferSavedTable:  s.PreferSavedTable,
	}
}

// Engine returns the engine options for a definition.
func (o *Options) Engine(def turnout.Definition) paths.Options {
	return paths.Options{
		AngleTolerance:    o.AngleTolerance,
		ConnectDistance:   o.ConnectDistance,
		MaxGroups:         o.MaxGroups,
		NoCombine:         def.PathNoCombine,
		IgnoreNoCombine:   o.IgnoreNoCombine,
		EndpointConflicts: o.EndpointConflicts,
		Verbosity:         o.Verbosity,
		Logger:            o.Logger,
	}
}

// TableKeyOpts returns the cache key options for a definition.
func (o *Options) TableKeyOpts(def turnout.Definition) cache.TableKeyOpts {
	return cache.TableKeyOpts{
		AngleTolerance:    o.AngleTolerance,
		ConnectDistance:   o.ConnectDistance,
		MaxGroups:         o.MaxGroups,
		NoCombine:         def.PathNoCombine && !o.IgnoreNoCombine,
		EndpointConflicts: o.EndpointConflicts,
	}
}

// Result is the outcome of generating one turnout.
type Result struct {
	Title  string         `json:"title"`
	Source turnout.Source `json:"source"`

	// Table is the table to use: generated, or saved when generation is off
	// or the saved table is preferred.
	Table   paths.Table `json:"table"`
	Encoded []byte      `json:"encoded"`

	// Comparison is set when a saved table was checked.
	Comparison *paths.Comparison `json:"comparison,omitempty"`

	// Generation holds the engine's intermediate products. It is nil when
	// the table came from the cache or the saved copy.
	Generation *paths.Result `json:"-"`

	Stats Stats `json:"stats"`
}

// Mismatch reports whether a saved table disagreed with the generated one.
func (r *Result) Mismatch() bool {
	return r.Comparison != nil && !r.Comparison.Match
}

// Stats contains generation statistics.
type Stats struct {
	SubPaths  int           `json:"subpaths"`
	Groups    int           `json:"groups"`
	Bumpers   int           `json:"bumpers"`
	Truncated bool          `json:"truncated,omitempty"`
	CacheHit  bool          `json:"cache_hit,omitempty"`
	FromSaved bool          `json:"from_saved,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Summary totals the results of a library run.
type Summary struct {
	Turnouts   int
	Generated  int
	Cached     int
	Saved      int
	Truncated  []string
	Mismatches []string
}

// Summarize totals results.
func Summarize(results []*Result) Summary {
	s := Summary{Turnouts: len(results)}
	for _, r := range results {
		switch {
		case r.Stats.FromSaved:
			s.Saved++
		case r.Stats.CacheHit:
			s.Cached++
		default:
			s.Generated++
		}
		if r.Stats.Truncated {
			s.Truncated = append(s.Truncated, r.Title)
		}
		if r.Mismatch() {
			s.Mismatches = append(s.Mismatches, fmt.Sprintf("%s (%s)", r.Title, r.Source))
		}
	}
	return s
}
