// Package turnout holds turnout definitions and the lazily computed Path
// Table cached on each turnout.
//
// A [Turnout] generates its table the first time [Turnout.Paths] is called
// and keeps it until the geometry changes. A saved table, usually read from
// the definition file, can replace generation entirely (PathOverride, or a
// globally disabled generator) or be checked against the generated table.
// Mismatches are logged and never change which table is returned unless
// [Settings.PreferSavedTable] asks for the saved one.
package turnout

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/turnoutpaths/pkg/errors"
	"github.com/matzehuels/turnoutpaths/pkg/geom"
	"github.com/matzehuels/turnoutpaths/pkg/paths"
)

// Source locates a definition in its library file.
type Source struct {
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
}

func (s Source) String() string {
	if s.File == "" {
		return "-"
	}
	return fmt.Sprintf("%s:%d", s.File, s.Line)
}

// Definition is the description of a turnout as read from a library.
// Segments are in the turnout's local frame; endpoints are in layout
// coordinates and are moved into the local frame through Placement.
type Definition struct {
	Title     string          `json:"title" toml:"title"`
	Source    Source          `json:"-" toml:"-"`
	Placement geom.Placement  `json:"placement" toml:"placement"`
	Segments  []geom.Segment  `json:"segments" toml:"segments"`
	Endpoints []geom.Endpoint `json:"endpoints" toml:"endpoints"`

	// PathOverride always uses the saved table.
	PathOverride bool `json:"path_override,omitempty" toml:"path_override"`
	// PathNoCombine shows one route at a time.
	PathNoCombine bool `json:"path_no_combine,omitempty" toml:"path_no_combine"`

	// Paths is the saved table, if the definition carries one.
	Paths *paths.Table `json:"paths,omitempty" toml:"paths,omitempty"`
}

// Validate checks the title, segment count and segment geometry.
func (d Definition) Validate() error {
	if err := errors.ValidateTitle(d.Title); err != nil {
		return err
	}
	if err := errors.ValidateSegmentCount(len(d.Segments)); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDefinition, err, "%s (%s)", d.Title, d.Source)
	}
	for i, s := range d.Segments {
		if err := s.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidSegment, err, "%s (%s): segment %d", d.Title, d.Source, i)
		}
	}
	return nil
}

// Input returns the engine input with endpoints in the local frame.
func (d Definition) Input() paths.Input {
	eps := make([]geom.Endpoint, len(d.Endpoints))
	for i, ep := range d.Endpoints {
		pos, angle := d.Placement.ToLocal(ep.Pos, ep.Angle)
		eps[i] = geom.Endpoint{Pos: pos, Angle: angle}
	}
	return paths.Input{
		Title:     d.Title,
		Segments:  d.Segments,
		Endpoints: eps,
	}
}

// Settings are the layout-wide switches applied to every turnout.
type Settings struct {
	Options paths.Options

	// DisableGeneration returns saved tables only.
	DisableGeneration bool
	// PreferSavedTable returns the saved table, when there is one, even after
	// generating and comparing.
	PreferSavedTable bool
}

// DefaultSettings returns settings with the default engine options.
func DefaultSettings() Settings {
	return Settings{Options: paths.DefaultOptions()}
}

// Turnout is a definition plus its cached Path Table and current route.
// It is safe for concurrent use.
type Turnout struct {
	mu       sync.Mutex
	def      Definition
	settings Settings
	logger   *log.Logger

	saved   *paths.Table
	cached  *paths.Table
	result  *paths.Result
	check   *paths.Comparison
	current int
}

// New returns a turnout for def. The definition's saved table, if any,
// becomes the turnout's saved table.
func New(def Definition, s Settings) *Turnout {
	logger := s.Options.Logger
	if logger == nil {
		logger = log.Default()
	}
	t := &Turnout{def: def, settings: s, logger: logger}
	if def.Paths != nil {
		saved := def.Paths.Clone()
		t.saved = &saved
	}
	t.def.Paths = nil
	return t
}

// Title returns the turnout's title.
func (t *Turnout) Title() string {
	return t.def.Title
}

// Definition returns a copy of the definition, with the current saved table.
func (t *Turnout) Definition() Definition {
	t.mu.Lock()
	defer t.mu.Unlock()
	d := t.def
	if t.saved != nil {
		saved := t.saved.Clone()
		d.Paths = &saved
	}
	return d
}

// SetGeometry replaces segments and endpoints and drops the cached table.
func (t *Turnout) SetGeometry(segs []geom.Segment, eps []geom.Endpoint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.def.Segments = segs
	t.def.Endpoints = eps
	t.invalidate()
}

// SetSavedPaths stores a copy of tbl as the saved table and drops the cached
// table. A nil table is stored as the empty table.
func (t *Turnout) SetSavedPaths(tbl *paths.Table) {
	t.mu.Lock()
	defer t.mu.Unlock()
	saved := paths.Table{}
	if tbl != nil {
		saved = tbl.Clone()
	}
	t.saved = &saved
	t.invalidate()
}

// SavedPaths returns the saved table and whether there is one.
func (t *Turnout) SavedPaths() (paths.Table, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.saved == nil {
		return paths.Table{}, false
	}
	return t.saved.Clone(), true
}

func (t *Turnout) invalidate() {
	t.cached = nil
	t.result = nil
	t.check = nil
}

// Paths returns the turnout's Path Table, generating it on first use.
// An empty table means the turnout has no routes.
func (t *Turnout) Paths() paths.Table {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pathsLocked().Clone()
}

func (t *Turnout) pathsLocked() paths.Table {
	if t.cached != nil {
		return *t.cached
	}

	if t.settings.DisableGeneration || t.def.PathOverride {
		tbl := paths.Table{}
		if t.saved != nil {
			tbl = *t.saved
		}
		t.cached = &tbl
		return tbl
	}

	opts := t.settings.Options
	opts.NoCombine = opts.NoCombine || t.def.PathNoCombine
	opts.Logger = t.logger
	t.result = paths.Generate(t.def.Input(), opts)
	tbl, check := Reconcile(t.def, t.saved, t.result.Table, t.settings.PreferSavedTable, t.logger)
	t.check = check
	t.cached = &tbl
	return tbl
}

// Reconcile checks a generated table against the saved one, logging a
// mismatch with the definition's title and source. It returns the table to
// use and the comparison, which is nil when there is no saved table.
func Reconcile(def Definition, saved *paths.Table, fresh paths.Table, preferSaved bool, logger *log.Logger) (paths.Table, *paths.Comparison) {
	if saved == nil {
		return fresh, nil
	}
	c := paths.Compare(*saved, fresh)
	if !c.Match {
		logger.Warn("path table mismatch", "turnout", def.Title, "source", def.Source.String())
		logger.Debugf("saved:\n%sgenerated:\n%s", c.Saved, c.Fresh)
	}
	if preferSaved {
		return *saved, &c
	}
	return fresh, &c
}

// Encoded returns the encoded Path Table.
func (t *Turnout) Encoded() ([]byte, error) {
	tbl := t.Paths()
	buf, err := tbl.Encode()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTable, err, "encode paths of %s", t.def.Title)
	}
	return buf, nil
}

// Result returns the products of the last generation, or nil when the
// table came from the saved copy or has not been computed.
func (t *Turnout) Result() *paths.Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result
}

// Comparison returns the check of the saved table against the generated one
// made by the last generation. It reports false when no check was made.
func (t *Turnout) Comparison() (paths.Comparison, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.check == nil {
		return paths.Comparison{}, false
	}
	return *t.check, true
}

// CurrentPathIndex returns the index of the selected route group.
func (t *Turnout) CurrentPathIndex() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// SetCurrentPathIndex selects a route group. An index outside the table
// selects the first group.
func (t *Turnout) SetCurrentPathIndex(i int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i < 0 || i >= len(t.pathsLocked().Groups) {
		i = 0
	}
	t.current = i
}

// CurrentPath returns the selected route group. It reports false when the
// turnout has no routes.
func (t *Turnout) CurrentPath() (paths.TableGroup, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	groups := t.pathsLocked().Groups
	if len(groups) == 0 {
		return paths.TableGroup{}, false
	}
	if t.current >= len(groups) {
		t.current = 0
	}
	return groups[t.current], true
}

// NextPath advances the selection by one group, wrapping at the end, and
// returns the new index.
func (t *Turnout) NextPath() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(t.pathsLocked().Groups)
	if n == 0 {
		t.current = 0
		return 0
	}
	t.current = (t.current + 1) % n
	return t.current
}
