package paths

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/turnoutpaths/pkg/geom"
)

// Defaults used when the corresponding Options field is zero.
const (
	DefaultAngleTolerance  = 5.0
	DefaultConnectDistance = 0.1
	DefaultMaxGroups       = 1000
)

// Trace levels for Options.Verbosity. Each level includes the ones below it.
const (
	TraceSummary   = 1 // counts per generation
	TraceSubPaths  = 2 // route list
	TraceGroups    = 3 // group list and encoded table
	TraceConflicts = 4 // conflict map
	TraceAdjacency = 5 // adjacency map
	TraceWalk      = 6 // loops, duplicates and group candidates
)

// Options controls a generation run.
type Options struct {
	// AngleTolerance is the width in degrees of the window in which two
	// tangents are considered to match.
	AngleTolerance float64
	// ConnectDistance is the largest gap between two ends that still joins.
	ConnectDistance float64
	// MaxGroups bounds the number of candidate groups the search materializes.
	MaxGroups int

	// NoCombine puts every route in a group of its own.
	NoCombine bool
	// IgnoreNoCombine overrides NoCombine.
	IgnoreNoCombine bool
	// EndpointConflicts also treats routes sharing a real endpoint as
	// conflicting.
	EndpointConflicts bool

	// Verbosity selects the diagnostic dumps written to Logger at debug level.
	Verbosity int
	Logger    *log.Logger
}

// DefaultOptions returns options with the standard tolerances.
func DefaultOptions() Options {
	return Options{
		AngleTolerance:  DefaultAngleTolerance,
		ConnectDistance: DefaultConnectDistance,
		MaxGroups:       DefaultMaxGroups,
	}
}

func (o Options) withDefaults() Options {
	if o.AngleTolerance <= 0 {
		o.AngleTolerance = DefaultAngleTolerance
	}
	if o.ConnectDistance <= 0 {
		o.ConnectDistance = DefaultConnectDistance
	}
	if o.MaxGroups <= 0 {
		o.MaxGroups = DefaultMaxGroups
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// Input is the geometry of one turnout in its local frame.
type Input struct {
	Title     string // used in diagnostics only
	Segments  []geom.Segment
	Endpoints []geom.Endpoint
}

// Result holds every intermediate product of a generation run.
type Result struct {
	Adjacency *AdjacencyMap
	SubPaths  []SubPath
	Conflicts ConflictMap
	Groups    []Group
	Table     Table

	// Bumpers is the number of synthetic dead-end endpoints created.
	Bumpers int
	// Truncated is set when the group search hit Options.MaxGroups.
	Truncated bool
}

// generator carries the scratch state of one Generate call.
type generator struct {
	opts   Options
	logger *log.Logger
	title  string
	adj    *AdjacencyMap

	// route enumeration
	path       []Elem
	visited    []bool
	nextBumper int
	subPaths   []SubPath

	// group search
	conflicts    ConflictMap
	chain        []int
	groups       []Group
	materialized int
	truncated    bool
}

// Generate computes the routes and route groups of a turnout. It never fails:
// degenerate input yields an empty result, and an exhausted search returns
// the groups found so far with Truncated set.
func Generate(in Input, opts Options) *Result {
	opts = opts.withDefaults()
	g := &generator{
		opts:   opts,
		logger: opts.Logger,
		title:  in.Title,
	}

	g.adj = BuildAdjacency(in.Segments, in.Endpoints, opts.AngleTolerance, opts.ConnectDistance)
	if opts.Verbosity >= TraceAdjacency {
		g.logger.Debugf("adjacency %s:\n%s", g.title, g.adj)
	}

	g.enumerate()
	if opts.Verbosity >= TraceSubPaths {
		g.logger.Debugf("subpaths %s:\n%s", g.title, dumpSubPaths(g.subPaths))
	}

	g.conflicts = BuildConflicts(g.subPaths, len(in.Endpoints), opts.EndpointConflicts)
	if opts.Verbosity >= TraceConflicts {
		g.logger.Debugf("conflicts %s:\n%s", g.title, g.conflicts)
	}

	if opts.NoCombine && !opts.IgnoreNoCombine {
		g.singletons()
	} else {
		g.combine()
	}
	sortGroups(g.subPaths, g.groups)

	res := &Result{
		Adjacency: g.adj,
		SubPaths:  g.subPaths,
		Conflicts: g.conflicts,
		Groups:    g.groups,
		Table:     BuildTable(g.subPaths, g.groups),
		Bumpers:   g.nextBumper - len(in.Endpoints),
		Truncated: g.truncated,
	}
	if opts.Verbosity >= TraceGroups {
		g.logger.Debugf("groups %s:\n%s", g.title, dumpGroups(g.groups))
		g.logger.Debugf("table %s:\n%s", g.title, res.Table)
	}
	if opts.Verbosity >= TraceSummary {
		g.logger.Debug("generated paths",
			"turnout", g.title,
			"segments", len(in.Segments),
			"endpoints", len(in.Endpoints),
			"subpaths", len(res.SubPaths),
			"groups", len(res.Groups),
			"bumpers", res.Bumpers)
	}
	return res
}
