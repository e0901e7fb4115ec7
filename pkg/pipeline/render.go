package pipeline

import (
	"context"

	"github.com/matzehuels/turnoutpaths/pkg/paths"
	"github.com/matzehuels/turnoutpaths/pkg/render"
	"github.com/matzehuels/turnoutpaths/pkg/turnout"
)

// RenderOptions configures a track diagram.
type RenderOptions struct {
	Format   string  `json:"format"`
	Group    int     `json:"group"`
	Detailed bool    `json:"detailed,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
}

// Render draws the track graph of def with route group ropts.Group
// highlighted (render.NoGroup for none). The diagram needs the adjacency
// map, so the engine always runs; the table cache is not consulted.
func (r *Runner) Render(ctx context.Context, def turnout.Definition, opts Options, ropts RenderOptions) ([]byte, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()
	if ropts.Format == "" {
		ropts.Format = FormatSVG
	}
	if err := ValidateFormat(ropts.Format); err != nil {
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	gen := paths.Generate(def.Input(), opts.Engine(def))
	dot := render.ToDOT(gen, render.Options{Title: def.Title, Group: ropts.Group, Detailed: ropts.Detailed})
	if ropts.Format == FormatDOT {
		return []byte(dot), nil
	}

	svg, err := render.RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	if ropts.Format == FormatSVG {
		return svg, nil
	}
	scale := ropts.Scale
	if scale <= 0 {
		scale = 2
	}
	return render.Convert(ctx, svg, ropts.Format, scale)
}
