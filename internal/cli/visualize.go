package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/turnoutpaths/pkg/io"
	"github.com/matzehuels/turnoutpaths/pkg/pipeline"
	"github.com/matzehuels/turnoutpaths/pkg/render"
)

// visualizeCommand creates the visualize command for drawing a turnout's track graph.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		flags  genFlags
		output string
		ropts  = pipeline.RenderOptions{Format: pipeline.FormatSVG, Group: render.NoGroup}
	)

	cmd := &cobra.Command{
		Use:   "visualize [library] [title]",
		Short: "Draw a turnout's track graph with a route group highlighted",
		Long: `Draw the track graph of one turnout: segments as boxes, endpoints as
circles and bumpers as squares, joined where their ends connect.

--group highlights the segments and endpoints of one route group (0-based).
PDF and PNG output need rsvg-convert on the PATH.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(ropts.Format); err != nil {
				return err
			}
			return c.runVisualize(cmd.Context(), args[0], args[1], &flags, ropts, output)
		},
		ValidArgsFunction: completeLibrary,
	}

	flags.registerEngine(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <title>.<format>)")
	cmd.Flags().StringVarP(&ropts.Format, "format", "f", ropts.Format, "output format: svg (default), dot, pdf, png")
	cmd.Flags().IntVarP(&ropts.Group, "group", "g", ropts.Group, "route group to highlight (-1 for none)")
	cmd.Flags().BoolVar(&ropts.Detailed, "detailed", false, "label edges with segment end numbers")
	cmd.Flags().Float64Var(&ropts.Scale, "scale", 2, "PNG scale factor")

	return cmd
}

func (c *CLI) runVisualize(ctx context.Context, input, title string, flags *genFlags, ropts pipeline.RenderOptions, output string) error {
	lib, err := io.Import(input)
	if err != nil {
		return err
	}
	def, err := lib.Find(title)
	if err != nil {
		return err
	}

	opts := c.options()
	flags.apply(&opts)

	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Rendering "+title)
	spinner.Start()
	data, err := runner.Render(ctx, def, opts, ropts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()

	if output == "" {
		output = fileName(title) + "." + ropts.Format
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printSuccess("Rendered %s", title)
	printFile(output)
	return nil
}

// fileName turns a turnout title into a file name.
func fileName(title string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, title)
}
