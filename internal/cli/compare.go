package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/turnoutpaths/pkg/api"
	"github.com/matzehuels/turnoutpaths/pkg/io"
	"github.com/matzehuels/turnoutpaths/pkg/pipeline"
	"github.com/matzehuels/turnoutpaths/pkg/turnout"
)

// ErrMismatch is returned by compare when any saved table differs.
var ErrMismatch = fmt.Errorf("saved path tables differ from generated ones")

// compareCommand creates the compare command.
func (c *CLI) compareCommand() *cobra.Command {
	var flags genFlags

	cmd := &cobra.Command{
		Use:   "compare [library] [title...]",
		Short: "Check saved Path Tables against generated ones",
		Long: `Generate every turnout that carries a saved table and compare the two.

Tables match when they hold the same routes grouped the same way; labels and
ordering are ignored. The command fails when any table differs, so it can
guard a library in CI.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompare(cmd.Context(), args[0], args[1:], &flags)
		},
		ValidArgsFunction: completeLibrary,
	}

	flags.register(cmd)
	return cmd
}

func (c *CLI) runCompare(ctx context.Context, input string, titles []string, flags *genFlags) error {
	lib, err := io.Import(input)
	if err != nil {
		return err
	}
	defs, err := selectTurnouts(lib, titles)
	if err != nil {
		return err
	}

	var saved []turnout.Definition
	for _, def := range defs {
		if def.Paths != nil {
			saved = append(saved, def)
		}
	}
	if len(saved) == 0 {
		printInfo("No saved tables in %s", input)
		return nil
	}

	opts := c.options()
	flags.apply(&opts)
	opts.DisableGeneration = false

	spinner := newSpinner(ctx, "Comparing")
	opts.OnProgress = spinner.Advance
	spinner.Start()
	results, err := c.compare(ctx, saved, opts, flags)
	if err != nil {
		spinner.StopWithError("Comparison failed")
		return err
	}
	spinner.Stop()

	differ := 0
	for _, res := range results {
		if res.Mismatch() {
			differ++
			printResult(res)
			continue
		}
		printSuccess("%s %s", res.Title, StyleDim.Render(res.Source.String()))
	}
	if differ > 0 {
		printError("%d of %d tables differ", differ, len(results))
		return ErrMismatch
	}
	printSuccess("All %d tables match", len(results))
	return nil
}

func (c *CLI) compare(ctx context.Context, defs []turnout.Definition, opts pipeline.Options, flags *genFlags) ([]*pipeline.Result, error) {
	if flags.server != "" {
		client, err := api.NewClient(flags.server)
		if err != nil {
			return nil, err
		}
		results := make([]*pipeline.Result, len(defs))
		for i, def := range defs {
			resp, err := client.Compare(ctx, def, &opts)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", def.Title, err)
			}
			results[i] = &pipeline.Result{
				Title:      resp.Title,
				Source:     def.Source,
				Table:      resp.Table,
				Comparison: resp.Comparison,
				Stats:      resp.Stats,
			}
			if opts.OnProgress != nil {
				opts.OnProgress(i+1, len(defs))
			}
		}
		return results, nil
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	return runner.GenerateAll(ctx, defs, opts)
}
