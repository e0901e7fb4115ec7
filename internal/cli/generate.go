package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/turnoutpaths/pkg/api"
	"github.com/matzehuels/turnoutpaths/pkg/io"
	"github.com/matzehuels/turnoutpaths/pkg/pipeline"
	"github.com/matzehuels/turnoutpaths/pkg/turnout"
)

// genFlags holds the flags shared by generate and compare.
type genFlags struct {
	noCache           bool
	refresh           bool
	preferSaved       bool
	disable           bool
	ignoreNoCombine   bool
	endpointConflicts bool
	maxGroups         int
	tolerance         float64
	distance          float64
	concurrency       int
	server            string
}

func (f *genFlags) register(cmd *cobra.Command) {
	f.registerEngine(cmd)
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the table cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "regenerate even when a cached table exists")
	cmd.Flags().IntVarP(&f.concurrency, "jobs", "j", 0, "turnouts generated in parallel (default GOMAXPROCS)")
	cmd.Flags().StringVar(&f.server, "server", "", "generate on a turnoutpaths API server at this URL")
}

// registerEngine registers the flags that change the generated table.
func (f *genFlags) registerEngine(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.preferSaved, "prefer-saved", false, "keep saved tables when they differ from generated ones")
	cmd.Flags().BoolVar(&f.disable, "saved-only", false, "do not generate; use saved tables")
	cmd.Flags().BoolVar(&f.ignoreNoCombine, "ignore-no-combine", false, "combine routes even for turnouts marked no-combine")
	cmd.Flags().BoolVar(&f.endpointConflicts, "endpoint-conflicts", false, "routes sharing a real endpoint conflict")
	cmd.Flags().IntVar(&f.maxGroups, "max-groups", 0, "cap on candidate route groups (default from config)")
	cmd.Flags().Float64Var(&f.tolerance, "tolerance", 0, "angle tolerance in degrees (default from config)")
	cmd.Flags().Float64Var(&f.distance, "distance", 0, "connect distance (default from config)")
}

// apply overlays set flags on options built from the config.
func (f *genFlags) apply(opts *pipeline.Options) {
	if f.maxGroups > 0 {
		opts.MaxGroups = f.maxGroups
	}
	if f.tolerance > 0 {
		opts.AngleTolerance = f.tolerance
	}
	if f.distance > 0 {
		opts.ConnectDistance = f.distance
	}
	if f.concurrency > 0 {
		opts.Concurrency = f.concurrency
	}
	opts.Refresh = f.refresh
	opts.PreferSavedTable = opts.PreferSavedTable || f.preferSaved
	opts.DisableGeneration = opts.DisableGeneration || f.disable
	opts.IgnoreNoCombine = opts.IgnoreNoCombine || f.ignoreNoCombine
	opts.EndpointConflicts = opts.EndpointConflicts || f.endpointConflicts
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		flags  genFlags
		output string
		write  bool
	)

	cmd := &cobra.Command{
		Use:   "generate [library] [title...]",
		Short: "Generate Path Tables for a turnout library",
		Long: `Generate Path Tables for the turnouts of a library file (.toml or .json).

With titles, only those turnouts are generated and their tables printed.
Without, the whole library is generated in parallel and summarized. Saved
tables are checked against the generated ones and mismatches reported.

--write stores the resulting tables back into the library file.
--output writes the tables of the selected turnouts as JSON.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), args[0], args[1:], &flags, output, write)
		},
		ValidArgsFunction: completeLibrary,
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write tables as JSON to this file")
	cmd.Flags().BoolVar(&write, "write", false, "save the tables back into the library")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, input string, titles []string, flags *genFlags, output string, write bool) error {
	lib, err := io.Import(input)
	if err != nil {
		return err
	}
	defs, err := selectTurnouts(lib, titles)
	if err != nil {
		return err
	}

	opts := c.options()
	flags.apply(&opts)

	done := timed(loggerFromContext(ctx), "generate finished")
	spinner := newSpinner(ctx, "Generating")
	opts.OnProgress = spinner.Advance
	spinner.Start()
	results, err := c.generate(ctx, defs, opts, flags)
	if err != nil {
		spinner.StopWithError("Generation failed")
		return err
	}
	spinner.Stop()
	done("file", input, "turnouts", len(defs))

	if len(titles) > 0 {
		for _, res := range results {
			printResult(res)
		}
	}
	summary := pipeline.Summarize(results)
	printSummary(summary)

	if output != "" {
		if err := writeTables(output, results); err != nil {
			return err
		}
		printFile(output)
	}
	if write {
		if err := saveTables(lib, results, input); err != nil {
			return err
		}
		printSuccess("Saved %d tables to %s", len(results), input)
	}
	return nil
}

// generate runs defs locally or, with --server, on a remote API server.
func (c *CLI) generate(ctx context.Context, defs []turnout.Definition, opts pipeline.Options, flags *genFlags) ([]*pipeline.Result, error) {
	if flags.server != "" {
		return generateRemote(ctx, flags.server, defs, opts)
	}
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	return runner.GenerateAll(ctx, defs, opts)
}

func generateRemote(ctx context.Context, server string, defs []turnout.Definition, opts pipeline.Options) ([]*pipeline.Result, error) {
	client, err := api.NewClient(server)
	if err != nil {
		return nil, err
	}
	results := make([]*pipeline.Result, len(defs))
	for i, def := range defs {
		resp, err := client.Paths(ctx, def, &opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", def.Title, err)
		}
		enc := make([]byte, len(resp.Encoded))
		for j, v := range resp.Encoded {
			enc[j] = byte(v)
		}
		results[i] = &pipeline.Result{
			Title:      resp.Title,
			Source:     def.Source,
			Table:      resp.Table,
			Encoded:    enc,
			Comparison: resp.Comparison,
			Stats:      resp.Stats,
		}
		if opts.OnProgress != nil {
			opts.OnProgress(i+1, len(defs))
		}
	}
	return results, nil
}

// selectTurnouts returns the named definitions, or all of them.
func selectTurnouts(lib *io.Library, titles []string) ([]turnout.Definition, error) {
	if len(titles) == 0 {
		return lib.Turnouts, nil
	}
	defs := make([]turnout.Definition, 0, len(titles))
	for _, title := range titles {
		def, err := lib.Find(title)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// saveTables stores each result's table as the saved table of its turnout
// and rewrites the library file.
func saveTables(lib *io.Library, results []*pipeline.Result, path string) error {
	byTitle := make(map[string]*pipeline.Result, len(results))
	for _, res := range results {
		byTitle[res.Title] = res
	}
	for i := range lib.Turnouts {
		if res, ok := byTitle[lib.Turnouts[i].Title]; ok {
			tbl := res.Table.Clone()
			lib.Turnouts[i].Paths = &tbl
		}
	}
	return io.Export(lib, path)
}

func writeTables(path string, results []*pipeline.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	for _, res := range results {
		if err := io.WriteTable(f, res.Title, res.Table); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}
