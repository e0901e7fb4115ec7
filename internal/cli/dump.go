package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/turnoutpaths/pkg/io"
	"github.com/matzehuels/turnoutpaths/pkg/paths"
	"github.com/matzehuels/turnoutpaths/pkg/turnout"
)

// dumpCommand creates the dump command.
func (c *CLI) dumpCommand() *cobra.Command {
	var (
		flags  genFlags
		decode string
	)

	cmd := &cobra.Command{
		Use:   "dump [library] [title]",
		Short: "Print the intermediate products of path generation",
		Long: `Generate one turnout and print the adjacency map, the routes, the
conflict map, the route groups and the encoded table.

With --decode, print the table held by a list of signed byte values instead,
for example: dump --decode "80 48 0 1 0 0 0".`,
		Args: func(cmd *cobra.Command, args []string) error {
			if decode != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if decode != "" {
				return runDecode(decode)
			}
			return c.runDump(args[0], args[1], &flags)
		},
		ValidArgsFunction: completeLibrary,
	}

	flags.registerEngine(cmd)
	cmd.Flags().StringVar(&decode, "decode", "", "decode an encoded table given as signed byte values")
	return cmd
}

func (c *CLI) runDump(input, title string, flags *genFlags) error {
	lib, err := io.Import(input)
	if err != nil {
		return err
	}
	def, err := lib.Find(title)
	if err != nil {
		return err
	}
	if err := def.Validate(); err != nil {
		return err
	}

	opts := c.options()
	flags.apply(&opts)
	settings := turnout.Settings{
		Options:           opts.Engine(def),
		DisableGeneration: opts.DisableGeneration,
		PreferSavedTable:  opts.PreferSavedTable,
	}

	t := turnout.New(def, settings)
	enc, err := t.Encoded()
	if err != nil {
		return err
	}

	fmt.Println(StyleTitle.Render(def.Title) + " " + StyleDim.Render(def.Source.String()))
	if res := t.Result(); res != nil {
		printSection("Adjacency", res.Adjacency.String())
		printSection("Routes", dumpRoutes(res.SubPaths))
		printSection("Conflicts", res.Conflicts.String())
		printSection("Groups", dumpGroups(res.Groups))
		if res.Truncated {
			printWarning("Group search stopped at %d candidates", opts.MaxGroups)
		}
	} else {
		printInfo("Generation is off; showing the saved table")
	}

	fmt.Println(tableView(t.Paths(), -1))
	printKeyValue("encoded", formatEncoded(enc))
	printKeyValue("length", strconv.Itoa(len(enc)))
	if cmp, ok := t.Comparison(); ok {
		if cmp.Match {
			printSuccess("Saved table matches")
		} else {
			printWarning("Saved table differs")
			printDetail("saved: %s", strings.TrimSpace(cmp.Saved))
		}
	}
	return nil
}

func runDecode(s string) error {
	buf, err := parseEncoded(s)
	if err != nil {
		return err
	}
	tbl, err := paths.Decode(buf)
	if err != nil {
		return err
	}
	n, _ := paths.Length(buf)
	fmt.Println(tableView(tbl, -1))
	printKeyValue("length", strconv.Itoa(n))
	if n < len(buf) {
		printWarning("%d bytes after the end of the table", len(buf)-n)
	}
	return nil
}

// parseEncoded parses signed byte values separated by spaces or commas.
func parseEncoded(s string) ([]byte, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
	buf := make([]byte, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("byte %d: %w", i, err)
		}
		buf[i] = byte(int8(v))
	}
	return buf, nil
}

func printSection(name, body string) {
	fmt.Println(StyleHighlight.Render(name))
	for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
		fmt.Println("  " + line)
	}
}

func dumpRoutes(subs []paths.SubPath) string {
	var b strings.Builder
	for i, sp := range subs {
		fmt.Fprintf(&b, "%d: %s\n", i, sp)
	}
	return b.String()
}

func dumpGroups(groups []paths.Group) string {
	var b strings.Builder
	for i, g := range groups {
		fmt.Fprintf(&b, "P%d: %v\n", i, []int(g))
	}
	return b.String()
}
