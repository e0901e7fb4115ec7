package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/turnoutpaths/pkg/paths"
	"github.com/matzehuels/turnoutpaths/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
	iconSaved   = "saved"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// =============================================================================
// File Output
// =============================================================================

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// =============================================================================
// Key-Value Output
// =============================================================================

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Path Tables
// =============================================================================

// formatRoute renders a route as signed segment numbers.
func formatRoute(route []int) string {
	parts := make([]string, len(route))
	for i, v := range route {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}

// formatEncoded renders encoded table bytes as signed values.
func formatEncoded(buf []byte) string {
	parts := make([]string, len(buf))
	for i, b := range buf {
		parts[i] = strconv.Itoa(int(int8(b)))
	}
	return strings.Join(parts, " ")
}

// tableView renders a Path Table with one row per route. current marks a
// group, or -1 for none.
func tableView(tbl paths.Table, current int) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	var rows [][]string
	var rowGroup []int
	for gi, g := range tbl.Groups {
		for ri, route := range g.SubPaths {
			label := ""
			if ri == 0 {
				label = g.Label
			}
			rows = append(rows, []string{label, strconv.Itoa(ri), formatRoute(route)})
			rowGroup = append(rowGroup, gi)
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Group", "#", "Segments").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			if row < 0 || row >= len(rowGroup) {
				return base
			}
			if rowGroup[row] == current {
				return base.Foreground(colorGreen).Bold(true)
			}
			if col == 0 {
				return base.Foreground(colorCyan)
			}
			return base.Foreground(colorWhite)
		})
	return t.Render()
}

// =============================================================================
// Results
// =============================================================================

// printResult prints one turnout's table and statistics.
func printResult(res *pipeline.Result) {
	fmt.Println(StyleTitle.Render(res.Title) + " " + StyleDim.Render(res.Source.String()))
	if res.Table.Empty() {
		printInfo("No routes")
	} else {
		fmt.Println(tableView(res.Table, -1))
	}
	printDetail("encoded (%d bytes): %s", len(res.Encoded), formatEncoded(res.Encoded))
	printStats(res.Stats)
	if res.Mismatch() {
		printWarning("Saved table differs from the generated one")
		printDetail("saved: %s", strings.TrimSpace(res.Comparison.Saved))
		printDetail("fresh: %s", strings.TrimSpace(res.Comparison.Fresh))
	}
	printNewline()
}

// printStats prints generation statistics on a single line.
func printStats(s pipeline.Stats) {
	parts := []string{
		fmt.Sprintf("%d routes", s.SubPaths),
		fmt.Sprintf("%d groups", s.Groups),
	}
	if s.Bumpers > 0 {
		parts = append(parts, fmt.Sprintf("%d bumpers", s.Bumpers))
	}

	status, statusStyle := iconFresh, styleComputed
	switch {
	case s.FromSaved:
		status, statusStyle = iconSaved, styleCached
	case s.CacheHit:
		status, statusStyle = iconCached, styleCached
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	line += StyleDim.Render(" · ") + statusStyle.Render(status)
	if s.Truncated {
		line += StyleDim.Render(" · ") + StyleWarning.Render("truncated")
	}
	fmt.Println(line)
}

// printSummary prints the totals of a library run.
func printSummary(s pipeline.Summary) {
	printSuccess("%d turnouts: %d generated, %d cached, %d saved",
		s.Turnouts, s.Generated, s.Cached, s.Saved)
	for _, title := range s.Truncated {
		printWarning("Group search truncated: %s", title)
	}
	for _, m := range s.Mismatches {
		printWarning("Path table mismatch: %s", m)
	}
	if len(s.Mismatches) > 0 {
		printNextStep("Save the generated tables", appName+" generate <library> --write")
	}
}

// =============================================================================
// Commands & Next Steps
// =============================================================================

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}
