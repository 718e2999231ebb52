package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/gomodwatch/pkg/deps"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
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

	styleHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleBorder = lipgloss.NewStyle().Foreground(colorDim)
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

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Record Tables
// =============================================================================

// recordStatus returns the short status word shown for r.
func recordStatus(r deps.Record) string {
	var parts []string
	if r.HasUpdate {
		parts = append(parts, "update")
	}
	if !r.Used && !r.Indirect {
		parts = append(parts, "unused")
	}
	if r.Indirect {
		parts = append(parts, "indirect")
	}
	if r.Replaced != nil {
		parts = append(parts, "replaced")
	}
	return strings.Join(parts, ", ")
}

// recordRows converts records to table rows.
func recordRows(records []deps.Record) [][]string {
	rows := make([][]string, len(records))
	for i, r := range records {
		latest := r.Latest
		if latest == "" {
			latest = "—"
		}
		rows[i] = []string{r.Path, r.Version, latest, recordStatus(r)}
	}
	return rows
}

// renderRecords renders records as a bordered table. Rows with updates are
// highlighted and unused direct requirements are dimmed.
func renderRecords(records []deps.Record) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("Module", "Version", "Latest", "Status").
		Rows(recordRows(records)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if row < 0 || row >= len(records) {
				return lipgloss.NewStyle()
			}
			r := records[row]
			style := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case r.HasUpdate && col == 2:
				return style.Foreground(colorYellow)
			case !r.Used && !r.Indirect:
				return style.Foreground(colorDim)
			case col == 0:
				return style.Foreground(colorWhite)
			}
			return style.Foreground(colorGray)
		})
	return t.Render()
}

// printSummary prints the one-line counts under the check table.
func printSummary(total, updates, unused int) {
	sep := StyleDim.Render(" · ")
	fmt.Println("  " +
		StyleNumber.Render(fmt.Sprint(total)) + StyleDim.Render(" requirements") + sep +
		StyleWarning.Render(fmt.Sprint(updates)) + StyleDim.Render(" updates") + sep +
		StyleDim.Render(fmt.Sprintf("%d unused", unused)))
}
