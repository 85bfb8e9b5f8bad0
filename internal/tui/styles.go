// Package tui provides terminal user interface components for gantry.
//
// All colors use AdaptiveColor for light/dark terminal support, and every
// status display keeps triple redundancy: icon + color + text. Call
// CheckNoColor() at the start of commands that print styled text so the
// NO_COLOR environment variable is respected; colors are also disabled when
// TERM=dumb.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/gantryci/gantry/internal/pipeline"
)

//nolint:gochecknoglobals // Intentional package-level constants for TUI styling API
var (
	// ColorPrimary is blue, used for active states and primary actions.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess is green, used for success states and completed jobs.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning is yellow, used for warnings and skipped jobs.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError is red, used for error states and failed jobs.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted is gray, used for dim/inactive states and secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}

	// StyleBold applies bold formatting to text.
	StyleBold = lipgloss.NewStyle().Bold(true)

	// StyleDim applies dim/faint formatting to text.
	StyleDim = lipgloss.NewStyle().Faint(true)
)

// StatusColors returns the semantic color for each pipeline job status.
func StatusColors() map[pipeline.Status]lipgloss.AdaptiveColor {
	return map[pipeline.Status]lipgloss.AdaptiveColor{
		pipeline.StatusPending:   ColorMuted,
		pipeline.StatusRunning:   ColorPrimary,
		pipeline.StatusSuccess:   ColorSuccess,
		pipeline.StatusFailure:   ColorError,
		pipeline.StatusSkipped:   ColorWarning,
		pipeline.StatusCancelled: ColorMuted,
	}
}

// StatusIcon returns the icon for a pipeline job status.
// Icons pair with StatusColors so status is never conveyed by color alone.
func StatusIcon(status pipeline.Status) string {
	icons := map[pipeline.Status]string{
		pipeline.StatusPending:   "○",
		pipeline.StatusRunning:   "●",
		pipeline.StatusSuccess:   "✓",
		pipeline.StatusFailure:   "✗",
		pipeline.StatusSkipped:   "⊘",
		pipeline.StatusCancelled: "✗",
	}
	if icon, ok := icons[status]; ok {
		return icon
	}
	return "?"
}

// RenderStatus renders a status as icon + colored text.
func RenderStatus(status pipeline.Status) string {
	color, ok := StatusColors()[status]
	if !ok {
		color = ColorMuted
	}
	style := lipgloss.NewStyle().Foreground(color)
	return style.Render(StatusIcon(status) + " " + string(status))
}

// TableStyles holds lipgloss styles for table rendering.
type TableStyles struct {
	Header       lipgloss.Style
	Cell         lipgloss.Style
	Dim          lipgloss.Style
	StatusColors map[pipeline.Status]lipgloss.AdaptiveColor
}

// NewTableStyles creates styles for table rendering.
func NewTableStyles() *TableStyles {
	return &TableStyles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}),
		Cell: lipgloss.NewStyle(),
		Dim: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}),
		StatusColors: StatusColors(),
	}
}

// OutputStyles holds common output styles.
type OutputStyles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
}

// NewOutputStyles creates common output styles using AdaptiveColor for
// light/dark terminal support.
func NewOutputStyles() *OutputStyles {
	return &OutputStyles{
		Success: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(ColorWarning),
		Info: lipgloss.NewStyle().
			Foreground(ColorPrimary),
		Dim: lipgloss.NewStyle().
			Foreground(ColorMuted),
	}
}

// CheckNoColor respects the NO_COLOR environment variable.
// Call this at the start of commands that output styled text.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport returns true if the terminal supports colors.
// Returns false if NO_COLOR is set (any value including empty string) or
// TERM=dumb, following https://no-color.org/.
func HasColorSupport() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return true
}
