package checks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gantryci/gantry/internal/clock"
	"github.com/gantryci/gantry/internal/errors"
)

// statusSymbols maps check outcomes to their report markers.
var statusSymbols = map[CheckStatus]string{
	CheckPassed:  "✓",
	CheckFailed:  "✗",
	CheckSkipped: "⚠",
}

// WriteReport renders the summary as Markdown and writes it to path,
// creating parent directories as needed.
func WriteReport(path string, category Category, summary *Summary, c clock.Clock) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.Wrap(err, "failed to create report directory")
	}
	if err := os.WriteFile(path, []byte(RenderReport(category, summary, c)), 0o600); err != nil {
		return errors.Wrap(err, "failed to write report")
	}
	return nil
}

// RenderReport renders the summary report as Markdown.
func RenderReport(category Category, summary *Summary, c clock.Clock) string {
	var sb strings.Builder

	sb.WriteString("# Test Report\n\n")
	fmt.Fprintf(&sb, "- **Generated:** %s\n", c.Now().UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&sb, "- **Category:** %s\n", category)
	fmt.Fprintf(&sb, "- **Duration:** %s\n\n", summary.Duration.Round(10*time.Millisecond))

	overall := "PASSED"
	if !summary.OK() {
		overall = "FAILED"
	}
	fmt.Fprintf(&sb, "## Result: %s\n\n", overall)
	fmt.Fprintf(&sb, "| Passed | Failed | Skipped | Total |\n")
	fmt.Fprintf(&sb, "|--------|--------|---------|-------|\n")
	fmt.Fprintf(&sb, "| %d | %d | %d | %d |\n\n", summary.Passed, summary.Failed, summary.Skipped, summary.Total())

	if len(summary.Records) > 0 {
		sb.WriteString("## Checks\n\n")
		for _, record := range summary.Records {
			fmt.Fprintf(&sb, "- %s `%s` %s", statusSymbols[record.Status], record.Category, record.Name)
			if record.Detail != "" {
				fmt.Fprintf(&sb, " (%s)", record.Detail)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
