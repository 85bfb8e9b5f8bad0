// Package tui provides terminal user interface components for gantry.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gantryci/gantry/internal/pipeline"
)

// JobUpdateMsg carries a completed job instance result from the engine.
type JobUpdateMsg pipeline.JobResult

// RunDoneMsg signals that pipeline execution finished.
type RunDoneMsg struct {
	Err error
}

// watchRow is one rendered line in the watch display. Matrix jobs produce one
// row per instance, keyed by the instance label.
type watchRow struct {
	Label    string
	Status   pipeline.Status
	Reason   string
	Duration time.Duration
}

// WatchModel is the Bubble Tea model for live pipeline execution display.
// It implements tea.Model (Init, Update, View). Job results arrive on the
// updates channel; the run error arrives on the result channel once the
// updates channel closes.
type WatchModel struct {
	pipelineName string
	ref          pipeline.Ref
	rows         []watchRow
	index        map[string]int
	updates      <-chan pipeline.JobResult
	result       <-chan error
	styles       *OutputStyles
	width        int
	done         bool
	err          error
	quitting     bool
}

// NewWatchModel creates a WatchModel fed by the given channels. The caller
// runs the pipeline engine in a separate goroutine, forwards every OnUpdate
// result to updates, closes updates when execution returns, and sends the
// execution error (or nil) on result.
func NewWatchModel(name string, ref pipeline.Ref, updates <-chan pipeline.JobResult, result <-chan error) *WatchModel {
	return &WatchModel{
		pipelineName: name,
		ref:          ref,
		index:        make(map[string]int),
		updates:      updates,
		result:       result,
		styles:       NewOutputStyles(),
		width:        80,
	}
}

// Init starts listening for job results.
func (m *WatchModel) Init() tea.Cmd {
	return m.waitForUpdate()
}

// Update handles messages and returns the updated model and any commands.
func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case JobUpdateMsg:
		m.apply(pipeline.JobResult(msg))
		return m, m.waitForUpdate()

	case RunDoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

// View renders the current state to a string.
func (m *WatchModel) View() string {
	if m.quitting && !m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(StyleBold.Render(fmt.Sprintf("pipeline %s @ %s", m.pipelineName, m.ref)))
	b.WriteString("\n\n")

	table := NewTable(&b, []TableColumn{
		{Name: "JOB", Width: 36, Align: AlignLeft},
		{Name: "STATUS", Width: 14, Align: AlignLeft},
		{Name: "DURATION", Width: 10, Align: AlignRight},
		{Name: "NOTE", Width: 30, Align: AlignLeft},
	})
	table.WriteHeader()
	for _, row := range m.rows {
		duration := ""
		if row.Duration > 0 {
			duration = row.Duration.Round(10 * time.Millisecond).String()
		}
		table.WriteStyledRow(
			[]string{row.Label, "", duration, row.Reason},
			1,
			RenderStatus(row.Status),
			StatusIcon(row.Status)+" "+string(row.Status),
		)
	}

	b.WriteString("\n")
	b.WriteString(m.footer())
	b.WriteString("\n")
	return b.String()
}

// Rows returns the number of rendered rows, useful for tests.
func (m *WatchModel) Rows() int {
	return len(m.rows)
}

// Done reports whether the pipeline run has finished.
func (m *WatchModel) Done() bool {
	return m.done
}

// Err returns the pipeline execution error, if any.
func (m *WatchModel) Err() error {
	return m.err
}

// apply records a job result, replacing any earlier row for the same
// instance label.
func (m *WatchModel) apply(res pipeline.JobResult) {
	label := res.Instance
	if label == "" {
		label = res.Job
	}
	row := watchRow{
		Label:    label,
		Status:   res.Status,
		Reason:   res.Decision.Reason,
		Duration: res.Duration,
	}
	if idx, ok := m.index[label]; ok {
		m.rows[idx] = row
		return
	}
	m.index[label] = len(m.rows)
	m.rows = append(m.rows, row)
}

// footer summarizes run progress and the quit hint.
func (m *WatchModel) footer() string {
	var success, failed, skipped int
	for _, row := range m.rows {
		switch row.Status {
		case pipeline.StatusSuccess:
			success++
		case pipeline.StatusFailure, pipeline.StatusCancelled:
			failed++
		case pipeline.StatusSkipped:
			skipped++
		case pipeline.StatusPending, pipeline.StatusRunning:
		}
	}

	summary := fmt.Sprintf("%d succeeded, %d failed, %d skipped", success, failed, skipped)
	if m.done {
		if m.err != nil {
			return m.styles.Error.Render("✗ run failed: "+m.err.Error()) + "\n" + summary
		}
		return m.styles.Success.Render("✓ run complete") + "\n" + summary
	}
	return summary + "\n" + m.styles.Dim.Render("Press 'q' to quit")
}

// waitForUpdate blocks on the updates channel. A closed channel means the
// engine returned, so the final error is read from the result channel.
func (m *WatchModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		res, ok := <-m.updates
		if !ok {
			return RunDoneMsg{Err: <-m.result}
		}
		return JobUpdateMsg(res)
	}
}
