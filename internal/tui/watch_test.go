package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gantryci/gantry/internal/pipeline"
)

func newTestWatchModel() (*WatchModel, chan pipeline.JobResult, chan error) {
	updates := make(chan pipeline.JobResult, 8)
	result := make(chan error, 1)
	m := NewWatchModel("ci", pipeline.BranchRef("main"), updates, result)
	return m, updates, result
}

func jobResult(job, instance string, status pipeline.Status) pipeline.JobResult {
	if instance == "" {
		instance = job
	}
	return pipeline.JobResult{
		Job:      job,
		Instance: instance,
		Status:   status,
		Decision: pipeline.Decision{Execute: true, MainSteps: true},
		Duration: 1500 * time.Millisecond,
	}
}

func TestWatchModel_AppliesJobUpdates(t *testing.T) {
	m, _, _ := newTestWatchModel()

	model, cmd := m.Update(JobUpdateMsg(jobResult("build", "", pipeline.StatusSuccess)))
	require.NotNil(t, cmd)

	updated, ok := model.(*WatchModel)
	require.True(t, ok)
	assert.Equal(t, 1, updated.Rows())
	assert.Contains(t, updated.View(), "build")
	assert.Contains(t, updated.View(), "success")
}

func TestWatchModel_MatrixInstancesGetOwnRows(t *testing.T) {
	m, _, _ := newTestWatchModel()

	m.Update(JobUpdateMsg(jobResult("test", "test [py=3.11]", pipeline.StatusSuccess)))
	m.Update(JobUpdateMsg(jobResult("test", "test [py=3.12]", pipeline.StatusFailure)))

	assert.Equal(t, 2, m.Rows())
	view := m.View()
	assert.Contains(t, view, "test [py=3.11]")
	assert.Contains(t, view, "test [py=3.12]")
}

func TestWatchModel_RepeatUpdateReplacesRow(t *testing.T) {
	m, _, _ := newTestWatchModel()

	m.Update(JobUpdateMsg(jobResult("build", "", pipeline.StatusRunning)))
	m.Update(JobUpdateMsg(jobResult("build", "", pipeline.StatusSuccess)))

	assert.Equal(t, 1, m.Rows())
	assert.Contains(t, m.View(), "success")
}

func TestWatchModel_RunDoneQuits(t *testing.T) {
	m, _, _ := newTestWatchModel()

	model, cmd := m.Update(RunDoneMsg{Err: nil})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	updated, ok := model.(*WatchModel)
	require.True(t, ok)
	assert.True(t, updated.Done())
	require.NoError(t, updated.Err())
	assert.Contains(t, updated.View(), "run complete")
}

func TestWatchModel_RunDoneWithErrorShowsFailure(t *testing.T) {
	m, _, _ := newTestWatchModel()

	m.Update(JobUpdateMsg(jobResult("build", "", pipeline.StatusFailure)))
	m.Update(RunDoneMsg{Err: errors.New("1 job instance(s) failed")})

	view := m.View()
	assert.Contains(t, view, "run failed")
	assert.Contains(t, view, "1 failed")
}

func TestWatchModel_QuitKeyStopsProgram(t *testing.T) {
	m, _, _ := newTestWatchModel()

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	updated, ok := model.(*WatchModel)
	require.True(t, ok)
	assert.Empty(t, updated.View())
}

func TestWatchModel_WaitForUpdateDrainsChannels(t *testing.T) {
	m, updates, result := newTestWatchModel()

	updates <- jobResult("lint", "", pipeline.StatusSuccess)
	msg := m.waitForUpdate()()
	update, ok := msg.(JobUpdateMsg)
	require.True(t, ok)
	assert.Equal(t, "lint", update.Job)

	close(updates)
	result <- nil
	msg = m.waitForUpdate()()
	done, ok := msg.(RunDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.Err)
}

func TestWatchModel_ViewListsHeaderAndFooter(t *testing.T) {
	m, _, _ := newTestWatchModel()
	m.Update(JobUpdateMsg(jobResult("build", "", pipeline.StatusSuccess)))
	m.Update(JobUpdateMsg(jobResult("docs", "", pipeline.StatusSkipped)))

	view := m.View()
	assert.True(t, strings.Contains(view, "pipeline ci @ refs/heads/main"))
	assert.Contains(t, view, "1 succeeded, 0 failed, 1 skipped")
	assert.Contains(t, view, "Press 'q' to quit")
}
