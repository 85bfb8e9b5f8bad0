// Package checks runs the post-build test suite: import probes,
// dependency presence, compiled-library presence, the pytest suite, and
// import-time performance.
//
// Categories are independent: one category failing does not stop the
// next unless fail-fast is requested. A summary report is written at the
// end of every run, including partially failed ones.
package checks

import (
	"time"

	"github.com/gantryci/gantry/internal/errors"
)

// Category selects which checks run.
type Category string

// Check categories.
const (
	CategoryAll         Category = "all"
	CategoryImport      Category = "import"
	CategoryDeps        Category = "deps"
	CategoryLibrary     Category = "library"
	CategoryPytest      Category = "pytest"
	CategoryPerformance Category = "performance"
)

// Categories returns the runnable categories in execution order,
// excluding the "all" selector.
func Categories() []Category {
	return []Category{CategoryImport, CategoryDeps, CategoryLibrary, CategoryPytest, CategoryPerformance}
}

// ParseCategory validates a category selector.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if c == CategoryAll {
		return c, nil
	}
	for _, known := range Categories() {
		if c == known {
			return c, nil
		}
	}
	return "", errors.Wrapf(errors.ErrUnknownCategory,
		"%q must be one of all, import, deps, library, pytest, performance", s)
}

// CheckStatus is the outcome of a single check.
type CheckStatus string

// Check outcomes.
const (
	CheckPassed  CheckStatus = "passed"
	CheckFailed  CheckStatus = "failed"
	CheckSkipped CheckStatus = "skipped"
)

// Record is one check's result.
type Record struct {
	Category Category      `json:"category"`
	Name     string        `json:"name"`
	Status   CheckStatus   `json:"status"`
	Detail   string        `json:"detail,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Summary accumulates check results. Each category builds its own
// summary and the run merges them; nothing is global.
type Summary struct {
	Passed  int      `json:"passed"`
	Failed  int      `json:"failed"`
	Skipped int      `json:"skipped"`
	Records []Record `json:"records"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Add records one check outcome and bumps the matching counter.
func (s *Summary) Add(r Record) {
	s.Records = append(s.Records, r)
	switch r.Status {
	case CheckPassed:
		s.Passed++
	case CheckFailed:
		s.Failed++
	case CheckSkipped:
		s.Skipped++
	}
}

// Merge folds another summary's records and counters into this one.
func (s *Summary) Merge(other Summary) {
	s.Passed += other.Passed
	s.Failed += other.Failed
	s.Skipped += other.Skipped
	s.Records = append(s.Records, other.Records...)
}

// OK returns true when no check failed.
func (s *Summary) OK() bool {
	return s.Failed == 0
}

// Total returns the number of recorded checks.
func (s *Summary) Total() int {
	return s.Passed + s.Failed + s.Skipped
}
