// Package report accumulates check outcomes into a run report and renders
// it. Aggregation is separated from check execution: the aggregator only
// ever sees finished results and rendering is a pure projection of the
// accumulated state.
package report

import (
	"fmt"
	"time"

	"github.com/stacklift/stacklift/internal/check"
)

// Report is the finalized aggregate of one check phase plus run metadata.
// It is built incrementally, finalized once, and never mutated after.
type Report struct {
	Stack       string         `json:"stack"`
	Environment string         `json:"environment"`
	Phase       check.Phase    `json:"phase"`
	Total       int            `json:"total"`
	Passed      int            `json:"passed"`
	Failed      int            `json:"failed"`
	Warned      int            `json:"warned"`
	SuccessRate int            `json:"successRate"`
	Items       []check.Result `json:"items"`

	// SnapshotID records the final data snapshot taken under --keep-data.
	SnapshotID string `json:"snapshotId,omitempty"`

	// Recommendations is free text for the operator, one entry per line.
	Recommendations []string  `json:"recommendations,omitempty"`
	GeneratedAt     time.Time `json:"generatedAt"`
}

// Aggregator accumulates check results during one phase.
type Aggregator struct {
	stack     string
	env       string
	phase     check.Phase
	items     []check.Result
	snapshot  string
	recs      []string
	finalized bool
}

// NewAggregator creates an aggregator for one (stack, environment, phase).
func NewAggregator(stack, env string, phase check.Phase) *Aggregator {
	return &Aggregator{stack: stack, env: env, phase: phase}
}

// Add appends a single result. Adding after Finalize panics: a finalized
// report is immutable.
func (a *Aggregator) Add(r check.Result) {
	if a.finalized {
		panic("report: Add after Finalize")
	}
	a.items = append(a.items, r)
}

// AddAll appends a batch of results.
func (a *Aggregator) AddAll(rs []check.Result) {
	for _, r := range rs {
		a.Add(r)
	}
}

// RecordSnapshot records the identifier of a preserved data snapshot.
func (a *Aggregator) RecordSnapshot(id string) {
	a.snapshot = id
}

// SnapshotID returns the recorded snapshot identifier, if any.
func (a *Aggregator) SnapshotID() string {
	return a.snapshot
}

// SetPhase relabels the aggregator's phase. A deploy run starts collecting
// pre-deploy results and is relabeled once verification runs, so the single
// report it emits carries the furthest phase reached.
func (a *Aggregator) SetPhase(p check.Phase) {
	if a.finalized {
		panic("report: SetPhase after Finalize")
	}
	a.phase = p
}

// Recommend appends a free-text recommendation for the operator.
func (a *Aggregator) Recommend(format string, v ...interface{}) {
	a.recs = append(a.recs, fmt.Sprintf(format, v...))
}

// Finalize computes the totals and returns the immutable report. The
// success rate is an integer percentage rounded down and depends only on
// the accumulated counts, never on result order.
func (a *Aggregator) Finalize() *Report {
	a.finalized = true

	rep := &Report{
		Stack:           a.stack,
		Environment:     a.env,
		Phase:           a.phase,
		Items:           a.items,
		SnapshotID:      a.snapshot,
		Recommendations: a.recs,
		GeneratedAt:     time.Now(),
	}
	for _, item := range a.items {
		rep.Total++
		switch item.Outcome {
		case check.Pass:
			rep.Passed++
		case check.Fail:
			rep.Failed++
		case check.Warn:
			rep.Warned++
		}
	}
	if rep.Total > 0 {
		rep.SuccessRate = rep.Passed * 100 / rep.Total
	}
	return rep
}

// Blocking reports whether the report contains any blocking failure.
func (r *Report) Blocking() bool {
	return r.Failed > 0
}
