package check

import (
	"context"
	"fmt"
	"sort"
)

// Registry is the pluggable collection of named checks.
type Registry struct {
	checks []Check
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a check. Registration order does not affect the aggregate
// result; checks are evaluated in stable name order for readable output.
func (r *Registry) Register(c Check) {
	r.checks = append(r.checks, c)
}

// ForPhase returns the checks registered for a phase, optionally narrowed to
// one category, in name order.
func (r *Registry) ForPhase(phase Phase, category Category) []Check {
	var out []Check
	for _, c := range r.checks {
		if !c.AppliesTo(phase) {
			continue
		}
		if category != "" && c.Category != category {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RunAll evaluates every check registered for the phase. All checks always
// run; nothing short-circuits. A check that panics is converted into a
// failed result. An advisory check's failure is downgraded to a warning so
// it never blocks a gated caller.
//
// Zero registered checks for a requested phase is a configuration error.
func (r *Registry) RunAll(ctx context.Context, phase Phase, category Category, cc *Context) ([]Result, error) {
	checks := r.ForPhase(phase, category)
	if len(checks) == 0 {
		return nil, fmt.Errorf("no checks registered for phase %s: at least one check is required", phase)
	}

	results := make([]Result, 0, len(checks))
	for _, c := range checks {
		res := runOne(ctx, c, cc)
		res.Name = c.Name
		res.Category = c.Category
		if res.Outcome == Fail && c.Severity == Advisory {
			res.Outcome = Warn
		}
		results = append(results, res)
	}
	return results, nil
}

// runOne evaluates a single check, turning panics into failed results.
func runOne(ctx context.Context, c Check, cc *Context) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = fail("check execution failed: %v", r)
		}
	}()

	if c.Run == nil {
		return fail("check has no implementation")
	}
	return c.Run(ctx, cc)
}
