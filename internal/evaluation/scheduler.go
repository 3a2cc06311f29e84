package evaluation

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/agusespa/promptgauge/internal/types"
)

// DefaultConcurrency caps in-flight provider calls when no explicit limit is
// given.
const DefaultConcurrency = 6

// Scheduler fans one evaluation per test case out over a bounded worker
// pool. Concurrency 1 is the serial debugging mode.
type Scheduler struct {
	Concurrency int
}

// Run dispatches fn for every case under the concurrency cap. Each worker
// writes into its own slot of an index-keyed slice and results are merged
// once after all workers finish, so no locks guard the aggregate and the
// result set is independent of completion order. Cancelling ctx stops
// dispatching new work; already-dispatched calls finish or time out, and
// their outcomes are still collected. The second return value is false when
// cancellation prevented some cases from being dispatched.
func (s Scheduler) Run(ctx context.Context, cases []types.TestCase, fn func(context.Context, types.TestCase) types.Outcome) ([]types.Outcome, bool) {
	limit := s.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	slots := make([]*types.Outcome, len(cases))
	var g errgroup.Group
	g.SetLimit(limit)

	dispatched := 0
	for i, tc := range cases {
		if ctx.Err() != nil {
			break
		}
		dispatched++
		i, tc := i, tc
		g.Go(func() error {
			outcome := fn(ctx, tc)
			slots[i] = &outcome
			return nil
		})
	}
	_ = g.Wait()

	outcomes := make([]types.Outcome, 0, dispatched)
	for _, slot := range slots {
		if slot != nil {
			outcomes = append(outcomes, *slot)
		}
	}
	// Keyed by test id, not completion order: parallel and serial runs over
	// identical responses yield identical reports.
	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].TestID < outcomes[j].TestID
	})

	return outcomes, dispatched == len(cases)
}
