package forecast

import (
	"time"

	"milecast/internal/graph"
	"milecast/internal/state"
)

// signalKind identifies which of the delay signals produced the dominant
// own-delay candidate for a work item.
type signalKind int

const (
	signalNone signalKind = iota
	signalScenario
	signalRemaining
	signalCompletion
	signalDateSlip
	signalExternal
	signalStatus
)

// nodeDelay is the memoised delay state for one work item.
type nodeDelay struct {
	own        float64
	propagated float64
	// viaUpstream is the upstream id whose propagated delay dominates, ""
	// when the item's own delay stands alone. Ties break lexicographically.
	viaUpstream string
	signal      signalKind
	// remaining is the remaining-work figure used in contribution labels.
	remaining float64
	// scenarioDays is the raw injected delay when signal == signalScenario.
	scenarioDays float64
}

// delayModel computes per-item own-delays from the six signals and propagates
// them along the dependency graph as a max-plus recurrence. The memo table is
// call-local: one model per forecast invocation.
type delayModel struct {
	snap      *state.Snapshot
	g         *graph.Graph
	asOf      time.Time
	memo      map[string]nodeDelay
	governing map[string]state.Dependency
}

func newDelayModel(snap *state.Snapshot, g *graph.Graph, asOf time.Time) *delayModel {
	dm := &delayModel{
		snap:      snap,
		g:         g,
		asOf:      asOf,
		memo:      make(map[string]nodeDelay, len(snap.WorkItems)),
		governing: make(map[string]state.Dependency),
	}

	// The governing edge for an item is the explicit inbound edge with the
	// highest criticality multiplier; ties break by edge id.
	for _, d := range snap.Dependencies {
		cur, ok := dm.governing[d.ToID]
		if !ok {
			dm.governing[d.ToID] = d
			continue
		}
		dMult, curMult := d.Criticality.Multiplier(), cur.Criticality.Multiplier()
		if dMult > curMult || (dMult == curMult && d.ID < cur.ID) {
			dm.governing[d.ToID] = d
		}
	}

	// Fill the memo in topological order so every upstream entry exists
	// before its dependents are visited.
	for _, id := range g.TopoOrder() {
		dm.memo[id] = dm.compute(id)
	}
	return dm
}

// propagated returns the critical-path delay attributable to the item:
// own delay plus the maximum propagated delay among its upstream items.
func (dm *delayModel) propagated(id string) float64 {
	return dm.memo[id].propagated
}

// criticalChain walks the argmax propagation path starting at the given item,
// most-downstream first.
func (dm *delayModel) criticalChain(id string) []string {
	var chain []string
	for id != "" {
		chain = append(chain, id)
		id = dm.memo[id].viaUpstream
	}
	return chain
}

func (dm *delayModel) compute(id string) nodeDelay {
	w, ok := dm.snap.WorkItems[id]
	if !ok {
		return nodeDelay{}
	}

	// Completed items contribute nothing and stop the ripple.
	if w.Status == state.WorkItemCompleted {
		return nodeDelay{}
	}

	nd := dm.ownDelay(w)

	// Max-plus recurrence over upstream items. Upstream order is sorted, so
	// the first strictly-greater entry wins and ties resolve to the
	// lexicographically smallest id.
	for _, up := range dm.g.Upstream(id) {
		if p := dm.memo[up].propagated; p > 0 {
			if nd.viaUpstream == "" || p > dm.memo[nd.viaUpstream].propagated {
				nd.viaUpstream = up
			}
		}
	}
	nd.propagated = nd.own
	if nd.viaUpstream != "" {
		nd.propagated += dm.memo[nd.viaUpstream].propagated
	}
	return nd
}

// ownDelay combines the applicable signals by taking the maximum candidate:
// the signals are alternative lenses on the same slip, never summed. The
// winner is then shaped by the governing edge (criticality multiplier, slack
// reduction, delay probability).
func (dm *delayModel) ownDelay(w state.WorkItem) nodeDelay {
	type candidate struct {
		days   float64
		signal signalKind
	}
	var candidates []candidate

	// 1. Scenario override. Zero entries are ignored so a zero-delay
	// scenario is a strict no-op.
	scenarioDays := dm.snap.ScenarioDelays[w.ID]
	if scenarioDays > 0 {
		candidates = append(candidates, candidate{scenarioDays, signalScenario})
	}

	// 2. Progress remaining.
	var remainingWork float64
	if w.RemainingDays != nil && *w.RemainingDays > 0 {
		remainingWork = *w.RemainingDays
		candidates = append(candidates, candidate{remainingWork, signalRemaining})
	}

	// 3. Completion percentage. When both progress signals are present the
	// more pessimistic one wins via the max.
	if w.CompletionPercentage != nil && *w.CompletionPercentage < 1 && w.EstimatedDays > 0 {
		byCompletion := (1 - *w.CompletionPercentage) * w.EstimatedDays
		if byCompletion > remainingWork {
			remainingWork = byCompletion
		}
		candidates = append(candidates, candidate{byCompletion, signalCompletion})
	}

	// 4. Date slip against the needed-by date. A stated completion already in
	// the past is floored at asOf: an unfinished item cannot land before now.
	if w.ExpectedCompletion != nil {
		if neededBy, ok := dm.neededBy(w); ok {
			expected := *w.ExpectedCompletion
			if dm.asOf.After(expected) {
				expected = dm.asOf
			}
			if slip := expected.Sub(neededBy).Hours() / 24; slip > 0 {
				candidates = append(candidates, candidate{slip, signalDateSlip})
			}
		}
	}

	// 5. External-team history.
	if w.ExternalTeamID != "" {
		if hist, ok := dm.snap.TeamHistory[w.ExternalTeamID]; ok {
			base := w.EstimatedDays
			if remainingWork > base {
				base = remainingWork
			}
			candidates = append(candidates, candidate{
				base * (1 - hist.ReliabilityScore) * hist.SlipProbability,
				signalExternal,
			})
		}
	}

	// 6. Status fallback when no structured signal applied.
	if len(candidates) == 0 {
		switch w.Status {
		case state.WorkItemBlocked:
			days := w.EstimatedDays
			if w.RemainingDays != nil {
				days = *w.RemainingDays
			}
			candidates = append(candidates, candidate{days, signalStatus})
		case state.WorkItemInProgress:
			candidates = append(candidates, candidate{w.EstimatedDays / 2, signalStatus})
		}
		// not_started carries no downstream pressure of its own.
	}

	best := candidate{0, signalNone}
	for _, c := range candidates {
		if c.days > best.days {
			best = c
		}
	}
	if best.days <= 0 {
		return nodeDelay{}
	}

	days := best.days
	probability := 1.0
	if edge, ok := dm.governing[w.ID]; ok {
		days *= edge.Criticality.Multiplier()
		days -= edge.SlackDays
		if days < 0 {
			days = 0
		}
		if edge.ProbabilityDelay != nil {
			probability = *edge.ProbabilityDelay
		}
	}
	days *= probability

	label := remainingWork
	if label == 0 {
		label = best.days
	}
	return nodeDelay{
		own:          days,
		signal:       best.signal,
		remaining:    label,
		scenarioDays: scenarioDays,
	}
}

// neededBy derives the date the item's output is needed: the earliest planned
// start among its dependents, falling back to the milestone target date when
// nothing waits on it.
func (dm *delayModel) neededBy(w state.WorkItem) (time.Time, bool) {
	var needed time.Time
	found := false
	for _, depID := range dm.g.Dependents(w.ID) {
		dep, ok := dm.snap.WorkItems[depID]
		if !ok || dep.ExpectedCompletion == nil {
			continue
		}
		start := dep.ExpectedCompletion.AddDate(0, 0, -int(dep.EstimatedDays))
		if !found || start.Before(needed) {
			needed = start
			found = true
		}
	}
	if found {
		return needed, true
	}
	if m, ok := dm.snap.Milestones[w.MilestoneID]; ok && !m.TargetDate.IsZero() {
		return m.TargetDate, true
	}
	return time.Time{}, false
}
