package state

import (
	"sort"
	"time"
)

// Document is the serialized portfolio layout: one JSON document holding all
// entities as flat lists.
type Document struct {
	GeneratedAt  time.Time             `json:"generated_at"`
	Milestones   []Milestone           `json:"milestones"`
	WorkItems    []WorkItem            `json:"work_items"`
	Dependencies []Dependency          `json:"dependencies,omitempty"`
	Risks        []Risk                `json:"risks,omitempty"`
	Decisions    []Decision            `json:"decisions,omitempty"`
	Issues       []Issue               `json:"issues,omitempty"`
	Actors       []Actor               `json:"actors,omitempty"`
	TeamHistory  []ExternalTeamHistory `json:"team_history,omitempty"`
}

// Snapshot is a logically immutable bundle of all entities indexed by id.
// The core treats it as read-only; scenario perturbations are applied by
// constructing a shallow copy that lives for a single forecast call.
type Snapshot struct {
	GeneratedAt  time.Time
	Milestones   map[string]Milestone
	WorkItems    map[string]WorkItem
	Dependencies map[string]Dependency
	Risks        map[string]Risk
	Decisions    map[string]Decision
	Issues       map[string]Issue
	Actors       map[string]Actor
	TeamHistory  map[string]ExternalTeamHistory

	// ScenarioDelays maps work item id to injected delay days. Empty except
	// on scenario copies consumed inside one forecast invocation.
	ScenarioDelays map[string]float64
}

// NewSnapshot indexes a document and materialises both directions of the
// milestone / work-item relationship so neither needs to be walked at
// forecast time.
func NewSnapshot(doc Document) *Snapshot {
	s := &Snapshot{
		GeneratedAt:  doc.GeneratedAt,
		Milestones:   make(map[string]Milestone, len(doc.Milestones)),
		WorkItems:    make(map[string]WorkItem, len(doc.WorkItems)),
		Dependencies: make(map[string]Dependency, len(doc.Dependencies)),
		Risks:        make(map[string]Risk, len(doc.Risks)),
		Decisions:    make(map[string]Decision, len(doc.Decisions)),
		Issues:       make(map[string]Issue, len(doc.Issues)),
		Actors:       make(map[string]Actor, len(doc.Actors)),
		TeamHistory:  make(map[string]ExternalTeamHistory, len(doc.TeamHistory)),
	}

	for _, m := range doc.Milestones {
		s.Milestones[m.ID] = m
	}
	for _, w := range doc.WorkItems {
		s.WorkItems[w.ID] = w
	}
	for _, d := range doc.Dependencies {
		s.Dependencies[d.ID] = d
	}
	for _, r := range doc.Risks {
		s.Risks[r.ID] = r
	}
	for _, d := range doc.Decisions {
		s.Decisions[d.ID] = d
	}
	for _, i := range doc.Issues {
		s.Issues[i.ID] = i
	}
	for _, a := range doc.Actors {
		s.Actors[a.ID] = a
	}
	for _, h := range doc.TeamHistory {
		s.TeamHistory[h.TeamID] = h
	}

	// 1. Back-fill item -> milestone pointers from milestone membership.
	for _, m := range doc.Milestones {
		for _, wid := range m.WorkItemIDs {
			if w, ok := s.WorkItems[wid]; ok && w.MilestoneID == "" {
				w.MilestoneID = m.ID
				s.WorkItems[wid] = w
			}
		}
	}

	// 2. Back-fill milestone membership from item pointers, keeping the
	// milestone's declared order and appending strays in sorted id order.
	strays := make(map[string][]string)
	for _, w := range doc.WorkItems {
		if w.MilestoneID == "" {
			continue
		}
		m, ok := s.Milestones[w.MilestoneID]
		if !ok {
			continue
		}
		if !containsString(m.WorkItemIDs, w.ID) {
			strays[m.ID] = append(strays[m.ID], w.ID)
		}
	}
	for mid, ids := range strays {
		sort.Strings(ids)
		m := s.Milestones[mid]
		m.WorkItemIDs = append(append([]string{}, m.WorkItemIDs...), ids...)
		s.Milestones[mid] = m
	}

	return s
}

// WithScenarioDelay returns a shallow copy carrying an injected delay for one
// work item. The original snapshot is untouched.
func (s *Snapshot) WithScenarioDelay(workItemID string, days float64) *Snapshot {
	clone := *s
	clone.ScenarioDelays = make(map[string]float64, len(s.ScenarioDelays)+1)
	for k, v := range s.ScenarioDelays {
		clone.ScenarioDelays[k] = v
	}
	clone.ScenarioDelays[workItemID] = days
	return &clone
}

// WithRiskImpactReduced returns a shallow copy in which one risk's effective
// impact is reduced by the given days (floored at 0). Only the Risks map is
// cloned.
func (s *Snapshot) WithRiskImpactReduced(riskID string, days float64) *Snapshot {
	clone := *s
	clone.Risks = make(map[string]Risk, len(s.Risks))
	for k, v := range s.Risks {
		clone.Risks[k] = v
	}
	r, ok := clone.Risks[riskID]
	if !ok {
		return &clone
	}
	r.Impact.ImpactDays -= days
	if r.Impact.ImpactDays < 0 {
		r.Impact.ImpactDays = 0
	}
	clone.Risks[riskID] = r
	return &clone
}

// RisksForMilestone returns the milestone's risks in sorted id order.
func (s *Snapshot) RisksForMilestone(milestoneID string) []Risk {
	var out []Risk
	for _, id := range sortedKeysRisk(s.Risks) {
		if s.Risks[id].MilestoneID == milestoneID {
			out = append(out, s.Risks[id])
		}
	}
	return out
}

// DecisionsForMilestone returns the milestone's decisions in sorted id order.
func (s *Snapshot) DecisionsForMilestone(milestoneID string) []Decision {
	var out []Decision
	ids := make([]string, 0, len(s.Decisions))
	for id := range s.Decisions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if s.Decisions[id].MilestoneID == milestoneID {
			out = append(out, s.Decisions[id])
		}
	}
	return out
}

// OpenIssueForDependency returns the open dependency_blocked issue linked to
// the given dependency, if one exists. The snapshot invariant allows at most
// one.
func (s *Snapshot) OpenIssueForDependency(dependencyID string) (Issue, bool) {
	ids := make([]string, 0, len(s.Issues))
	for id := range s.Issues {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		iss := s.Issues[id]
		if iss.Type == IssueDependencyBlocked && iss.DependencyID == dependencyID &&
			(iss.Status == IssueOpen || iss.Status == IssueInProgress) {
			return iss, true
		}
	}
	return Issue{}, false
}

// WorkItemTitle resolves an item id to its title, falling back to the id for
// unknown items so command reasons stay readable.
func (s *Snapshot) WorkItemTitle(id string) string {
	if w, ok := s.WorkItems[id]; ok && w.Title != "" {
		return w.Title
	}
	return id
}

func sortedKeysRisk(m map[string]Risk) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
