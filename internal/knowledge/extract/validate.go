package extract

import (
	"fmt"

	"github.com/10xr-agents/browse-automation-service/internal/knowledge/model"
)

const maxReportedCycles = 5

// CycleReport names a single detected cycle at the task-step level, with
// its starting node, per §4.9.5 ("reporting up to 5 cycles with starting
// node").
type CycleReport struct {
	StartingTaskID string
	Path           []string
}

// ValidateIterators rejects any loop expressed inside a Task's linear Steps
// array; iterator_spec is the only legal place for a loop (§3.3 linear-
// steps invariant, §4.9.5 "the iterator-validator rejects any loop in
// steps").
func ValidateIterators(tasks []model.Task) []string {
	var violations []string
	for _, t := range tasks {
		seen := map[string]bool{}
		for _, step := range t.Steps {
			if seen[step.ActionID] {
				violations = append(violations, fmt.Sprintf("task %s: action %s repeats in steps (loop outside iterator_spec)", t.TaskID, step.ActionID))
			}
			seen[step.ActionID] = true
		}
	}
	return violations
}

// ValidateGraph runs DFS cycle detection over the task-step adjacency
// derived from transitions, per §4.9.5 ("the graph-validator detects cycles
// at the task-step level by DFS"). Navigation itself may be cyclic (§3.3);
// only task-step sequencing is checked here.
func ValidateGraph(tasks []model.Task) []CycleReport {
	adjacency := map[string][]string{}
	for _, t := range tasks {
		for i := 0; i+1 < len(t.Steps); i++ {
			from, to := t.Steps[i].ActionID, t.Steps[i+1].ActionID
			adjacency[from] = append(adjacency[from], to)
		}
	}

	var reports []CycleReport
	visited := map[string]bool{}
	for start := range adjacency {
		if len(reports) >= maxReportedCycles {
			break
		}
		if visited[start] {
			continue
		}
		if path, found := dfsCycle(start, adjacency, map[string]bool{}, nil); found {
			reports = append(reports, CycleReport{StartingTaskID: start, Path: path})
		}
		visited[start] = true
	}
	return reports
}

func dfsCycle(node string, adjacency map[string][]string, onStack map[string]bool, path []string) ([]string, bool) {
	onStack[node] = true
	path = append(path, node)
	for _, next := range adjacency[node] {
		if onStack[next] {
			return append(path, next), true
		}
		if p, found := dfsCycle(next, adjacency, onStack, path); found {
			return p, true
		}
	}
	onStack[node] = false
	return nil, false
}

// ValidateRecovery requires every ScreenGroup to expose at least one
// outbound recovery edge (§4.9.5, §3.3 "every group has ≥ 1 recovery
// edge").
func ValidateRecovery(groups []model.ScreenGroup) []string {
	var violations []string
	for _, g := range groups {
		if len(g.RecoveryEdges) == 0 {
			violations = append(violations, fmt.Sprintf("group %s (%s) has no recovery edge", g.GroupID, g.Name))
		}
	}
	return violations
}
