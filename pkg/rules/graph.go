package rules

import (
	"sort"

	"github.com/goliatone/go-taxform/pkg/schema"
)

// CheckAcyclic verifies that the directed graph of rule dependencies has no
// cycle. Cells without a rule of their own are plain inputs and cannot be
// part of a cycle.
func CheckAcyclic(formID string, ruleList []CalculationRule) error {
	byCell := Index(ruleList)

	// Kahn over the ruled cells only; edges run dependency → dependent.
	indegree := make(map[schema.CellID]int, len(byCell))
	dependents := make(map[schema.CellID][]schema.CellID, len(byCell))
	for id, rule := range byCell {
		if _, ok := indegree[id]; !ok {
			indegree[id] = 0
		}
		for _, dep := range rule.DependsOn {
			if _, ruled := byCell[dep]; !ruled {
				continue
			}
			indegree[id]++
			dependents[dep] = append(dependents[dep], id)
		}
	}

	queue := make([]schema.CellID, 0, len(indegree))
	for id, degree := range indegree {
		if degree == 0 {
			queue = append(queue, id)
		}
	}

	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, next := range dependents[id] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if visited == len(indegree) {
		return nil
	}

	var cycle []schema.CellID
	for id, degree := range indegree {
		if degree > 0 {
			cycle = append(cycle, id)
		}
	}
	sort.Slice(cycle, func(i, j int) bool { return cycle[i] < cycle[j] })
	return &CycleError{FormID: formID, Cells: cycle}
}

// TopoOrder returns the ruled cells reachable from changed, in an evaluation
// order where every dependency precedes its dependents. The changed cell
// itself is excluded. A cycle among the reachable cells is reported as a
// CycleError even though Resolve should have rejected it already.
func TopoOrder(formID string, ruleList []CalculationRule, changed schema.CellID) ([]schema.CellID, error) {
	byCell := Index(ruleList)

	// dependency → dependents over the full rule graph; plain input cells
	// (no rule) may still appear as sources.
	dependents := make(map[schema.CellID][]schema.CellID, len(byCell))
	for id, rule := range byCell {
		for _, dep := range rule.DependsOn {
			dependents[dep] = append(dependents[dep], id)
		}
	}
	for _, deps := range dependents {
		sort.Slice(deps, func(i, j int) bool { return deps[i] < deps[j] })
	}

	// Reachable set from the changed cell.
	reachable := make(map[schema.CellID]bool)
	stack := []schema.CellID{changed}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range dependents[id] {
			if !reachable[next] {
				reachable[next] = true
				stack = append(stack, next)
			}
		}
	}
	if len(reachable) == 0 {
		return nil, nil
	}

	// Kahn restricted to the reachable subgraph. Edges from outside the
	// subgraph (including the changed cell itself) do not count toward the
	// in-degree: those values are already known.
	indegree := make(map[schema.CellID]int, len(reachable))
	for id := range reachable {
		indegree[id] = 0
		for _, dep := range byCell[id].DependsOn {
			if reachable[dep] {
				indegree[id]++
			}
		}
	}

	var queue []schema.CellID
	for id, degree := range indegree {
		if degree == 0 {
			queue = append(queue, id)
		}
	}
	sort.Slice(queue, func(i, j int) bool { return queue[i] < queue[j] })

	order := make([]schema.CellID, 0, len(reachable))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, next := range dependents[id] {
			if !reachable[next] {
				continue
			}
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) != len(reachable) {
		var cycle []schema.CellID
		for id, degree := range indegree {
			if degree > 0 {
				cycle = append(cycle, id)
			}
		}
		sort.Slice(cycle, func(i, j int) bool { return cycle[i] < cycle[j] })
		return nil, &CycleError{FormID: formID, Cells: cycle}
	}
	return order, nil
}
