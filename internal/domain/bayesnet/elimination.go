package bayesnet

import (
	"sort"
	"strings"
)

// factor is a function over full boolean assignments of its variables.
// Variables are kept sorted so assignment keys are canonical; rows removed
// by evidence reduction are absent from the map rather than zeroed, keeping
// the support sparse.
type factor struct {
	vars   []NodeVariable
	values map[string]float64
}

func sortVariables(vars []NodeVariable) []NodeVariable {
	out := append([]NodeVariable(nil), vars...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// assignmentKey builds the canonical "varA:T,varB:F" key for a full
// assignment of the (sorted) variable list.
func assignmentKey(vars []NodeVariable, assignment map[NodeVariable]bool) string {
	var b strings.Builder
	for i, v := range vars {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(string(v))
		if assignment[v] {
			b.WriteString(":T")
		} else {
			b.WriteString(":F")
		}
	}
	return b.String()
}

// eachAssignment invokes fn with every full boolean assignment of vars.
func eachAssignment(vars []NodeVariable, fn func(assignment map[NodeVariable]bool)) {
	k := len(vars)
	for mask := 0; mask < 1<<k; mask++ {
		assignment := make(map[NodeVariable]bool, k)
		for i, v := range vars {
			assignment[v] = mask&(1<<i) != 0
		}
		fn(assignment)
	}
}

func (f *factor) contains(v NodeVariable) bool {
	for _, fv := range f.vars {
		if fv == v {
			return true
		}
	}
	return false
}

// buildFactor turns a node's CPT into a factor over {node} union parents.
// Each CPT row contributes a true row and the complementary false row.
func buildFactor(node *Node) *factor {
	vars := sortVariables(append([]NodeVariable{node.ID}, node.Parents...))
	f := &factor{vars: vars, values: make(map[string]float64, 2*len(node.CPT))}
	for _, row := range node.CPT {
		assignment := make(map[NodeVariable]bool, len(vars))
		for p, val := range row.ParentValues {
			assignment[p] = val
		}
		assignment[node.ID] = true
		f.values[assignmentKey(vars, assignment)] = row.ProbabilityTrue
		assignment[node.ID] = false
		f.values[assignmentKey(vars, assignment)] = row.ProbabilityFalse()
	}
	return f
}

// reduce drops every row inconsistent with an observed value. The factor's
// dimensionality is unchanged.
func (f *factor) reduce(v NodeVariable, value bool) {
	if !f.contains(v) {
		return
	}
	eachAssignment(f.vars, func(assignment map[NodeVariable]bool) {
		if assignment[v] != value {
			delete(f.values, assignmentKey(f.vars, assignment))
		}
	})
}

// project reads the factor's value for the restriction of a wider assignment
// to this factor's variables. The second return is false for rows removed by
// evidence reduction.
func (f *factor) project(assignment map[NodeVariable]bool) (float64, bool) {
	val, ok := f.values[assignmentKey(f.vars, assignment)]
	return val, ok
}

// multiplyFactors takes the union of both variable sets and fills the full
// cross-product of assignments with the product of the operands' rows.
func multiplyFactors(a, b *factor) *factor {
	seen := make(map[NodeVariable]bool, len(a.vars)+len(b.vars))
	union := make([]NodeVariable, 0, len(a.vars)+len(b.vars))
	for _, v := range append(append([]NodeVariable(nil), a.vars...), b.vars...) {
		if !seen[v] {
			seen[v] = true
			union = append(union, v)
		}
	}
	union = sortVariables(union)

	out := &factor{vars: union, values: make(map[string]float64)}
	eachAssignment(union, func(assignment map[NodeVariable]bool) {
		av, ok := a.project(assignment)
		if !ok {
			return
		}
		bv, ok := b.project(assignment)
		if !ok {
			return
		}
		out.values[assignmentKey(union, assignment)] = av * bv
	})
	return out
}

// sumOutVariable marginalizes one variable by summing the row pairs that
// differ only in its value.
func sumOutVariable(f *factor, v NodeVariable) *factor {
	remaining := make([]NodeVariable, 0, len(f.vars)-1)
	for _, fv := range f.vars {
		if fv != v {
			remaining = append(remaining, fv)
		}
	}
	out := &factor{vars: remaining, values: make(map[string]float64)}
	eachAssignment(f.vars, func(assignment map[NodeVariable]bool) {
		val, ok := f.project(assignment)
		if !ok {
			return
		}
		out.values[assignmentKey(remaining, assignment)] += val
	})
	return out
}

// ancestralClosure walks parent edges from the query variable and every
// evidence variable, returning the minimal relevant set in discovery order.
func (n *Network) ancestralClosure(query NodeVariable, evidence []Evidence) []NodeVariable {
	var order []NodeVariable
	visited := make(map[NodeVariable]bool)

	visit := func(start NodeVariable) {
		if n.nodes[start] == nil || visited[start] {
			return
		}
		queue := []NodeVariable{start}
		visited[start] = true
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			order = append(order, v)
			for _, p := range n.nodes[v].Parents {
				if !visited[p] {
					visited[p] = true
					queue = append(queue, p)
				}
			}
		}
	}

	visit(query)
	for _, ev := range evidence {
		visit(ev.Variable)
	}
	return order
}

// VariableElimination computes the exact posterior for a variable given
// evidence, over the ancestral subgraph only. Unknown variables and
// zero-support evidence both yield {0, 0} rather than an error.
func (n *Network) VariableElimination(query NodeVariable, evidence []Evidence) ExactResult {
	if n.nodes[query] == nil {
		return ExactResult{}
	}

	relevant := n.ancestralClosure(query, evidence)
	factors := make([]*factor, 0, len(relevant))
	for _, v := range relevant {
		factors = append(factors, buildFactor(n.nodes[v]))
	}

	observed := make(map[NodeVariable]bool)
	for _, ev := range evidence {
		if n.nodes[ev.Variable] == nil {
			continue
		}
		if prev, ok := observed[ev.Variable]; ok && prev != ev.Value {
			// Contradictory evidence empties every consistent row.
			return ExactResult{}
		}
		observed[ev.Variable] = ev.Value
		for _, f := range factors {
			f.reduce(ev.Variable, ev.Value)
		}
	}

	// Eliminate hidden variables in discovery order.
	for _, v := range relevant {
		if v == query {
			continue
		}
		if _, ok := observed[v]; ok {
			continue
		}
		var combined *factor
		rest := factors[:0]
		for _, f := range factors {
			if !f.contains(v) {
				rest = append(rest, f)
				continue
			}
			if combined == nil {
				combined = f
			} else {
				combined = multiplyFactors(combined, f)
			}
		}
		factors = rest
		if combined != nil {
			factors = append(factors, sumOutVariable(combined, v))
		}
	}

	if len(factors) == 0 {
		return ExactResult{}
	}
	final := factors[0]
	for _, f := range factors[1:] {
		final = multiplyFactors(final, f)
	}

	var pTrue, pFalse float64
	eachAssignment(final.vars, func(assignment map[NodeVariable]bool) {
		val, ok := final.project(assignment)
		if !ok {
			return
		}
		if assignment[query] {
			pTrue += val
		} else {
			pFalse += val
		}
	})

	total := pTrue + pFalse
	if total == 0 {
		return ExactResult{}
	}
	return ExactResult{ProbabilityTrue: pTrue / total, ProbabilityFalse: pFalse / total}
}
