package bayesnet

// maxProbability caps every CPT row so the model never claims certainty.
const maxProbability = 0.95

// nodeSpec declares one node of the network: its base rate (prior for root
// nodes) and, for complications, the parent list with each parent's
// independent noisy-OR contribution, in the same order.
type nodeSpec struct {
	id       NodeVariable
	name     string
	baseRate float64
	parents  []NodeVariable
	weights  []float64
}

// buildCPT enumerates all 2^k parent assignments for a spec and fills each
// row with the noisy-OR combination:
//
//	P(child=false | S) = (1 - baseRate) * prod_{p in S} (1 - q_p)
//
// where S is the set of true parents and q_p is parent p's contribution.
// Assignments are generated with bit i of the row index controlling parent i,
// so row 0 is the all-false assignment and, at equal match counts, earlier
// rows have fewer parents set. A root node (k = 0) gets the single row
// {{} : baseRate}.
func buildCPT(spec nodeSpec) []CPTEntry {
	k := len(spec.parents)
	rows := make([]CPTEntry, 0, 1<<k)

	for mask := 0; mask < 1<<k; mask++ {
		assignment := make(map[NodeVariable]bool, k)
		pFalse := 1 - spec.baseRate
		for i, parent := range spec.parents {
			on := mask&(1<<i) != 0
			assignment[parent] = on
			if on {
				pFalse *= 1 - spec.weights[i]
			}
		}
		// With no true parents the complement round-trips through floating
		// point; the row is the base rate by definition, so store it exactly.
		pTrue := spec.baseRate
		if mask != 0 {
			pTrue = 1 - pFalse
		}
		if pTrue > maxProbability {
			pTrue = maxProbability
		}
		rows = append(rows, CPTEntry{ParentValues: assignment, ProbabilityTrue: pTrue})
	}
	return rows
}

// adjustedCPT rebuilds the pristine noisy-OR table for a spec and shifts
// every row by the given level, clamped to [0.001, 0.95]. Rebuilding from
// the node declaration keeps the adjustment a level rather than a compounding
// delta, so reloading a persisted adjustment reproduces identical tables.
func adjustedCPT(spec nodeSpec, adjustment float64) []CPTEntry {
	rows := buildCPT(spec)
	if adjustment == 0 {
		return rows
	}
	for i := range rows {
		rows[i].ProbabilityTrue = clampProbability(rows[i].ProbabilityTrue + adjustment)
	}
	return rows
}

func clampProbability(p float64) float64 {
	if p < 0.001 {
		return 0.001
	}
	if p > maxProbability {
		return maxProbability
	}
	return p
}
