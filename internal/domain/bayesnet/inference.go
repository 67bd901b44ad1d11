package bayesnet

import (
	"fmt"
	"sort"
	"strings"
)

const unknownComplicationExplanation = "Unknown complication"

// unknownResult is the resilient answer for a variable the network does not
// know; queries never fail on caller typos.
func unknownResult(v NodeVariable) InferenceResult {
	return InferenceResult{Variable: v, Explanation: unknownComplicationExplanation}
}

// QueryComplication answers a single-node query in O(|parents|) without
// running full elimination. It picks the CPT row with the most matching
// observed parent values (a best-effort match, not a marginalization) and
// multiplies in a (1 - prior*0.5) correction for each unobserved parent.
// This is a documented approximation of the posterior, not an exact one;
// VariableElimination gives the exact answer.
func (n *Network) QueryComplication(target NodeVariable, evidence []Evidence) InferenceResult {
	node := n.nodes[target]
	if node == nil {
		return unknownResult(target)
	}

	observed := make(map[NodeVariable]bool, len(node.Parents))
	for _, ev := range evidence {
		for _, p := range node.Parents {
			if ev.Variable == p {
				observed[p] = ev.Value
			}
		}
	}

	// Best-effort row match: most agreeing observed parents wins; the first
	// such row (all unobserved parents false) breaks ties.
	best := node.CPT[0]
	bestMatches := -1
	for _, row := range node.CPT {
		matches := 0
		for v, val := range observed {
			if row.ParentValues[v] == val {
				matches++
			}
		}
		if matches > bestMatches {
			bestMatches = matches
			best = row
		}
	}

	pTrue := best.ProbabilityTrue
	for _, p := range node.Parents {
		if _, ok := observed[p]; !ok {
			pTrue *= 1 - n.nodes[p].PriorProbability*0.5
		}
	}

	return InferenceResult{
		Variable:         target,
		ProbabilityTrue:  pTrue,
		ProbabilityFalse: 1 - pTrue,
		PriorProbability: node.PriorProbability,
		RiskMultiplier:   pTrue / node.PriorProbability,
		Explanation:      n.explainEvidence(node, evidence),
	}
}

// explainEvidence names the active evidence variables that are direct
// parents of the queried node.
func (n *Network) explainEvidence(node *Node, evidence []Evidence) string {
	var active []string
	for _, ev := range evidence {
		if !ev.Value {
			continue
		}
		for _, p := range node.Parents {
			if ev.Variable == p {
				active = append(active, n.nodes[p].Name)
			}
		}
	}
	if len(active) == 0 {
		return "No specific risk factors identified"
	}
	return fmt.Sprintf("Elevated risk driven by: %s", strings.Join(active, ", "))
}

// QueryAllComplications runs the approximate query for every complication,
// sorted by descending probability (ties keep enumeration order), and
// classifies the mean probability as an overall risk level.
func (n *Network) QueryAllComplications(evidence []Evidence) RiskSummary {
	results := make([]InferenceResult, 0, len(complicationOrder))
	sum := 0.0
	for _, v := range complicationOrder {
		r := n.QueryComplication(v, evidence)
		results = append(results, r)
		sum += r.ProbabilityTrue
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ProbabilityTrue > results[j].ProbabilityTrue
	})

	score := sum / float64(len(results))
	return RiskSummary{
		Complications:           results,
		HighestRiskComplication: results[0].Variable,
		OverallRiskScore:        score,
		RiskLevel:               ClassifyRisk(score),
	}
}
