package bayesnet

import (
	"time"

	"github.com/google/uuid"
)

// maxAdjustment bounds how far learning may move a CPT from its literature
// values in either direction.
const maxAdjustment = 0.1

func clampAdjustment(adj float64) float64 {
	if adj < -maxAdjustment {
		return -maxAdjustment
	}
	if adj > maxAdjustment {
		return maxAdjustment
	}
	return adj
}

// RecordObservation appends an outcome to the observation log and, once
// enough observations exist for that complication, nudges its CPT toward the
// observed rate:
//
//	adjustment += learningRate * (observedRate - prior)
//
// clamped to +/-0.1 and applied as a level to every row of the table. This
// is a proportional feedback controller on the observed-vs-predicted drift,
// not a Bayesian parameter update.
func (n *Network) RecordObservation(evidence []Evidence, complication NodeVariable, occurred bool) ObservationRecord {
	record := ObservationRecord{
		ID:           uuid.New(),
		Evidence:     append([]Evidence(nil), evidence...),
		Complication: complication,
		Occurred:     occurred,
		Timestamp:    time.Now().UTC(),
	}
	n.observations = append(n.observations, record)

	total, occurrences := 0, 0
	for _, obs := range n.observations {
		if obs.Complication != complication {
			continue
		}
		total++
		if obs.Occurred {
			occurrences++
		}
	}
	if total < n.minObservations {
		return record
	}

	node := n.nodes[complication]
	if node == nil {
		return record
	}
	observedRate := float64(occurrences) / float64(total)
	adj := n.adjustments[complication] + n.learningRate*(observedRate-node.PriorProbability)
	n.adjustments[complication] = clampAdjustment(adj)
	n.applyAdjustment(complication)

	return record
}

// Observations returns a copy of the append-only observation log.
func (n *Network) Observations() []ObservationRecord {
	return append([]ObservationRecord(nil), n.observations...)
}

// SetObservations replaces the log with persisted records. Adjustments are
// restored separately via SetAdjustments; loading does not re-run learning.
func (n *Network) SetObservations(records []ObservationRecord) {
	n.observations = append([]ObservationRecord(nil), records...)
}

// ObservationStats aggregates the log per complication.
func (n *Network) ObservationStats() ObservationStats {
	stats := ObservationStats{
		TotalObservations: len(n.observations),
		ComplicationRates: make(map[NodeVariable]ComplicationRate),
	}
	for _, obs := range n.observations {
		rate := stats.ComplicationRates[obs.Complication]
		rate.Total++
		if obs.Occurred {
			rate.Observed++
		}
		stats.ComplicationRates[obs.Complication] = rate
	}
	for v, rate := range stats.ComplicationRates {
		rate.Rate = float64(rate.Observed) / float64(rate.Total)
		stats.ComplicationRates[v] = rate
	}
	return stats
}
