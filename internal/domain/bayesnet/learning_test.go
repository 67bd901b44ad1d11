package bayesnet

import (
	"math"
	"testing"
)

func TestRecordObservation_AppendsToLog(t *testing.T) {
	n := NewNetwork()

	record := n.RecordObservation([]Evidence{{Variable: Diabetes, Value: true}}, SSI, true)
	if record.Complication != SSI || !record.Occurred {
		t.Errorf("unexpected record %+v", record)
	}
	if record.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}

	log := n.Observations()
	if len(log) != 1 {
		t.Fatalf("expected 1 observation, got %d", len(log))
	}
}

func TestRecordObservation_UnknownComplicationNeverNudges(t *testing.T) {
	n := NewNetwork()

	// Past the threshold the nudge path runs; an unknown name has no node
	// and must be a no-op rather than a panic.
	for i := 0; i < n.minObservations+2; i++ {
		record := n.RecordObservation(nil, "not_a_node", true)
		if record.Complication != "not_a_node" {
			t.Fatalf("unexpected record %+v", record)
		}
	}
	if len(n.Adjustments()) != 0 {
		t.Errorf("expected no adjustments, got %v", n.Adjustments())
	}
}

func TestRecordObservation_NoNudgeBelowThreshold(t *testing.T) {
	n := NewNetwork()

	for i := 0; i < 4; i++ {
		n.RecordObservation(nil, SSI, true)
	}
	if adj := n.adjustments[SSI]; adj != 0 {
		t.Errorf("expected no adjustment below observation threshold, got %v", adj)
	}
}

func TestRecordObservation_LearningMovesTowardObservedRate(t *testing.T) {
	n := NewNetwork()
	evidence := []Evidence{{Variable: Diabetes, Value: true}, {Variable: Obesity, Value: true}}

	pre := n.QueryComplication(SSI, evidence).ProbabilityTrue
	for i := 0; i < 15; i++ {
		n.RecordObservation(evidence, SSI, true)
	}
	post := n.QueryComplication(SSI, evidence).ProbabilityTrue

	if post < pre {
		t.Errorf("learning moved away from observed rate: pre=%v post=%v", pre, post)
	}
	if adj := n.adjustments[SSI]; adj <= 0 {
		t.Errorf("expected positive adjustment after all-occurred observations, got %v", adj)
	}
}

func TestRecordObservation_AdjustmentClamp(t *testing.T) {
	n := NewNetwork()

	for i := 0; i < 50; i++ {
		n.RecordObservation(nil, SSI, true)
	}
	if adj := n.adjustments[SSI]; adj > maxAdjustment+1e-12 {
		t.Errorf("adjustment %v exceeds clamp %v", adj, maxAdjustment)
	}

	for i := 0; i < 200; i++ {
		n.RecordObservation(nil, Pneumonia, false)
	}
	if adj := n.adjustments[Pneumonia]; adj < -maxAdjustment-1e-12 {
		t.Errorf("adjustment %v below clamp %v", adj, -maxAdjustment)
	}
}

func TestResetLearning_RestoresPristineState(t *testing.T) {
	n := NewNetwork()
	basePrior := n.Node(SSI).PriorProbability
	baseRow := n.Node(SSI).CPT[0].ProbabilityTrue

	for i := 0; i < 15; i++ {
		n.RecordObservation(nil, SSI, true)
	}
	if n.Node(SSI).CPT[0].ProbabilityTrue == baseRow {
		t.Fatal("expected learning to change the table before reset")
	}

	n.ResetLearning()

	if len(n.Observations()) != 0 {
		t.Error("expected empty observation log after reset")
	}
	if got := n.Node(SSI).PriorProbability; math.Abs(got-basePrior) > 1e-12 {
		t.Errorf("prior not restored: got %v, want %v", got, basePrior)
	}
	if got := n.Node(SSI).CPT[0].ProbabilityTrue; math.Abs(got-baseRow) > 1e-12 {
		t.Errorf("CPT not restored: got %v, want %v", got, baseRow)
	}
}

func TestObservationStats(t *testing.T) {
	n := NewNetwork()

	n.RecordObservation(nil, SSI, true)
	n.RecordObservation(nil, SSI, false)
	n.RecordObservation(nil, SSI, true)
	n.RecordObservation(nil, DVT, false)

	stats := n.ObservationStats()
	if stats.TotalObservations != 4 {
		t.Errorf("expected 4 total observations, got %d", stats.TotalObservations)
	}

	ssi := stats.ComplicationRates[SSI]
	if ssi.Total != 3 || ssi.Observed != 2 {
		t.Errorf("unexpected SSI rate %+v", ssi)
	}
	if math.Abs(ssi.Rate-2.0/3.0) > 1e-12 {
		t.Errorf("expected SSI rate 2/3, got %v", ssi.Rate)
	}

	dvt := stats.ComplicationRates[DVT]
	if dvt.Total != 1 || dvt.Observed != 0 || dvt.Rate != 0 {
		t.Errorf("unexpected DVT rate %+v", dvt)
	}
}
