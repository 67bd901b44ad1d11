package bayesnet

import (
	"math"
	"testing"
)

func TestBuildCPT_RootNode(t *testing.T) {
	rows := buildCPT(nodeSpec{id: Smoking, baseRate: 0.2})
	if len(rows) != 1 {
		t.Fatalf("expected single row for root node, got %d", len(rows))
	}
	if rows[0].ProbabilityTrue != 0.2 {
		t.Errorf("expected base rate 0.2, got %v", rows[0].ProbabilityTrue)
	}
	if len(rows[0].ParentValues) != 0 {
		t.Errorf("expected empty parent assignment, got %v", rows[0].ParentValues)
	}
}

func TestBuildCPT_NoisyORFormula(t *testing.T) {
	spec := nodeSpec{
		id:       SSI,
		baseRate: 0.02,
		parents:  []NodeVariable{Diabetes, Obesity},
		weights:  []float64{0.1, 0.2},
	}
	rows := buildCPT(spec)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}

	find := func(diabetes, obesity bool) CPTEntry {
		for _, row := range rows {
			if row.ParentValues[Diabetes] == diabetes && row.ParentValues[Obesity] == obesity {
				return row
			}
		}
		t.Fatalf("missing row for diabetes=%v obesity=%v", diabetes, obesity)
		return CPTEntry{}
	}

	cases := []struct {
		diabetes, obesity bool
		want              float64
	}{
		{false, false, 0.02},
		{true, false, 1 - 0.98*0.9},
		{false, true, 1 - 0.98*0.8},
		{true, true, 1 - 0.98*0.9*0.8},
	}
	for _, tc := range cases {
		got := find(tc.diabetes, tc.obesity).ProbabilityTrue
		if math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("diabetes=%v obesity=%v: got %v, want %v", tc.diabetes, tc.obesity, got, tc.want)
		}
	}
}

func TestBuildCPT_AllFalseRowIsExactBaseRate(t *testing.T) {
	for _, spec := range append(append([]nodeSpec(nil), riskFactorSpecs...), complicationSpecs...) {
		rows := buildCPT(spec)
		if rows[0].ProbabilityTrue != spec.baseRate {
			t.Errorf("%s: all-false row %v, want exactly %v", spec.id, rows[0].ProbabilityTrue, spec.baseRate)
		}
	}
}

func TestBuildCPT_FirstRowIsAllFalse(t *testing.T) {
	spec := complicationSpecs[0]
	rows := buildCPT(spec)
	for p, val := range rows[0].ParentValues {
		if val {
			t.Errorf("first row should have all parents false, %s is true", p)
		}
	}
}

func TestBuildCPT_CapsAtMaxProbability(t *testing.T) {
	spec := nodeSpec{
		id:       SSI,
		baseRate: 0.5,
		parents:  []NodeVariable{Diabetes, Obesity},
		weights:  []float64{0.9, 0.9},
	}
	for _, row := range buildCPT(spec) {
		if row.ProbabilityTrue > maxProbability {
			t.Errorf("row above cap: %v", row.ProbabilityTrue)
		}
	}
}

func TestAdjustedCPT_ClampsRows(t *testing.T) {
	spec := nodeSpec{id: DVT, baseRate: 0.015, parents: []NodeVariable{PriorDVT}, weights: []float64{0.25}}

	up := adjustedCPT(spec, 0.1)
	base := buildCPT(spec)
	for i := range up {
		want := clampProbability(base[i].ProbabilityTrue + 0.1)
		if math.Abs(up[i].ProbabilityTrue-want) > 1e-12 {
			t.Errorf("row %d: got %v, want %v", i, up[i].ProbabilityTrue, want)
		}
	}

	down := adjustedCPT(spec, -0.1)
	for _, row := range down {
		if row.ProbabilityTrue < 0.001 {
			t.Errorf("row below floor: %v", row.ProbabilityTrue)
		}
	}
}
