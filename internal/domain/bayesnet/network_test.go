package bayesnet

import (
	"math"
	"testing"
)

func TestNewNetwork_Structure(t *testing.T) {
	n := NewNetwork()

	structure := n.Structure()
	if len(structure) != 25 {
		t.Fatalf("expected 25 nodes, got %d", len(structure))
	}
	if got := len(n.Complications()); got != 9 {
		t.Errorf("expected 9 complication nodes, got %d", got)
	}
	if got := len(n.RiskFactors()); got != 16 {
		t.Errorf("expected 16 risk factor nodes, got %d", got)
	}
}

func TestNewNetwork_ChildrenAreInverseOfParents(t *testing.T) {
	n := NewNetwork()

	for _, entry := range n.Structure() {
		for _, p := range entry.Parents {
			parent := n.Node(p)
			if parent == nil {
				t.Fatalf("node %s declares unknown parent %s", entry.ID, p)
			}
			found := false
			for _, child := range parent.Children {
				if child == entry.ID {
					found = true
				}
			}
			if !found {
				t.Errorf("%s is a parent of %s but does not list it as a child", p, entry.ID)
			}
		}
	}

	// Risk factors are roots.
	for _, rf := range n.RiskFactors() {
		if len(rf.Parents) != 0 {
			t.Errorf("risk factor %s should have no parents, has %d", rf.ID, len(rf.Parents))
		}
	}
	// Complications are never roots.
	for _, c := range n.Complications() {
		if len(c.Parents) == 0 {
			t.Errorf("complication %s should have parents", c.ID)
		}
	}
}

func TestNewNetwork_MultiLevelDAG(t *testing.T) {
	n := NewNetwork()

	pe := n.Node(PE)
	hasDVT := false
	for _, p := range pe.Parents {
		if p == DVT {
			hasDVT = true
		}
	}
	if !hasDVT {
		t.Error("expected DVT to be a parent of PE")
	}

	dehiscence := n.Node(WoundDehiscence)
	hasSSI := false
	for _, p := range dehiscence.Parents {
		if p == SSI {
			hasSSI = true
		}
	}
	if !hasSSI {
		t.Error("expected SSI to be a parent of wound dehiscence")
	}
}

func TestNewNetwork_CPTShape(t *testing.T) {
	n := NewNetwork()

	for _, entry := range n.Structure() {
		node := n.Node(entry.ID)
		want := 1 << len(node.Parents)
		if len(node.CPT) != want {
			t.Errorf("%s: expected %d CPT rows for %d parents, got %d",
				node.ID, want, len(node.Parents), len(node.CPT))
		}
		for _, row := range node.CPT {
			if row.ProbabilityTrue < 0 || row.ProbabilityTrue > maxProbability {
				t.Errorf("%s: CPT row probability %v outside [0, %v]",
					node.ID, row.ProbabilityTrue, maxProbability)
			}
			if len(row.ParentValues) != len(node.Parents) {
				t.Errorf("%s: CPT row covers %d parents, want %d",
					node.ID, len(row.ParentValues), len(node.Parents))
			}
		}
	}
}

func TestNewNetwork_LiteraturePriors(t *testing.T) {
	n := NewNetwork()

	dvt := n.Node(DVT).PriorProbability
	if dvt < 0.005 || dvt > 0.05 {
		t.Errorf("DVT prior %v outside literature bounds [0.005, 0.05]", dvt)
	}

	pna := n.Node(Pneumonia).PriorProbability
	if pna < 0.01 || pna > 0.05 {
		t.Errorf("pneumonia prior %v outside literature bounds [0.01, 0.05]", pna)
	}
}

func TestNetwork_NodeUnknown(t *testing.T) {
	n := NewNetwork()
	if n.Node("definitely_not_a_node") != nil {
		t.Error("expected nil for unknown variable")
	}
}

func TestNetwork_SetAdjustmentsReappliesTables(t *testing.T) {
	n := NewNetwork()
	base := n.Node(SSI).CPT[0].ProbabilityTrue

	n.SetAdjustments(map[NodeVariable]float64{SSI: 0.05, "bogus": 0.2, Smoking: 0.3})

	if got := n.Node(SSI).CPT[0].ProbabilityTrue; math.Abs(got-(base+0.05)) > 1e-12 {
		t.Errorf("expected adjusted row %v, got %v", base+0.05, got)
	}
	if _, ok := n.adjustments["bogus"]; ok {
		t.Error("unknown variable should not be accepted as an adjustment")
	}
	if _, ok := n.adjustments[Smoking]; ok {
		t.Error("risk factors should not carry adjustments")
	}
}
