package bayesnet

// riskFactorSpecs declares the sixteen root nodes with their prevalence in a
// general surgical population (literature-derived).
var riskFactorSpecs = []nodeSpec{
	{id: AgeOver65, name: "Age over 65", baseRate: 0.30},
	{id: AgeOver75, name: "Age over 75", baseRate: 0.15},
	{id: Obesity, name: "Obesity (BMI over 30)", baseRate: 0.35},
	{id: Diabetes, name: "Diabetes mellitus", baseRate: 0.15},
	{id: Smoking, name: "Current smoker", baseRate: 0.20},
	{id: Immunosuppression, name: "Immunosuppression", baseRate: 0.05},
	{id: MajorSurgery, name: "Major surgery", baseRate: 0.40},
	{id: EmergencySurgery, name: "Emergency surgery", baseRate: 0.15},
	{id: ProlongedSurgery, name: "Prolonged surgery (over 3h)", baseRate: 0.25},
	{id: GeneralAnesthesia, name: "General anesthesia", baseRate: 0.70},
	{id: Immobility, name: "Post-operative immobility", baseRate: 0.30},
	{id: Malnutrition, name: "Malnutrition", baseRate: 0.10},
	{id: RenalDisease, name: "Chronic renal disease", baseRate: 0.08},
	{id: PriorDVT, name: "Prior DVT or PE", baseRate: 0.04},
	{id: COPD, name: "COPD", baseRate: 0.10},
	{id: HeartFailure, name: "Heart failure", baseRate: 0.07},
}

// complicationSpecs declares the nine outcome nodes: incidence base rate,
// parent set and each parent's independent noisy-OR contribution. Parent
// lists come from the perioperative literature; note the complication-to-
// complication edges (DVT -> PE, SSI -> wound dehiscence) that make this a
// multi-level DAG.
var complicationSpecs = []nodeSpec{
	{
		id: SSI, name: "Surgical site infection", baseRate: 0.02,
		parents: []NodeVariable{Diabetes, Obesity, Smoking, Immunosuppression, EmergencySurgery, ProlongedSurgery, Malnutrition},
		weights: []float64{0.08, 0.06, 0.05, 0.10, 0.06, 0.07, 0.06},
	},
	{
		id: DVT, name: "Deep vein thrombosis", baseRate: 0.015,
		parents: []NodeVariable{PriorDVT, Immobility, Obesity, AgeOver65, MajorSurgery},
		weights: []float64{0.25, 0.08, 0.05, 0.04, 0.06},
	},
	{
		id: PE, name: "Pulmonary embolism", baseRate: 0.005,
		parents: []NodeVariable{DVT, PriorDVT, Immobility, Obesity},
		weights: []float64{0.35, 0.10, 0.05, 0.03},
	},
	{
		id: Pneumonia, name: "Post-operative pneumonia", baseRate: 0.02,
		parents: []NodeVariable{COPD, Smoking, AgeOver75, GeneralAnesthesia, Immobility, HeartFailure},
		weights: []float64{0.12, 0.07, 0.06, 0.04, 0.05, 0.05},
	},
	{
		id: UTI, name: "Urinary tract infection", baseRate: 0.025,
		parents: []NodeVariable{AgeOver65, Diabetes, RenalDisease, Immobility, ProlongedSurgery},
		weights: []float64{0.04, 0.05, 0.04, 0.04, 0.03},
	},
	{
		id: Ileus, name: "Post-operative ileus", baseRate: 0.03,
		parents: []NodeVariable{MajorSurgery, GeneralAnesthesia, EmergencySurgery},
		weights: []float64{0.10, 0.04, 0.05},
	},
	{
		id: WoundDehiscence, name: "Wound dehiscence", baseRate: 0.01,
		parents: []NodeVariable{SSI, Obesity, Malnutrition, Diabetes, Smoking, EmergencySurgery},
		weights: []float64{0.20, 0.07, 0.08, 0.05, 0.04, 0.04},
	},
	{
		id: Bleeding, name: "Post-operative bleeding", baseRate: 0.02,
		parents: []NodeVariable{MajorSurgery, EmergencySurgery, RenalDisease, HeartFailure},
		weights: []float64{0.06, 0.08, 0.04, 0.03},
	},
	{
		id: AKI, name: "Acute kidney injury", baseRate: 0.015,
		parents: []NodeVariable{RenalDisease, AgeOver75, HeartFailure, MajorSurgery, EmergencySurgery, Diabetes},
		weights: []float64{0.25, 0.05, 0.08, 0.05, 0.06, 0.04},
	},
}

// Network is the complication Bayesian network: the fixed DAG plus the
// mutable learning state. It is not internally thread-safe; callers must
// serialize access (the Service wraps it in a mutex).
type Network struct {
	nodes map[NodeVariable]*Node
	specs map[NodeVariable]nodeSpec

	adjustments  map[NodeVariable]float64
	observations []ObservationRecord

	learningRate    float64
	minObservations int
}

// NewNetwork builds the 25-node network with its fixed topology and pristine
// noisy-OR tables. Construction is deterministic.
func NewNetwork() *Network {
	n := &Network{
		nodes:           make(map[NodeVariable]*Node, len(riskFactorSpecs)+len(complicationSpecs)),
		specs:           make(map[NodeVariable]nodeSpec, len(riskFactorSpecs)+len(complicationSpecs)),
		adjustments:     make(map[NodeVariable]float64),
		learningRate:    0.1,
		minObservations: 5,
	}

	for _, spec := range riskFactorSpecs {
		n.addNode(spec)
	}
	for _, spec := range complicationSpecs {
		n.addNode(spec)
	}
	n.wireChildren()
	return n
}

func (n *Network) addNode(spec nodeSpec) {
	n.specs[spec.id] = spec
	n.nodes[spec.id] = &Node{
		ID:               spec.id,
		Name:             spec.name,
		Parents:          append([]NodeVariable(nil), spec.parents...),
		CPT:              buildCPT(spec),
		PriorProbability: spec.baseRate,
	}
}

// wireChildren derives every parent's child list from the declared parent
// lists. Runs exactly once per build.
func (n *Network) wireChildren() {
	for _, v := range n.enumerationOrder() {
		node := n.nodes[v]
		for _, p := range node.Parents {
			parent := n.nodes[p]
			parent.Children = append(parent.Children, v)
		}
	}
}

func (n *Network) enumerationOrder() []NodeVariable {
	order := make([]NodeVariable, 0, len(riskFactorOrder)+len(complicationOrder))
	order = append(order, riskFactorOrder...)
	order = append(order, complicationOrder...)
	return order
}

// Node returns the node for a variable, or nil when unknown.
func (n *Network) Node(v NodeVariable) *Node {
	return n.nodes[v]
}

// Complications returns the nine outcome nodes in enumeration order.
func (n *Network) Complications() []*Node {
	out := make([]*Node, 0, len(complicationOrder))
	for _, v := range complicationOrder {
		out = append(out, n.nodes[v])
	}
	return out
}

// RiskFactors returns the sixteen root nodes in enumeration order.
func (n *Network) RiskFactors() []*Node {
	out := make([]*Node, 0, len(riskFactorOrder))
	for _, v := range riskFactorOrder {
		out = append(out, n.nodes[v])
	}
	return out
}

// Structure returns every node with its edges, CPTs omitted.
func (n *Network) Structure() []StructureEntry {
	out := make([]StructureEntry, 0, len(n.nodes))
	for _, v := range n.enumerationOrder() {
		node := n.nodes[v]
		out = append(out, StructureEntry{
			ID:       node.ID,
			Name:     node.Name,
			Parents:  append([]NodeVariable(nil), node.Parents...),
			Children: append([]NodeVariable(nil), node.Children...),
		})
	}
	return out
}

// applyAdjustment rebuilds a complication's CPT from its pristine spec with
// the current adjustment level, and shifts the node prior by the same level.
func (n *Network) applyAdjustment(v NodeVariable) {
	node, ok := n.nodes[v]
	if !ok {
		return
	}
	spec := n.specs[v]
	adj := n.adjustments[v]
	node.CPT = adjustedCPT(spec, adj)
	node.PriorProbability = clampProbability(spec.baseRate + adj)
}

// SetAdjustments replaces the learning state with persisted values and
// reapplies them to the affected tables. Used when restoring from a store.
func (n *Network) SetAdjustments(adjustments map[NodeVariable]float64) {
	n.adjustments = make(map[NodeVariable]float64, len(adjustments))
	for v, adj := range adjustments {
		if !IsComplication(v) {
			continue
		}
		n.adjustments[v] = clampAdjustment(adj)
		n.applyAdjustment(v)
	}
}

// Adjustments returns a copy of the current CPT adjustment levels.
func (n *Network) Adjustments() map[NodeVariable]float64 {
	out := make(map[NodeVariable]float64, len(n.adjustments))
	for v, adj := range n.adjustments {
		out[v] = adj
	}
	return out
}

// ResetLearning clears the observation log and every adjustment, restoring
// all tables and priors to their original literature values.
func (n *Network) ResetLearning() {
	n.observations = nil
	for v := range n.adjustments {
		delete(n.adjustments, v)
		n.applyAdjustment(v)
	}
}
