package bayesnet

import (
	"time"

	"github.com/google/uuid"
)

// NodeVariable identifies one variable in the complication network. Risk
// factors and complications share the type so the graph is homogeneous:
// a complication may appear as a parent of another complication.
type NodeVariable string

// Risk factors (root nodes).
const (
	AgeOver65         NodeVariable = "age_over_65"
	AgeOver75         NodeVariable = "age_over_75"
	Obesity           NodeVariable = "obesity"
	Diabetes          NodeVariable = "diabetes"
	Smoking           NodeVariable = "smoking"
	Immunosuppression NodeVariable = "immunosuppression"
	MajorSurgery      NodeVariable = "major_surgery"
	EmergencySurgery  NodeVariable = "emergency_surgery"
	ProlongedSurgery  NodeVariable = "prolonged_surgery"
	GeneralAnesthesia NodeVariable = "general_anesthesia"
	Immobility        NodeVariable = "immobility"
	Malnutrition      NodeVariable = "malnutrition"
	RenalDisease      NodeVariable = "renal_disease"
	PriorDVT          NodeVariable = "prior_dvt"
	COPD              NodeVariable = "copd"
	HeartFailure      NodeVariable = "heart_failure"
)

// Complications (outcome nodes).
const (
	SSI             NodeVariable = "surgical_site_infection"
	DVT             NodeVariable = "dvt"
	PE              NodeVariable = "pulmonary_embolism"
	Pneumonia       NodeVariable = "pneumonia"
	UTI             NodeVariable = "urinary_tract_infection"
	Ileus           NodeVariable = "ileus"
	WoundDehiscence NodeVariable = "wound_dehiscence"
	Bleeding        NodeVariable = "bleeding"
	AKI             NodeVariable = "acute_kidney_injury"
)

// riskFactorOrder and complicationOrder fix the enumeration order used for
// iteration and sort tie-breaking.
var riskFactorOrder = []NodeVariable{
	AgeOver65, AgeOver75, Obesity, Diabetes, Smoking, Immunosuppression,
	MajorSurgery, EmergencySurgery, ProlongedSurgery, GeneralAnesthesia,
	Immobility, Malnutrition, RenalDisease, PriorDVT, COPD, HeartFailure,
}

var complicationOrder = []NodeVariable{
	SSI, DVT, PE, Pneumonia, UTI, Ileus, WoundDehiscence, Bleeding, AKI,
}

// RiskFactorVariables returns the risk factor variables in enumeration order.
func RiskFactorVariables() []NodeVariable {
	out := make([]NodeVariable, len(riskFactorOrder))
	copy(out, riskFactorOrder)
	return out
}

// ComplicationVariables returns the complication variables in enumeration order.
func ComplicationVariables() []NodeVariable {
	out := make([]NodeVariable, len(complicationOrder))
	copy(out, complicationOrder)
	return out
}

// IsComplication reports whether v is one of the nine outcome variables.
func IsComplication(v NodeVariable) bool {
	for _, c := range complicationOrder {
		if c == v {
			return true
		}
	}
	return false
}

// CPTEntry is one row of a conditional probability table: the probability
// the node is true under one full assignment of its parents.
type CPTEntry struct {
	ParentValues    map[NodeVariable]bool `json:"parent_values"`
	ProbabilityTrue float64               `json:"probability_true"`
}

// ProbabilityFalse is the complementary outcome; it is derived, never stored.
func (e CPTEntry) ProbabilityFalse() float64 {
	return 1 - e.ProbabilityTrue
}

// Node is one vertex in the network. Children is the inverse of Parents and
// is derived once at build time.
type Node struct {
	ID               NodeVariable   `json:"id"`
	Name             string         `json:"name"`
	Parents          []NodeVariable `json:"parents"`
	Children         []NodeVariable `json:"children"`
	CPT              []CPTEntry     `json:"cpt"`
	PriorProbability float64        `json:"prior_probability"`
}

// Clone deep-copies the node, including every CPT row. Callers that hold a
// node across operations get a snapshot that later learning cannot mutate.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		ID:               n.ID,
		Name:             n.Name,
		Parents:          append([]NodeVariable(nil), n.Parents...),
		Children:         append([]NodeVariable(nil), n.Children...),
		CPT:              make([]CPTEntry, len(n.CPT)),
		PriorProbability: n.PriorProbability,
	}
	for i, row := range n.CPT {
		values := make(map[NodeVariable]bool, len(row.ParentValues))
		for p, v := range row.ParentValues {
			values[p] = v
		}
		out.CPT[i] = CPTEntry{ParentValues: values, ProbabilityTrue: row.ProbabilityTrue}
	}
	return out
}

// Evidence is an observed truth assignment supplied by the caller. It never
// mutates the network.
type Evidence struct {
	Variable NodeVariable `json:"variable"`
	Value    bool         `json:"value"`
}

// InferenceResult is the answer to a single-complication query.
type InferenceResult struct {
	Variable         NodeVariable `json:"variable"`
	ProbabilityTrue  float64      `json:"probability_true"`
	ProbabilityFalse float64      `json:"probability_false"`
	PriorProbability float64      `json:"prior_probability"`
	RiskMultiplier   float64      `json:"risk_multiplier"`
	Explanation      string       `json:"explanation"`
}

// ExactResult is the output of variable elimination.
type ExactResult struct {
	ProbabilityTrue  float64 `json:"probability_true"`
	ProbabilityFalse float64 `json:"probability_false"`
}

// RiskLevel classifies an overall risk score.
type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskModerate RiskLevel = "moderate"
	RiskLow      RiskLevel = "low"
)

// ClassifyRisk maps a mean complication probability to a risk level.
func ClassifyRisk(score float64) RiskLevel {
	switch {
	case score > 0.15:
		return RiskCritical
	case score > 0.08:
		return RiskHigh
	case score > 0.04:
		return RiskModerate
	default:
		return RiskLow
	}
}

// RiskSummary is the result of querying every complication at once.
type RiskSummary struct {
	Complications           []InferenceResult `json:"complications"`
	HighestRiskComplication NodeVariable      `json:"highest_risk_complication"`
	OverallRiskScore        float64           `json:"overall_risk_score"`
	RiskLevel               RiskLevel         `json:"risk_level"`
}

// ObservationRecord is one observed ground-truth outcome, the unit of
// learning. Records are append-only.
type ObservationRecord struct {
	ID           uuid.UUID    `json:"id"`
	Evidence     []Evidence   `json:"evidence"`
	Complication NodeVariable `json:"complication"`
	Occurred     bool         `json:"occurred"`
	Timestamp    time.Time    `json:"timestamp"`
}

// ComplicationRate summarizes observed outcomes for one complication.
type ComplicationRate struct {
	Observed int     `json:"observed"`
	Total    int     `json:"total"`
	Rate     float64 `json:"rate"`
}

// ObservationStats aggregates the observation log.
type ObservationStats struct {
	TotalObservations int                               `json:"total_observations"`
	ComplicationRates map[NodeVariable]ComplicationRate `json:"complication_rates"`
}

// StructureEntry is one node of the network with its edges, CPT omitted.
type StructureEntry struct {
	ID       NodeVariable   `json:"id"`
	Name     string         `json:"name"`
	Parents  []NodeVariable `json:"parents"`
	Children []NodeVariable `json:"children"`
}
