package bayesnet

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Options tune the learning loop. Zero values fall back to the defaults the
// network was calibrated with.
type Options struct {
	LearningRate    float64
	MinObservations int
}

// Service owns the network and its durable state. The network itself is
// single-threaded; the service serializes every call behind a mutex so the
// HTTP surface can share one instance.
type Service struct {
	mu      sync.Mutex
	network *Network
	store   StateStore
	logger  zerolog.Logger
}

// NewService builds the network and restores persisted observations and CPT
// adjustments. A failed load is logged and ignored: the service starts from
// an empty log and pristine tables, per the resilience contract.
func NewService(ctx context.Context, store StateStore, logger zerolog.Logger, opts Options) *Service {
	network := NewNetwork()
	if opts.LearningRate > 0 {
		network.learningRate = opts.LearningRate
	}
	if opts.MinObservations > 0 {
		network.minObservations = opts.MinObservations
	}

	s := &Service{
		network: network,
		store:   store,
		logger:  logger.With().Str("component", "bayesnet").Logger(),
	}
	s.restore(ctx)
	return s
}

func (s *Service) restore(ctx context.Context) {
	if raw, err := s.store.Load(ctx, KeyObservations); err != nil {
		s.logger.Warn().Err(err).Msg("failed to load observation log, starting empty")
	} else if raw != nil {
		var records []ObservationRecord
		if err := json.Unmarshal(raw, &records); err != nil {
			s.logger.Warn().Err(err).Msg("corrupt observation log, starting empty")
		} else {
			s.network.SetObservations(records)
		}
	}

	if raw, err := s.store.Load(ctx, KeyCPTAdjustments); err != nil {
		s.logger.Warn().Err(err).Msg("failed to load CPT adjustments, starting pristine")
	} else if raw != nil {
		var adjustments map[NodeVariable]float64
		if err := json.Unmarshal(raw, &adjustments); err != nil {
			s.logger.Warn().Err(err).Msg("corrupt CPT adjustments, starting pristine")
		} else {
			s.network.SetAdjustments(adjustments)
		}
	}
}

// persist writes both logical records. Failures are logged and swallowed;
// in-memory state is authoritative for the process lifetime.
func (s *Service) persist(ctx context.Context) {
	if raw, err := json.Marshal(s.network.Observations()); err == nil {
		if err := s.store.Save(ctx, KeyObservations, raw); err != nil {
			s.logger.Warn().Err(err).Msg("failed to persist observation log")
		}
	}
	if raw, err := json.Marshal(s.network.Adjustments()); err == nil {
		if err := s.store.Save(ctx, KeyCPTAdjustments, raw); err != nil {
			s.logger.Warn().Err(err).Msg("failed to persist CPT adjustments")
		}
	}
}

// GetNode returns a snapshot of the node for a variable, or nil when unknown.
// Node getters clone under the lock so callers never alias live network state
// that a concurrent learning update may rewrite.
func (s *Service) GetNode(v NodeVariable) *Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.network.Node(v).Clone()
}

// GetComplications returns snapshots of the nine outcome nodes.
func (s *Service) GetComplications() []*Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneNodes(s.network.Complications())
}

// GetRiskFactors returns snapshots of the sixteen root nodes.
func (s *Service) GetRiskFactors() []*Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneNodes(s.network.RiskFactors())
}

func cloneNodes(nodes []*Node) []*Node {
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// GetNetworkStructure returns every node with its edges.
func (s *Service) GetNetworkStructure() []StructureEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.network.Structure()
}

// QueryComplication answers an approximate single-complication query.
func (s *Service) QueryComplication(target NodeVariable, evidence []Evidence) InferenceResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.network.QueryComplication(target, evidence)
}

// QueryAllComplications assesses every complication under the evidence.
func (s *Service) QueryAllComplications(evidence []Evidence) RiskSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.network.QueryAllComplications(evidence)
}

// VariableElimination answers an exact posterior query.
func (s *Service) VariableElimination(v NodeVariable, evidence []Evidence) ExactResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.network.VariableElimination(v, evidence)
}

// RecordObservation appends a ground-truth outcome, runs the learning nudge
// and persists the updated state.
func (s *Service) RecordObservation(ctx context.Context, evidence []Evidence, complication NodeVariable, occurred bool) (ObservationRecord, error) {
	if !IsComplication(complication) {
		return ObservationRecord{}, fmt.Errorf("unknown complication: %s", complication)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record := s.network.RecordObservation(evidence, complication, occurred)
	s.persist(ctx)
	return record, nil
}

// GetObservations returns the full observation log.
func (s *Service) GetObservations() []ObservationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.network.Observations()
}

// GetObservationStats aggregates observed outcome rates per complication.
func (s *Service) GetObservationStats() ObservationStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.network.ObservationStats()
}

// ResetLearning clears the observation log and every CPT adjustment, in
// memory and in the durable store.
func (s *Service) ResetLearning(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.network.ResetLearning()
	if err := s.store.Delete(ctx, KeyObservations); err != nil {
		s.logger.Warn().Err(err).Msg("failed to clear persisted observation log")
	}
	if err := s.store.Delete(ctx, KeyCPTAdjustments); err != nil {
		s.logger.Warn().Err(err).Msg("failed to clear persisted CPT adjustments")
	}
}
