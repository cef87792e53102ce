package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/appforge/discovery-ai-platform/internal/agent"
	"github.com/appforge/discovery-ai-platform/internal/session"
)

// TriggerEvent is emitted when an escape hatch or expert skip is
// confirmed. It carries enough context for the assumption-generation
// collaborator; the engine's responsibility ends at emitting it.
type TriggerEvent struct {
	SessionID         string      `json:"session_id"`
	Stage             agent.Stage `json:"stage"`
	Signal            SignalKind  `json:"signal"`
	AnsweredQuestions int         `json:"answered_questions"`
	PartialResponses  []string    `json:"partial_responses,omitempty"`
	EmittedAt         time.Time   `json:"emitted_at"`
}

// BuildAssumptionTrigger emits a trigger event when the analysis carries
// a confirmed (strong) escape-hatch or expert-skip signal. Suspected weak
// signals do not trigger.
func (e *Engine) BuildAssumptionTrigger(sctx *session.Context, analysis *ResponseAnalysis, partialResponses []string) (*TriggerEvent, bool) {
	if sctx == nil || analysis == nil {
		return nil, false
	}

	var confirmed SignalKind
	if sig, ok := findSignal(analysis.Signals, SignalEscapeHatch); ok && sig.Confidence >= strongSignalThreshold {
		confirmed = SignalEscapeHatch
	} else if sig, ok := findSignal(analysis.Signals, SignalExpertSkip); ok && sig.Confidence >= strongSignalThreshold {
		confirmed = SignalExpertSkip
	} else {
		return nil, false
	}

	event := &TriggerEvent{
		SessionID:         sctx.SessionID,
		Stage:             sctx.CurrentStage,
		Signal:            confirmed,
		AnsweredQuestions: metaCount(sctx.Metadata, MetaAnsweredCount),
		PartialResponses:  partialResponses,
		EmittedAt:         time.Now().UTC(),
	}
	e.logger.Info("assumption trigger emitted",
		"session_id", sctx.SessionID,
		"stage", sctx.CurrentStage,
		"signal", confirmed,
	)
	return event, true
}

// AcceptanceState is the tri-state review status of an assumption.
type AcceptanceState string

const (
	AssumptionPending  AcceptanceState = "pending"
	AssumptionAccepted AcceptanceState = "accepted"
	AssumptionRejected AcceptanceState = "rejected"
)

// Assumption is a system-proposed default filling a gap left by skipped
// questioning.
type Assumption struct {
	ID            string          `json:"id"`
	Category      string          `json:"category"`
	Statement     string          `json:"statement"`
	Confidence    float64         `json:"confidence"`
	DependsOn     []string        `json:"depends_on,omitempty"`
	SourceTrigger SignalKind      `json:"source_trigger,omitempty"`
	UserAccepted  AcceptanceState `json:"user_accepted"`
}

// AssumptionSet holds one session's assumptions with their dependency
// DAG. Edges always point from dependent to dependency; the set rejects
// anything that would create a cycle.
type AssumptionSet struct {
	sessionID  string
	byID       map[string]*Assumption
	dependents map[string][]string // dependency id -> ids depending on it
}

// NewAssumptionSet creates an empty assumption set scoped to a session.
func NewAssumptionSet(sessionID string) *AssumptionSet {
	return &AssumptionSet{
		sessionID:  sessionID,
		byID:       make(map[string]*Assumption),
		dependents: make(map[string][]string),
	}
}

// Add attaches an assumption to the set. All dependencies must already be
// present, and the new edges must not close a cycle.
func (s *AssumptionSet) Add(a Assumption) (*Assumption, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if _, exists := s.byID[a.ID]; exists {
		return nil, fmt.Errorf("engine: assumption %s already present", a.ID)
	}
	for _, dep := range a.DependsOn {
		if _, ok := s.byID[dep]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAssumption, dep)
		}
		if s.reaches(dep, a.ID) {
			return nil, fmt.Errorf("%w: %s <-> %s", ErrAssumptionCycle, a.ID, dep)
		}
	}
	if a.UserAccepted == "" {
		a.UserAccepted = AssumptionPending
	}

	s.byID[a.ID] = &a
	for _, dep := range a.DependsOn {
		s.dependents[dep] = append(s.dependents[dep], a.ID)
	}
	return &a, nil
}

// Get returns an assumption by id.
func (s *AssumptionSet) Get(id string) (*Assumption, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// All returns every assumption in the set.
func (s *AssumptionSet) All() []*Assumption {
	out := make([]*Assumption, 0, len(s.byID))
	for _, a := range s.byID {
		out = append(out, a)
	}
	return out
}

// Accept marks an assumption accepted. Dependencies must be resolved
// first: accepting an assumption whose dependency is still pending or
// rejected is refused, so parents are always reflected before dependents
// are finalized.
func (s *AssumptionSet) Accept(id string) error {
	a, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAssumption, id)
	}
	for _, dep := range a.DependsOn {
		if s.byID[dep].UserAccepted != AssumptionAccepted {
			return fmt.Errorf("engine: dependency %s of %s not yet accepted", dep, id)
		}
	}
	a.UserAccepted = AssumptionAccepted
	return nil
}

// Reject marks an assumption rejected and cascades: every transitive
// dependent returns to pending re-evaluation, never staying accepted on
// top of a rejected dependency.
func (s *AssumptionSet) Reject(id string) error {
	a, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAssumption, id)
	}
	a.UserAccepted = AssumptionRejected

	queue := append([]string(nil), s.dependents[id]...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		dep := s.byID[next]
		if dep.UserAccepted == AssumptionPending {
			continue // already awaiting re-evaluation, children follow anyway
		}
		dep.UserAccepted = AssumptionPending
		queue = append(queue, s.dependents[next]...)
	}
	return nil
}

// reaches reports whether `to` is reachable from `from` along dependency
// edges, used for cycle rejection at insert time.
func (s *AssumptionSet) reaches(from, to string) bool {
	if from == to {
		return true
	}
	seen := map[string]bool{from: true}
	queue := append([]string(nil), s.byID[from].DependsOn...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == to {
			return true
		}
		if seen[next] {
			continue
		}
		seen[next] = true
		queue = append(queue, s.byID[next].DependsOn...)
	}
	return false
}
