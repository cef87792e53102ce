package session

import (
	"context"
	"sync"
	"time"

	"github.com/appforge/discovery-ai-platform/internal/agent"
	"github.com/appforge/discovery-ai-platform/internal/profile"
)

// Session is the authoritative per-conversation state. Mutating methods
// change only the in-memory object; nothing persists until SaveState.
type Session struct {
	mu sync.RWMutex

	id           string
	profile      *profile.UserProfile
	agentRef     *agent.Instance
	currentStage agent.Stage
	stageIndex   int
	metadata     map[string]any

	created   time.Time
	expiresAt time.Time

	manager *Manager
}

// Snapshot is the full persisted form of a session. A snapshot is written
// and read as one JSON document so readers never observe partial state.
type Snapshot struct {
	ID           string               `json:"id"`
	Profile      *profile.UserProfile `json:"profile,omitempty"`
	Agent        *agent.Instance      `json:"agent,omitempty"`
	CurrentStage agent.Stage          `json:"current_stage"`
	StageIndex   int                  `json:"stage_index"`
	Metadata     map[string]any       `json:"metadata,omitempty"`
	Created      time.Time            `json:"created"`
	ExpiresAt    time.Time            `json:"expires_at"`
}

// Context is the read-only view handed to the conversation engine.
type Context struct {
	SessionID    string
	Profile      *profile.UserProfile
	Agent        *agent.Instance
	CurrentStage agent.Stage
	StageIndex   int
	Metadata     map[string]any
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// UpdateProfile attaches or replaces the session's user profile.
func (s *Session) UpdateProfile(p *profile.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
}

// RegisterAgent attaches the agent instance driving this session and
// resets the stage machine to the template's first stage.
func (s *Session) RegisterAgent(inst *agent.Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agentRef = inst
	s.stageIndex = 0
	if inst != nil && len(inst.Template.Stages) > 0 {
		s.currentStage = inst.Template.Stages[0]
	}
}

// UpdateMetadata merges the given keys into the session metadata bag.
func (s *Session) UpdateMetadata(kv map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.metadata == nil {
		s.metadata = make(map[string]any, len(kv))
	}
	for k, v := range kv {
		s.metadata[k] = v
	}
}

// MetadataValue returns one metadata value.
func (s *Session) MetadataValue(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.metadata[key]
	return v, ok
}

// Extend pushes the expiry further out by the given duration. The expiry
// only ever moves forward; non-positive durations fail.
func (s *Session) Extend(d time.Duration) error {
	if d <= 0 {
		return ErrInvalidDuration
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresAt = s.expiresAt.Add(d)
	return nil
}

// MutateAndSave applies fn and persists the result as one snapshot. A
// failed save restores the pre-mutation state, so a retry operates on
// the last committed snapshot rather than a half-applied one.
func (s *Session) MutateAndSave(ctx context.Context, fn func()) error {
	before := s.snapshot()
	fn()
	if err := s.SaveState(ctx); err != nil {
		s.restore(before)
		return err
	}
	return nil
}

// SetStage moves the stage machine; callers are responsible for having
// checked completion evidence first.
func (s *Session) SetStage(stage agent.Stage, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentStage = stage
	s.stageIndex = index
}

// GetContext returns a consistent snapshot view for the engine. The
// metadata map is copied so engine reads never race with mutations.
func (s *Session) GetContext() Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta := make(map[string]any, len(s.metadata))
	for k, v := range s.metadata {
		meta[k] = v
	}
	return Context{
		SessionID:    s.id,
		Profile:      s.profile,
		Agent:        s.agentRef,
		CurrentStage: s.currentStage,
		StageIndex:   s.stageIndex,
		Metadata:     meta,
	}
}

// GetUptime reports how long the session has existed.
func (s *Session) GetUptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.created)
}

// IsActive reports whether the session has not yet expired.
func (s *Session) IsActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Now().Before(s.expiresAt)
}

// ExpiresAt returns the current expiry instant.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// snapshot captures the full persisted form under the session lock.
func (s *Session) snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta := make(map[string]any, len(s.metadata))
	for k, v := range s.metadata {
		meta[k] = v
	}
	return &Snapshot{
		ID:           s.id,
		Profile:      s.profile,
		Agent:        s.agentRef,
		CurrentStage: s.currentStage,
		StageIndex:   s.stageIndex,
		Metadata:     meta,
		Created:      s.created,
		ExpiresAt:    s.expiresAt,
	}
}

// restore replaces the in-memory state with a committed snapshot.
func (s *Session) restore(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = snap.Profile
	s.agentRef = snap.Agent
	s.currentStage = snap.CurrentStage
	s.stageIndex = snap.StageIndex
	s.metadata = snap.Metadata
	s.created = snap.Created
	s.expiresAt = snap.ExpiresAt
}
