package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/appforge/discovery-ai-platform/pkg/logging"
)

// Manager owns the tracked session population and is the sole writer of
// persisted session state. Operations on different sessions run in
// parallel; mutations of the same session are serialized.
type Manager struct {
	store  Store
	ttl    time.Duration
	logger *logging.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	locks    map[string]*sync.Mutex

	totalCreated  atomic.Int64
	totalRequests atomic.Int64
	totalErrors   atomic.Int64
}

// CreateOptions tunes session creation.
type CreateOptions struct {
	// TTL overrides the manager default when positive.
	TTL time.Duration
	// Metadata seeds the session metadata bag.
	Metadata map[string]any
}

// NewManager constructs a session lifecycle manager with an injected
// store, so tests can substitute miniredis or fakes.
func NewManager(store Store, ttl time.Duration, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Manager{
		store:    store,
		ttl:      ttl,
		logger:   logger.Component("session"),
		sessions: make(map[string]*Session),
		locks:    make(map[string]*sync.Mutex),
	}
}

// sessionLock returns the per-session exclusion mutex, creating it on
// first use. The mutex outlives the session so a delete racing a save
// still serializes.
func (m *Manager) sessionLock(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.locks[id]; ok {
		return l
	}
	l := &sync.Mutex{}
	m.locks[id] = l
	return l
}

// WithSessionLock serializes fn against all other mutating operations on
// the same session id. The conversation engine wraps its per-turn
// mutate-then-save sequence in this.
func (m *Manager) WithSessionLock(id string, fn func() error) error {
	l := m.sessionLock(id)
	l.Lock()
	defer l.Unlock()
	return fn()
}

// CreateSession creates and persists an empty session. A generated id is
// used when none is supplied; a caller-supplied id that already exists
// fails with ErrDuplicateSession.
func (m *Manager) CreateSession(ctx context.Context, id string, opts CreateOptions) (*Session, error) {
	m.totalRequests.Add(1)

	generated := false
	if id == "" {
		id = uuid.NewString()
		generated = true
	}

	lock := m.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()

	if !generated {
		m.mu.RLock()
		_, tracked := m.sessions[id]
		m.mu.RUnlock()
		if tracked {
			return nil, ErrDuplicateSession
		}
		if _, err := m.store.Get(ctx, id); err == nil {
			return nil, ErrDuplicateSession
		} else if !isNotFound(err) {
			m.totalErrors.Add(1)
			return nil, err
		}
	}

	ttl := m.ttl
	if opts.TTL > 0 {
		ttl = opts.TTL
	}
	now := time.Now().UTC()
	s := &Session{
		id:        id,
		metadata:  cloneMeta(opts.Metadata),
		created:   now,
		expiresAt: now.Add(ttl),
		manager:   m,
	}

	if err := m.persist(ctx, s); err != nil {
		m.totalErrors.Add(1)
		return nil, err
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	m.totalCreated.Add(1)

	if err := m.store.IncrCounter(ctx, "sessions_created"); err != nil {
		m.logger.Warn("analytics counter failed", "counter", "sessions_created", "error", err)
	}

	m.logger.Info("session created", "session_id", id, "expires_at", s.expiresAt)
	return s, nil
}

// GetSession returns the live session for an id. An expired session is
// reported not-found even if its last save succeeded before expiry.
func (m *Manager) GetSession(ctx context.Context, id string) (*Session, error) {
	m.totalRequests.Add(1)

	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		if !s.IsActive() {
			m.evict(id)
			return nil, ErrSessionNotFound
		}
		return s, nil
	}

	// Not tracked locally; hydrate from the committed snapshot.
	snap, err := m.store.Get(ctx, id)
	if err != nil {
		if !isNotFound(err) {
			m.totalErrors.Add(1)
		}
		return nil, err
	}
	if !time.Now().Before(snap.ExpiresAt) {
		return nil, ErrSessionNotFound
	}

	s = &Session{id: id, manager: m}
	s.restore(snap)

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s, nil
}

// DeleteSession removes a session from tracking and storage, reporting
// whether anything was deleted.
func (m *Manager) DeleteSession(ctx context.Context, id string) (bool, error) {
	m.totalRequests.Add(1)

	lock := m.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	_, tracked := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	removed, err := m.store.Delete(ctx, id)
	if err != nil {
		m.totalErrors.Add(1)
		return false, err
	}
	// Sessions created by another instance exist only in storage, so
	// the store's report counts as much as local tracking does.
	if !tracked && !removed {
		return false, nil
	}
	m.logger.Info("session deleted", "session_id", id, "tracked", tracked)
	return true, nil
}

// persist writes the session's snapshot with a TTL covering the remaining
// lifetime, so Redis expiry tracks the session's own expiry.
func (m *Manager) persist(ctx context.Context, s *Session) error {
	snap := s.snapshot()
	ttl := time.Until(snap.ExpiresAt)
	if ttl <= 0 {
		return ErrSessionNotFound
	}
	return m.store.Put(ctx, snap, ttl)
}

func (m *Manager) evict(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

func cloneMeta(meta map[string]any) map[string]any {
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}

// SaveState commits the full in-memory snapshot. The underlying store
// write is atomic and survives caller cancellation.
func (s *Session) SaveState(ctx context.Context) error {
	s.manager.totalRequests.Add(1)
	if err := s.manager.persist(ctx, s); err != nil {
		s.manager.totalErrors.Add(1)
		return err
	}
	return nil
}

// LoadState replaces in-memory state with the latest committed snapshot.
// An expired or missing snapshot is reported as not-found.
func (s *Session) LoadState(ctx context.Context) error {
	s.manager.totalRequests.Add(1)
	snap, err := s.manager.store.Get(ctx, s.id)
	if err != nil {
		if !isNotFound(err) {
			s.manager.totalErrors.Add(1)
		}
		return err
	}
	if !time.Now().Before(snap.ExpiresAt) {
		return ErrSessionNotFound
	}
	s.restore(snap)
	return nil
}

// Analytics aggregates counts over the manager's tracked population.
type Analytics struct {
	ActiveSessions int     `json:"active_sessions"`
	TotalSessions  int64   `json:"total_sessions"`
	TotalRequests  int64   `json:"total_requests"`
	ErrorRate      float64 `json:"error_rate"`
}

// GetSessionAnalytics reports aggregate counts. It is read-only and never
// mutates any session.
func (m *Manager) GetSessionAnalytics() Analytics {
	m.mu.RLock()
	active := 0
	for _, s := range m.sessions {
		if s.IsActive() {
			active++
		}
	}
	m.mu.RUnlock()

	requests := m.totalRequests.Load()
	rate := 0.0
	if requests > 0 {
		rate = float64(m.totalErrors.Load()) / float64(requests)
	}
	return Analytics{
		ActiveSessions: active,
		TotalSessions:  m.totalCreated.Load(),
		TotalRequests:  requests,
		ErrorRate:      rate,
	}
}

// HealthStatus describes manager and store health.
type HealthStatus struct {
	Healthy        bool    `json:"healthy"`
	StoreReachable bool    `json:"store_reachable"`
	ActiveSessions int     `json:"active_sessions"`
	ErrorRate      float64 `json:"error_rate"`
}

// GetHealthStatus checks the store and summarizes error rates.
func (m *Manager) GetHealthStatus(ctx context.Context) HealthStatus {
	analytics := m.GetSessionAnalytics()
	storeOK := m.store.Ping(ctx) == nil
	return HealthStatus{
		Healthy:        storeOK && analytics.ErrorRate < 0.5,
		StoreReachable: storeOK,
		ActiveSessions: analytics.ActiveSessions,
		ErrorRate:      analytics.ErrorRate,
	}
}
