// Package session owns per-user dashboard state: the filter store and the
// synchronous recomputation of everything derived from it.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/esgdash/esgdash/internal/analytics"
	"github.com/esgdash/esgdash/internal/chartspec"
	"github.com/esgdash/esgdash/internal/dataset"
	"github.com/esgdash/esgdash/internal/filter"
)

// Snapshot is a full dashboard computation for the session's current filter
// state: KPIs, trend aggregates and chart specs, derived from scratch.
type Snapshot struct {
	State   filter.State         `json:"state"`
	Metrics analytics.Metrics    `json:"metrics"`
	Trend   []analytics.TrendRow `json:"trend"`
	Charts  []chartspec.Spec     `json:"charts"`
}

// Session is a single user's view of the shared base table. The mutex
// serializes filter updates and recomputation: concurrent requests for the
// same session (rapid slider drags) apply one at a time, so a commit is never
// observed half-applied.
type Session struct {
	ID string

	mu       sync.Mutex
	table    *dataset.Table
	store    *filter.Store
	lastSeen time.Time
}

func newSession(table *dataset.Table) *Session {
	return &Session{
		ID:       uuid.New().String(),
		table:    table,
		store:    filter.NewStore(table),
		lastSeen: time.Now(),
	}
}

// Baseline returns the session's immutable baseline filter state.
func (s *Session) Baseline() filter.State { return s.store.Baseline() }

// State returns the current filter state.
func (s *Session) State() filter.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.State()
}

// Snapshot recomputes the filtered view and every aggregate for the current
// state.
func (s *Session) Snapshot() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compute(s.store.State())
}

// UpdateFilters applies a patch and recomputes. On a rejected patch the
// previous state is retained and the error surfaces to the caller.
func (s *Session) UpdateFilters(p filter.Patch) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.store.Apply(p)
	if err != nil {
		return Snapshot{}, err
	}
	return s.compute(state)
}

// Reset restores the baseline and recomputes.
func (s *Session) Reset() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compute(s.store.Reset())
}

func (s *Session) compute(state filter.State) (Snapshot, error) {
	view := filter.Apply(s.table, state)
	trend := analytics.Trend(view)
	charts, err := chartspec.Dashboard(view, trend)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		State:   state,
		Metrics: analytics.Summarize(view, s.table),
		Trend:   trend,
		Charts:  charts,
	}, nil
}

// Manager issues sessions over one shared, immutable base table. The mutex
// guards only the session map; each session is owned by a single writer.
type Manager struct {
	mu       sync.RWMutex
	table    *dataset.Table
	sessions map[string]*Session
	ttl      time.Duration
}

// NewManager creates a Manager. Sessions idle longer than ttl are eligible
// for eviction; ttl <= 0 disables eviction.
func NewManager(table *dataset.Table, ttl time.Duration) *Manager {
	return &Manager{
		table:    table,
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create starts a new session with a fresh baseline.
func (m *Manager) Create() *Session {
	s := newSession(m.table)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns the session by ID and marks it as seen.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if ok {
		s.lastSeen = time.Now()
	}
	return s, ok
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle past the TTL and returns how many were removed.
func (m *Manager) Sweep(now time.Time) int {
	if m.ttl <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, s := range m.sessions {
		if now.Sub(s.lastSeen) > m.ttl {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}
