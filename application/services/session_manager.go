package services

import (
	"context"
	"sort"
	"sync"

	"investigation-canvas/application/ports"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SessionManager keeps one running session per investigation
type SessionManager struct {
	deps   SessionDeps
	logger *zap.Logger

	group *errgroup.Group
	ctx   context.Context

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// NewSessionManager creates a manager whose sessions stop when ctx is done
func NewSessionManager(ctx context.Context, deps SessionDeps) *SessionManager {
	group, groupCtx := errgroup.WithContext(ctx)
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		deps:     deps,
		logger:   logger,
		group:    group,
		ctx:      groupCtx,
		sessions: make(map[string]*Session),
	}
}

// Open returns the running session for the investigation, starting one if needed.
// created is false when an existing session was returned and opts.Seed was ignored.
// The saved scene is loaded without holding the manager lock, so opening one
// investigation never stalls lookups of another.
func (m *SessionManager) Open(ctx context.Context, opts SessionOptions) (session *Session, created bool, err error) {
	if existing, ok, err := m.lookup(opts.InvestigationID); ok || err != nil {
		return existing, false, err
	}

	session, err = NewSession(ctx, opts, m.deps)
	if err != nil {
		return nil, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		session.Close()
		return nil, false, ports.ErrSessionClosed
	}
	// Another Open for the same investigation finished first; keep its session
	if existing, ok := m.sessions[opts.InvestigationID]; ok {
		session.Close()
		return existing, false, nil
	}
	m.sessions[opts.InvestigationID] = session

	m.group.Go(func() error {
		err := session.Run(m.ctx)
		m.mu.Lock()
		if m.sessions[session.InvestigationID()] == session {
			delete(m.sessions, session.InvestigationID())
		}
		m.mu.Unlock()
		return err
	})

	m.logger.Info("Opened editor session", zap.String("investigationID", opts.InvestigationID))
	return session, true, nil
}

func (m *SessionManager) lookup(investigationID string) (*Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, false, ports.ErrSessionClosed
	}
	s, ok := m.sessions[investigationID]
	return s, ok, nil
}

// Get returns the running session for an investigation
func (m *SessionManager) Get(investigationID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[investigationID]
	return s, ok
}

// IDs returns the investigations with a running session, sorted
func (m *SessionManager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close stops one session and waits for its loop to exit
func (m *SessionManager) Close(investigationID string) bool {
	s, ok := m.Get(investigationID)
	if !ok {
		return false
	}
	s.Close()
	<-s.Done()
	return true
}

// Shutdown stops every session and waits for them
func (m *SessionManager) Shutdown() error {
	m.mu.Lock()
	m.closed = true
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	return m.group.Wait()
}
