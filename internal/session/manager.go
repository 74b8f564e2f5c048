package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/gyaneshwarpardhi/productflow/internal/editor"
	"github.com/gyaneshwarpardhi/productflow/internal/metrics"
	"github.com/gyaneshwarpardhi/productflow/internal/surface"
)

// Settings are the live-tunable defaults applied to sessions.
type Settings struct {
	DarkMode       bool
	AllowSelfLoops bool
	HistoryLimit   int
	QueueDepth     int
	EventTimeout   time.Duration
	MaxSessions    int // 0 = unlimited
}

// CreateOptions overrides Settings for one new session.
type CreateOptions struct {
	DarkMode *bool
}

// Manager creates, finds and closes sessions.
type Manager struct {
	ctx   context.Context
	items surface.ItemLookup
	log   *slog.Logger

	mu       sync.RWMutex
	settings Settings
	sessions map[string]*Session
	order    []string // ids in creation order
}

// NewManager creates a Manager. Sessions' workers stop when ctx is done.
func NewManager(ctx context.Context, settings Settings, items surface.ItemLookup, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		ctx:      ctx,
		items:    items,
		log:      logger,
		settings: settings,
		sessions: make(map[string]*Session),
	}
}

// Create opens a new session.
func (m *Manager) Create(opts CreateOptions) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.settings
	if st.MaxSessions > 0 && len(m.sessions) >= st.MaxSessions {
		return nil, fmt.Errorf("%w (limit %d)", ErrTooManySessions, st.MaxSessions)
	}
	dark := st.DarkMode
	if opts.DarkMode != nil {
		dark = *opts.DarkMode
	}
	s := New(m.ctx, Options{
		Editor: editor.Options{
			DarkMode:       dark,
			AllowSelfLoops: st.AllowSelfLoops,
			HistoryLimit:   st.HistoryLimit,
		},
		Items:        m.items,
		QueueDepth:   st.QueueDepth,
		EventTimeout: st.EventTimeout,
		Logger:       m.log,
	})
	m.sessions[s.ID()] = s
	m.order = append(m.order, s.ID())
	metrics.SessionsActive.Set(float64(len(m.sessions)))
	m.log.Info("session opened", "session", s.ID(), "dark_mode", dark)
	return s, nil
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Close removes and shuts down a session.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
		m.order = slices.DeleteFunc(m.order, func(v string) bool { return v == id })
		metrics.SessionsActive.Set(float64(len(m.sessions)))
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.Close()
	return nil
}

// IDs lists open session ids, oldest first.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.order)
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Settings returns the current defaults.
func (m *Manager) Settings() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// Apply replaces the defaults used for new sessions and pushes the history
// limit to every open session. Other settings only affect new sessions.
func (m *Manager) Apply(st Settings) {
	m.mu.Lock()
	prev := m.settings
	m.settings = st
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.Unlock()

	if prev.HistoryLimit == st.HistoryLimit {
		return
	}
	for _, s := range open {
		if err := s.SetHistoryLimit(st.HistoryLimit); err != nil {
			m.log.Warn("history limit not applied", "session", s.ID(), "err", err)
		}
	}
	m.log.Info("history limit changed", "from", prev.HistoryLimit, "to", st.HistoryLimit, "sessions", len(open))
}

// Shutdown closes every session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	open := m.sessions
	m.sessions = make(map[string]*Session)
	m.order = nil
	m.mu.Unlock()
	for _, s := range open {
		s.Close()
	}
	metrics.SessionsActive.Set(0)
}
