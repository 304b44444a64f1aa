package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iflis7/iyuc-store/services/storefront/internal/commerce"
	"github.com/iflis7/iyuc-store/services/storefront/internal/kvstore"
)

const (
	// initTimeout bounds one initialization. It runs detached from the
	// request that triggered it.
	initTimeout = 10 * time.Second

	// initRetryAfter is the minimum gap between initializations of a
	// session that is still without a cart.
	initRetryAfter = 5 * time.Second
)

type entry struct {
	session  *Session
	lastSeen time.Time
	initAt   time.Time
}

// Manager hands out one Session per session id. Sessions are created and
// initialized on first use; their persistent fields outlive eviction.
type Manager struct {
	client         commerce.Client
	store          kvstore.Store
	events         CartEvents
	defaultCountry string
	logger         *slog.Logger

	mu       sync.Mutex
	sessions map[string]*entry
	onEvict  func(id string)
	now      func() time.Time
}

func NewManager(client commerce.Client, store kvstore.Store, events CartEvents, defaultCountry string, logger *slog.Logger) *Manager {
	return &Manager{
		client:         client,
		store:          store,
		events:         events,
		defaultCountry: defaultCountry,
		logger:         logger,
		sessions:       make(map[string]*entry),
		now:            time.Now,
	}
}

// NewID returns a fresh random session id.
func NewID() string { return uuid.NewString() }

// Get returns the session for id, creating and initializing it when it is
// not held in memory. A held session without a cart is initialized again,
// at most once every initRetryAfter.
func (m *Manager) Get(ctx context.Context, id string) *Session {
	m.mu.Lock()
	now := m.now()
	if e, ok := m.sessions[id]; ok {
		e.lastSeen = now
		s := e.session
		if s.Cart() != nil || now.Sub(e.initAt) < initRetryAfter {
			m.mu.Unlock()
			return s
		}
		e.initAt = now
		m.mu.Unlock()

		s.op.Lock()
		defer s.op.Unlock()
		if s.Cart() == nil {
			s.log(ctx).InfoContext(ctx, "retrying cart initialization")
			m.initialize(ctx, s)
		}
		return s
	}
	s := New(id, m.client, m.store, m.events, m.defaultCountry, m.logger)
	m.sessions[id] = &entry{session: s, lastSeen: now, initAt: now}
	activeSessions.Set(float64(len(m.sessions)))

	// Callers that find the session while it initializes queue on its op lock.
	s.op.Lock()
	m.mu.Unlock()

	defer s.op.Unlock()
	m.initialize(ctx, s)
	return s
}

// initialize runs init on a context that survives the caller going away, so
// a disconnecting client does not leave the session without a cart.
func (m *Manager) initialize(ctx context.Context, s *Session) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), initTimeout)
	defer cancel()
	s.init(ctx)
}

// Len reports how many sessions are held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// OnEvict registers fn to be called with the id of every swept session.
func (m *Manager) OnEvict(fn func(id string)) {
	m.mu.Lock()
	m.onEvict = fn
	m.mu.Unlock()
}

// Sweep drops sessions idle for longer than maxIdle and returns how many
// were removed.
func (m *Manager) Sweep(maxIdle time.Duration) int {
	m.mu.Lock()
	cutoff := m.now().Add(-maxIdle)
	var evicted []string
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			evicted = append(evicted, id)
		}
	}
	activeSessions.Set(float64(len(m.sessions)))
	onEvict := m.onEvict
	m.mu.Unlock()

	if onEvict != nil {
		for _, id := range evicted {
			onEvict(id)
		}
	}
	return len(evicted)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(maxIdle); n > 0 {
				m.logger.DebugContext(ctx, "evicted idle sessions", slog.Int("count", n))
			}
		}
	}
}

// Locale reads the stored locale of a session without loading its cart.
func (m *Manager) Locale(ctx context.Context, id string) string {
	v, err := m.store.Get(ctx, kvstore.Key(id, KeyLocale))
	if err != nil {
		return ""
	}
	return v
}
