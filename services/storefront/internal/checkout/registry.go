package checkout

import (
	"log/slog"
	"sync"

	"github.com/iflis7/iyuc-store/services/storefront/internal/commerce"
)

// Registry keeps one Flow per session id.
type Registry struct {
	client      commerce.Client
	events      OrderEvents
	concurrency int
	logger      *slog.Logger

	mu    sync.Mutex
	flows map[string]*Flow
}

func NewRegistry(client commerce.Client, events OrderEvents, concurrency int, logger *slog.Logger) *Registry {
	return &Registry{
		client:      client,
		events:      events,
		concurrency: concurrency,
		logger:      logger,
		flows:       make(map[string]*Flow),
	}
}

// For returns the session's flow, starting one when needed. A confirmed flow
// is replaced by a fresh one only through Reset.
func (r *Registry) For(s CartSession) *Flow {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.flows[s.ID()]; ok {
		return f
	}
	f := NewFlow(r.client, s, r.events, r.concurrency, r.logger)
	r.flows[s.ID()] = f
	return f
}

// Reset discards the session's flow and starts a new one.
func (r *Registry) Reset(s CartSession) *Flow {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := NewFlow(r.client, s, r.events, r.concurrency, r.logger)
	r.flows[s.ID()] = f
	return f
}

// Forget drops the flow for a session id.
func (r *Registry) Forget(sessionID string) {
	r.mu.Lock()
	delete(r.flows, sessionID)
	r.mu.Unlock()
}
