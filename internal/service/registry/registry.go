package registry

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	localemodel "github.com/avelier/decoychat/internal/model/locale"
	"github.com/avelier/decoychat/internal/model/message"
	sessionmodel "github.com/avelier/decoychat/internal/model/session"
)

// ErrSessionNotFound is returned by Ping when no live session matches the id.
var ErrSessionNotFound = errors.New("session not found")

// Config tunes registry housekeeping.
type Config struct {
	IdleCeiling   time.Duration // sessions older than this are swept
	SweepInterval time.Duration // how often the idle sweep runs
	MaxSessions   int           // connection cap, enforced by handlers
}

// DefaultConfig returns the standard registry settings.
func DefaultConfig() Config {
	return Config{
		IdleCeiling:   30 * time.Minute,
		SweepInterval: 60 * time.Second,
		MaxSessions:   500,
	}
}

// entry bundles one session's record, transport and lifecycle context. The
// per-entry mutex covers transport writes and session counters so unrelated
// sessions never serialize behind each other's sends.
type entry struct {
	mu        sync.Mutex
	sess      sessionmodel.Session
	transport Transport
	ctx       context.Context
	cancel    context.CancelFunc
}

// Registry owns the set of live sessions. It is the only component that
// retains a session beyond a single call. Lock order: Registry.mu before
// entry.mu, never the reverse.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	cfg      Config
	now      func() time.Time
}

// New builds a Registry, filling in defaults for any zero config fields.
func New(cfg Config) *Registry {
	def := DefaultConfig()
	if cfg.IdleCeiling <= 0 {
		cfg.IdleCeiling = def.IdleCeiling
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = def.MaxSessions
	}
	return &Registry{
		sessions: make(map[string]*entry),
		cfg:      cfg,
		now:      time.Now,
	}
}

// Connect registers a session for the transport and sends the
// connection_established confirmation. An empty sessionID gets a generated
// one; a duplicate sessionID replaces (closes) the prior handle. The returned
// context is cancelled when the session is disconnected.
func (r *Registry) Connect(t Transport, sessionID, ownerID string, kind sessionmodel.Kind, loc localemodel.Context) (sessionmodel.Session, context.Context) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &entry{
		sess: sessionmodel.Session{
			ID:        sessionID,
			OwnerID:   ownerID,
			Kind:      kind,
			CreatedAt: r.now().UTC(),
			Locale:    loc,
		},
		transport: t,
		ctx:       ctx,
		cancel:    cancel,
	}

	r.mu.Lock()
	prior := r.sessions[sessionID]
	r.sessions[sessionID] = e
	r.mu.Unlock()

	// Cancel the prior handle before confirming so its goroutines stop, but
	// close its transport only after the replacement has its confirmation; a
	// slow close must not delay the new session's greeting.
	if prior != nil {
		log.Printf("[registry] session %s reconnected, replacing prior transport", sessionID)
		prior.cancel()
	}

	_ = r.Send(sessionID, message.ConnectionEstablished(sessionID, r.now().UTC()))

	if prior != nil {
		_ = prior.transport.Close()
	}
	return e.sess, ctx
}

// Disconnect tears down whichever session currently holds the id: cancels
// its context (stopping its liveness monitor and any in-flight typing
// sequence), closes the transport and removes all per-session bookkeeping.
// It is idempotent; disconnecting an unknown id is a no-op.
func (r *Registry) Disconnect(sessionID string) {
	r.mu.RLock()
	e, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return
	}
	r.remove(sessionID, e)
}

// DisconnectIf tears the session down only when ctx is still the lifecycle
// context Connect handed out for this id. A handler whose connection was
// replaced by a reconnect holds a stale context and must not remove the
// replacement entry on its way out.
func (r *Registry) DisconnectIf(sessionID string, ctx context.Context) {
	r.mu.RLock()
	e, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok || e.ctx != ctx {
		return
	}
	r.remove(sessionID, e)
}

// remove deletes e if it is still the entry registered under sessionID, then
// closes it. The entry comparison keeps a teardown that races a reconnect
// from taking down the replacement.
func (r *Registry) remove(sessionID string, e *entry) {
	r.mu.Lock()
	cur, ok := r.sessions[sessionID]
	if ok && cur == e {
		delete(r.sessions, sessionID)
	} else {
		ok = false
	}
	r.mu.Unlock()

	if !ok {
		return
	}

	e.cancel()
	_ = e.transport.Close()
	log.Printf("[registry] session %s disconnected", sessionID)
}

// Send delivers one message to the session, stamping a server timestamp when
// the caller didn't supply one. A missing session is a no-op (the caller may
// race with disconnect). A transport write failure is fatal for the session:
// it is disconnected immediately and the error returned. At most one delivery
// attempt is made per call.
func (r *Registry) Send(sessionID string, msg message.Envelope) error {
	r.mu.RLock()
	e, ok := r.sessions[sessionID]
	r.mu.RUnlock()

	if !ok {
		log.Printf("[registry] send to unknown session %s dropped", sessionID)
		return nil
	}

	msg.EnsureTimestamp(r.now().UTC())

	e.mu.Lock()
	err := e.transport.WriteJSON(msg)
	if err == nil {
		e.sess.MessageCount++
	}
	e.mu.Unlock()

	if err != nil {
		log.Printf("[registry] write to session %s failed: %v", sessionID, err)
		r.remove(sessionID, e)
		return err
	}
	return nil
}

// Broadcast delivers a message to every participant of the session. Sessions
// are single-recipient today, so this forwards to Send; multi-party rooms
// would fan out here.
func (r *Registry) Broadcast(sessionID string, msg message.Envelope) error {
	return r.Send(sessionID, msg)
}

// Ping issues a transport-level ping. A write failure disconnects the
// session, same as a failed Send.
func (r *Registry) Ping(sessionID string) error {
	r.mu.RLock()
	e, ok := r.sessions[sessionID]
	r.mu.RUnlock()

	if !ok {
		return ErrSessionNotFound
	}

	if err := e.transport.Ping(); err != nil {
		log.Printf("[registry] ping to session %s failed: %v", sessionID, err)
		r.remove(sessionID, e)
		return err
	}
	return nil
}

// IsConnected reports whether the session id maps to a live transport.
func (r *Registry) IsConnected(sessionID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[sessionID]
	return ok
}

// Get returns a copy of the session record.
func (r *Registry) Get(sessionID string) (sessionmodel.Session, bool) {
	r.mu.RLock()
	e, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return sessionmodel.Session{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess, true
}

// ListByOwner returns copies of every live session owned by ownerID.
func (r *Registry) ListByOwner(ownerID string) []sessionmodel.Session {
	r.mu.RLock()
	entries := make([]*entry, 0, 4)
	for _, e := range r.sessions {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	var out []sessionmodel.Session
	for _, e := range entries {
		e.mu.Lock()
		if e.sess.OwnerID == ownerID {
			out = append(out, e.sess)
		}
		e.mu.Unlock()
	}
	return out
}

// SetTyping updates the session's typing flag.
func (r *Registry) SetTyping(sessionID string, typing bool) {
	r.mu.RLock()
	e, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return
	}
	e.mu.Lock()
	e.sess.Typing = typing
	e.mu.Unlock()
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// MaxSessions returns the configured connection cap.
func (r *Registry) MaxSessions() int {
	return r.cfg.MaxSessions
}

// Run sweeps idle sessions on a fixed schedule, independent of per-message
// traffic, until the context is cancelled.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

func (r *Registry) sweep() {
	cutoff := r.now().Add(-r.cfg.IdleCeiling)

	r.mu.RLock()
	stale := make(map[string]*entry)
	for id, e := range r.sessions {
		if e.sess.CreatedAt.Before(cutoff) {
			stale[id] = e
		}
	}
	r.mu.RUnlock()

	for id, e := range stale {
		log.Printf("[registry] sweeping idle session %s", id)
		r.remove(id, e)
	}
}
