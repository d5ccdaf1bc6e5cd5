package conversation

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"clinicvoice/models"
)

// sessionEntry pairs a session with the mutex serializing its turns.
type sessionEntry struct {
	mu      sync.Mutex
	session *models.Session
}

// Registry is the single authority for session lifetime. Turns within one
// session are strictly sequential: Acquire blocks until any in-flight turn
// for the same token releases. Sessions are ephemeral and evicted after the
// idle TTL.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	idleTTL  time.Duration
	logger   *zap.Logger
	stop     chan struct{}
	stopOnce sync.Once

	// now is injectable for expiry tests.
	now func() time.Time
}

func NewRegistry(idleTTL time.Duration, logger *zap.Logger) *Registry {
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	r := &Registry{
		sessions: make(map[string]*sessionEntry),
		idleTTL:  idleTTL,
		logger:   logger,
		stop:     make(chan struct{}),
		now:      time.Now,
	}
	go r.janitor()
	return r
}

// Acquire returns the session for the token, creating it if unseen, and
// locks it for the caller's exclusive use. The returned release function
// must be called exactly once when the turn finishes. A token whose session
// idled past the TTL gets a fresh session, same as an unseen token.
func (r *Registry) Acquire(sessionID string) (*models.Session, func()) {
	var entry *sessionEntry
	for {
		r.mu.Lock()
		e, ok := r.sessions[sessionID]
		if !ok {
			e = &sessionEntry{session: models.NewSession(sessionID, r.now())}
			r.sessions[sessionID] = e
		}
		r.mu.Unlock()

		e.mu.Lock()
		// Eviction may have replaced or removed the entry while we waited on
		// its lock. Only a lock on the entry still registered under the token
		// serializes turns; anything else is an orphan, so retry.
		r.mu.RLock()
		live := r.sessions[sessionID] == e
		r.mu.RUnlock()
		if live {
			entry = e
			break
		}
		e.mu.Unlock()
	}

	if entry.session == nil {
		// Unreachable through Close/ExpireStale; if it ever trips, the
		// serialization invariant is gone and limping on would hide it.
		panic("session registry corrupted: entry with nil session")
	}
	if r.now().Sub(entry.session.LastActive) > r.idleTTL {
		r.logger.Info("resetting expired session", zap.String("sessionId", sessionID))
		entry.session = models.NewSession(sessionID, r.now())
	}

	released := false
	release := func() {
		if released {
			return
		}
		released = true
		entry.session.LastActive = r.now()
		entry.mu.Unlock()
	}
	return entry.session, release
}

// Touch refreshes a session's idle clock without taking a turn.
func (r *Registry) Touch(sessionID string) {
	r.mu.RLock()
	entry, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return
	}
	entry.mu.Lock()
	entry.session.LastActive = r.now()
	entry.mu.Unlock()
}

// Close ends a session explicitly, removing it from the registry. A turn in
// flight finishes first; Close waits for it rather than yanking the entry
// out from under its lock.
func (r *Registry) Close(sessionID string) {
	r.mu.RLock()
	entry, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return
	}

	entry.mu.Lock()
	r.mu.Lock()
	if r.sessions[sessionID] == entry {
		delete(r.sessions, sessionID)
	}
	r.mu.Unlock()
	entry.session.Status = models.SessionExpired
	entry.mu.Unlock()
}

// ExpireStale evicts sessions idle past the TTL. Sessions with a turn in
// flight are skipped and picked up on a later sweep.
func (r *Registry) ExpireStale(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, entry := range r.sessions {
		if !entry.mu.TryLock() {
			continue
		}
		if now.Sub(entry.session.LastActive) > r.idleTTL {
			entry.session.Status = models.SessionExpired
			delete(r.sessions, id)
			evicted++
		}
		entry.mu.Unlock()
	}
	if evicted > 0 {
		r.logger.Info("evicted stale sessions", zap.Int("count", evicted))
	}
	return evicted
}

// Len reports live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Shutdown stops the eviction janitor.
func (r *Registry) Shutdown() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *Registry) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.ExpireStale(r.now())
		case <-r.stop:
			return
		}
	}
}
