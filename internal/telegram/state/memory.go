package state

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"winnerbot/internal/logger"

	tele "gopkg.in/telebot.v4"
)

type memoryManager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	handlers map[State]tele.HandlerFunc
}

// NewMemoryManager constructs the in-memory Manager implementation. State is
// process-lifetime only; it does not survive a restart.
func NewMemoryManager() Manager {
	return &memoryManager{
		sessions: make(map[int64]*Session),
		handlers: make(map[State]tele.HandlerFunc),
	}
}

// Get returns the session for a user if it exists, otherwise a default idle session.
func (m *memoryManager) Get(userID int64) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if session, ok := m.sessions[userID]; ok {
		return session
	}
	return &Session{State: StateIdle, TempData: make(map[string]interface{})}
}

func (m *memoryManager) sessionLocked(userID int64) *Session {
	session, ok := m.sessions[userID]
	if !ok {
		session = &Session{State: StateIdle, TempData: make(map[string]interface{})}
		m.sessions[userID] = session
	}
	session.UpdatedAt = time.Now()
	return session
}

// SetState sets the FSM state for the given user.
func (m *memoryManager) SetState(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionLocked(userID).State = st
}

// GetState returns the current FSM state of a user, or StateIdle if none exists.
func (m *memoryManager) GetState(userID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if session, ok := m.sessions[userID]; ok {
		return session.State
	}
	return StateIdle
}

// InProgress reports whether the user currently has an active FSM state.
func (m *memoryManager) InProgress(userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[userID]
	return ok && session.State != StateIdle
}

// Clear removes the entire session for a user.
func (m *memoryManager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// SetTemp stores a temporary key/value pair for the given user session.
func (m *memoryManager) SetTemp(userID int64, key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionLocked(userID).TempData[key] = value
}

// GetTemp retrieves a temporary value by key for the given user session.
func (m *memoryManager) GetTemp(userID int64, key string) (interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[userID]
	if !ok {
		return nil, false
	}
	val, ok := session.TempData[key]
	return val, ok
}

// GetTempString retrieves a temporary value by key and asserts it as string.
func (m *memoryManager) GetTempString(userID int64, key string) (string, bool) {
	val, found := m.GetTemp(userID, key)
	if !found {
		return "", false
	}
	s, ok := val.(string)
	return s, ok
}

// AppendTempStrings appends values to a string-slice accumulator key.
func (m *memoryManager) AppendTempStrings(userID int64, key string, values ...string) {
	if len(values) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	session := m.sessionLocked(userID)
	existing, _ := session.TempData[key].([]string)
	session.TempData[key] = append(existing, values...)
}

// GetTempStrings retrieves a string-slice accumulator, nil when absent.
func (m *memoryManager) GetTempStrings(userID int64, key string) []string {
	val, found := m.GetTemp(userID, key)
	if !found {
		return nil
	}
	s, _ := val.([]string)
	return s
}

// ClearTemp removes a temporary key/value pair for the given user session.
func (m *memoryManager) ClearTemp(userID int64, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[userID]; ok {
		delete(session.TempData, key)
	}
}

// RegisterHandler associates a state with its handler.
func (m *memoryManager) RegisterHandler(st State, h tele.HandlerFunc) {
	if h == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[st] = h
}

// ManagerHandler executes the handler registered for the user's current state, if any.
func (m *memoryManager) ManagerHandler(c tele.Context) error {
	userID := c.Sender().ID
	current := m.GetState(userID)

	m.mu.RLock()
	handler, ok := m.handlers[current]
	m.mu.RUnlock()

	logger.TG.Debug("fsm.manager",
		slog.String("event", "fsm.dispatch"),
		slog.Int64("user_id", userID),
		slog.String("state", string(current)),
		slog.Bool("handled", ok),
	)

	if ok {
		return handler(c)
	}
	return nil
}

// PruneStale drops sessions idle for longer than the given duration and
// returns how many were removed.
func (m *memoryManager) PruneStale(olderThan time.Duration) int {
	if olderThan <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-olderThan)
	m.mu.Lock()
	defer m.mu.Unlock()
	pruned := 0
	for userID, session := range m.sessions {
		if session.State != StateIdle && session.UpdatedAt.Before(cutoff) {
			delete(m.sessions, userID)
			pruned++
		}
	}
	return pruned
}

// Janitor periodically prunes stale sessions until ctx is done. Abandoned
// flows otherwise linger forever, which is never what the operator wants.
func Janitor(ctx context.Context, mgr Manager, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := mgr.PruneStale(ttl); pruned > 0 {
				logger.TG.Info("fsm stale sessions pruned",
					slog.String("event", "fsm.prune"),
					slog.Int("pruned", pruned),
				)
			}
		}
	}
}
