package auth

import "sync"

// Session is the locally established identity after a successful login.
type Session struct {
	Username string
	Token    string
}

// SessionManager holds the active session. One operator session is live at
// a time; a new login replaces the previous one. The reconciler reads the
// current token from here to detect supersession.
type SessionManager struct {
	mu      sync.RWMutex
	current *Session
}

// NewSessionManager creates an empty session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{}
}

// Establish installs a session. Called only after the session token write
// has been confirmed durable.
func (m *SessionManager) Establish(username, token string) {
	m.mu.Lock()
	m.current = &Session{Username: username, Token: token}
	m.mu.Unlock()
}

// Clear drops the active session.
func (m *SessionManager) Clear() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
}

// Current returns the active session identity and token.
func (m *SessionManager) Current() (username, token string, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return "", "", false
	}
	return m.current.Username, m.current.Token, true
}
