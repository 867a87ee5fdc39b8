package wallet

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is one connected wallet. The passkey SDK owns authentication in
// the browser; the backend only needs to know which wallet a demo session is
// acting for, plus an optional label and receipt email the user typed in.
type Session struct {
	Token       string `json:"token"`
	Address     string `json:"address"`
	Label       string `json:"label,omitempty"`
	Email       string `json:"email,omitempty"`
	ConnectedAt int64  `json:"connectedAt"`
}

// Registry tracks connected wallet sessions in memory. Sessions do not
// survive a restart, matching the SDK's own reconnect-on-load behavior.
type Registry struct {
	mutex    sync.RWMutex
	sessions map[string]Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]Session),
	}
}

// Connect registers a wallet and returns its session.
func (r *Registry) Connect(address, label, email string) Session {
	session := Session{
		Token:       uuid.NewString(),
		Address:     address,
		Label:       label,
		Email:       email,
		ConnectedAt: time.Now().UnixMilli(),
	}

	r.mutex.Lock()
	r.sessions[session.Token] = session
	r.mutex.Unlock()

	return session
}

// Get returns the session for a token.
func (r *Registry) Get(token string) (Session, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	session, exists := r.sessions[token]
	if !exists {
		return Session{}, ErrSessionNotFound
	}
	return session, nil
}

// FindByAddress returns any live session for a wallet address.
func (r *Registry) FindByAddress(address string) (Session, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, session := range r.sessions {
		if session.Address == address {
			return session, true
		}
	}
	return Session{}, false
}

// Disconnect removes a session. Unknown tokens are a no-op; the client may
// retry disconnects after a dropped response.
func (r *Registry) Disconnect(token string) {
	r.mutex.Lock()
	delete(r.sessions, token)
	r.mutex.Unlock()
}
