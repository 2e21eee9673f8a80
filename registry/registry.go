// Package registry tracks the named directory sessions of one user context
// and which of them is active.
package registry

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ssoellinger/open-ldap-viewer/directory"
)

// ErrNoSuchSession is returned for tokens the registry does not know.
var ErrNoSuchSession = errors.New("no such session")

// Managed pairs a directory session with its display name. The Session
// pointer never changes after registration, so callers may hold it across
// requests without the registry lock.
type Managed struct {
	Name    string
	Session *directory.Session
}

// Info describes one registered session for listing.
type Info struct {
	Token     string `json:"token"`
	Name      string `json:"name"`
	Server    string `json:"server"`
	BaseDn    string `json:"baseDn"`
	Active    bool   `json:"active"`
	Connected bool   `json:"connected"`
}

// Registry maps short random tokens to directory sessions. Different
// sessions are independent and may execute concurrently; the registry's own
// map and active token are guarded by a mutex because the HTTP layer may
// drive it from concurrent requests.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Managed
	active   string
	log      *logrus.Logger
}

func New(log *logrus.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Managed),
		log:      log,
	}
}

func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Add registers a session under a fresh token and makes it the active one.
func (r *Registry) Add(name string, session *directory.Session) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	token := newToken()
	r.sessions[token] = &Managed{Name: name, Session: session}
	r.active = token
	r.log.WithFields(logrus.Fields{"token": token, "name": name}).Debug("session registered")
	return token
}

// Get returns the session registered under token.
func (r *Registry) Get(token string) (*Managed, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.sessions[token]
	return m, ok
}

// Active returns the active token and session, or "" and nil when the
// registry is empty.
func (r *Registry) Active() (string, *Managed) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == "" {
		return "", nil
	}
	return r.active, r.sessions[r.active]
}

// SetActive marks the given token as the active session.
func (r *Registry) SetActive(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[token]; !ok {
		return ErrNoSuchSession
	}
	r.active = token
	return nil
}

// Remove disconnects and forgets a session. When the active session is
// removed, an arbitrary remaining one becomes active, or none if the
// registry is empty.
func (r *Registry) Remove(token string) error {
	r.mu.Lock()
	m, ok := r.sessions[token]
	if !ok {
		r.mu.Unlock()
		return ErrNoSuchSession
	}
	delete(r.sessions, token)
	if r.active == token {
		r.active = ""
		for remaining := range r.sessions {
			r.active = remaining
			break
		}
	}
	r.mu.Unlock()

	m.Session.Disconnect()
	r.log.WithField("token", token).Debug("session removed")
	return nil
}

// Reconnect re-establishes a session's connection from its saved settings.
// The session reconnects in place: Connect closes the previous connection
// under the session's own mutex, so the Session pointer held by concurrent
// readers never changes.
func (r *Registry) Reconnect(token string) error {
	r.mu.Lock()
	m, ok := r.sessions[token]
	r.mu.Unlock()
	if !ok {
		return ErrNoSuchSession
	}
	return m.Session.Connect(m.Session.Settings())
}

// List describes all registered sessions.
func (r *Registry) List() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]Info, 0, len(r.sessions))
	for token, m := range r.sessions {
		settings := m.Session.Settings()
		infos = append(infos, Info{
			Token:     token,
			Name:      m.Name,
			Server:    settings.Server,
			BaseDn:    settings.BaseDn,
			Active:    token == r.active,
			Connected: m.Session.Connected(),
		})
	}
	return infos
}
