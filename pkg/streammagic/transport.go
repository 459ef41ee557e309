package streammagic

import (
	"net/http"
	"sync"
	"sync/atomic"
)

// session is the client's connection resource: an *http.Client that is either
// created and owned by the client or supplied by the caller.
type session struct {
	http    *http.Client
	owned   bool
	closed  atomic.Bool
	once    sync.Once
	release func()
}

// newOwnedSession creates a dedicated transport so that releasing it cannot
// affect http.DefaultTransport or other clients.
func newOwnedSession() *session {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &session{
		http:    &http.Client{Transport: transport},
		owned:   true,
		release: transport.CloseIdleConnections,
	}
}

func newExternalSession(hc *http.Client) *session {
	return &session{http: hc}
}

// acquire returns the HTTP client for one request, or false once closed.
func (s *session) acquire() (*http.Client, bool) {
	if s.closed.Load() {
		return nil, false
	}
	return s.http, true
}

// close marks the session closed and releases an owned transport exactly once.
func (s *session) close() {
	s.once.Do(func() {
		s.closed.Store(true)
		if s.owned && s.release != nil {
			s.release()
		}
	})
}
