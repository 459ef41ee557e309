package fakedevice

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

// FaultConfig describes a canned response for one endpoint path
type FaultConfig struct {
	StatusCode  int           // 0 means respond normally after Delay
	Body        string        // Raw body; a JSON error object when empty
	ContentType string        // Defaults to application/json
	Delay       time.Duration // Applied before responding
	Times       int           // Number of requests to fail; 0 means every request
}

// FaultRegistry maps request paths to injected faults. It is safe for
// concurrent use.
type FaultRegistry struct {
	mu     sync.Mutex
	faults map[string]*faultEntry
}

type faultEntry struct {
	cfg  FaultConfig
	hits int
}

// NewFaultRegistry creates an empty registry
func NewFaultRegistry() *FaultRegistry {
	return &FaultRegistry{faults: make(map[string]*faultEntry)}
}

// Set injects a fault for requests to path
func (fr *FaultRegistry) Set(path string, fault FaultConfig) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	fr.faults[path] = &faultEntry{cfg: fault}
}

// Remove deletes the fault for path, reporting whether one existed
func (fr *FaultRegistry) Remove(path string) bool {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	_, existed := fr.faults[path]
	delete(fr.faults, path)
	return existed
}

// Check returns the fault to apply to a request for path, or nil.
// A fault limited by Times expires once it has been served that often.
func (fr *FaultRegistry) Check(path string) *FaultConfig {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	e, ok := fr.faults[path]
	if !ok {
		return nil
	}
	e.hits++
	if e.cfg.Times > 0 && e.hits >= e.cfg.Times {
		delete(fr.faults, path)
	}
	f := e.cfg
	return &f
}

// Reset clears all faults
func (fr *FaultRegistry) Reset() {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	fr.faults = make(map[string]*faultEntry)
}

// FaultInjection applies any fault registered for the request path
func (fr *FaultRegistry) FaultInjection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fault := fr.Check(r.URL.Path)
		if fault == nil {
			next.ServeHTTP(w, r)
			return
		}

		if fault.Delay > 0 {
			select {
			case <-time.After(fault.Delay):
			case <-r.Context().Done():
				return
			}
		}
		if fault.StatusCode == 0 {
			next.ServeHTTP(w, r)
			return
		}

		contentType := fault.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(fault.StatusCode)
		if fault.Body != "" {
			fmt.Fprint(w, fault.Body)
		} else {
			fmt.Fprintf(w, `{"code":%d,"message":"injected fault"}`, fault.StatusCode)
		}
	})
}
