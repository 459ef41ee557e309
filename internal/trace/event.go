package trace

import (
	"time"

	"github.com/muurk/streammagic/pkg/streammagic"
)

// Event is one recorded request attempt.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// SessionID identifies the recorder that wrote the event (UUID).
	SessionID string `cbor:"1,keyasint"`

	// RequestID is the X-Request-ID sent with the attempt (UUID).
	RequestID string `cbor:"2,keyasint"`

	Timestamp   time.Time     `cbor:"3,keyasint"`
	Method      string        `cbor:"4,keyasint"`
	URL         string        `cbor:"5,keyasint"`
	Attempt     int           `cbor:"6,keyasint"`
	StatusCode  int           `cbor:"7,keyasint,omitempty"`
	ContentType string        `cbor:"8,keyasint,omitempty"`
	Duration    time.Duration `cbor:"9,keyasint"`

	// Error and ErrorKind are empty for successful attempts.
	Error     string `cbor:"10,keyasint,omitempty"`
	ErrorKind string `cbor:"11,keyasint,omitempty"`
}

// NewEvent converts a client exchange into an Event
func NewEvent(sessionID string, ex streammagic.Exchange) Event {
	return Event{
		SessionID:   sessionID,
		RequestID:   ex.RequestID,
		Timestamp:   ex.Time,
		Method:      ex.Method,
		URL:         ex.URL,
		Attempt:     ex.Attempt,
		StatusCode:  ex.StatusCode,
		ContentType: ex.ContentType,
		Duration:    ex.Duration,
		Error:       ex.Error,
		ErrorKind:   ex.ErrorKind,
	}
}

// Failed reports whether the attempt ended in an error
func (e Event) Failed() bool {
	return e.Error != ""
}
