package streammagic

import "time"

// Exchange describes one HTTP attempt made by the client.
type Exchange struct {
	RequestID   string        // Value of the X-Request-ID header
	Time        time.Time     // When the attempt started
	Method      string        // HTTP method
	URL         string        // Full request URL
	Attempt     int           // 1-based attempt number within one call
	StatusCode  int           // 0 when no response was received
	ContentType string        // Declared response content type
	Duration    time.Duration // Time until the body was read or the attempt failed
	Error       string        // Error text, empty on success
	ErrorKind   string        // ErrorKind name, empty on success
}

// Tracer receives every Exchange. Implementations must be safe for concurrent
// use and should return quickly.
type Tracer interface {
	Trace(Exchange)
}

// TracerFunc adapts a function to the Tracer interface
type TracerFunc func(Exchange)

// Trace calls f(ex)
func (f TracerFunc) Trace(ex Exchange) {
	f(ex)
}

type noopTracer struct{}

func (noopTracer) Trace(Exchange) {}
