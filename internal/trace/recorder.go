package trace

import (
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/streammagic/internal/logging"
	"github.com/muurk/streammagic/pkg/streammagic"
)

// FileRecorder appends exchanges to a trace file.
// It is safe for concurrent use from multiple goroutines.
type FileRecorder struct {
	sessionID string
	file      *os.File
	encoder   *cbor.Encoder
	mu        sync.Mutex
	closed    bool
}

// NewFileRecorder opens path for appending, creating it with mode 0644 if it
// does not exist.
func NewFileRecorder(path string) (*FileRecorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileRecorder{
		sessionID: uuid.New().String(),
		file:      f,
		encoder:   newEncoder(f),
	}, nil
}

// SessionID returns the id stamped on every event this recorder writes
func (r *FileRecorder) SessionID() string {
	return r.sessionID
}

// Trace records one exchange. Calls after Close are ignored.
func (r *FileRecorder) Trace(ex streammagic.Exchange) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	// A broken trace file must not fail the request being traced
	if err := r.encoder.Encode(NewEvent(r.sessionID, ex)); err != nil {
		logging.Warn("Failed to write trace event", zap.String("request_id", ex.RequestID), zap.Error(err))
	}
}

// Close closes the trace file. It is safe to call Close multiple times.
func (r *FileRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}

// NoopTracer discards every exchange
type NoopTracer struct{}

// Trace does nothing
func (NoopTracer) Trace(streammagic.Exchange) {}

var (
	_ streammagic.Tracer = (*FileRecorder)(nil)
	_ streammagic.Tracer = NoopTracer{}
)
