package trace

import (
	"errors"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
)

// Reader streams events from a trace file
type Reader struct {
	file    *os.File
	decoder *cbor.Decoder
	failed  bool
}

// NewReader opens a trace file for reading
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{file: f, decoder: newDecoder(f)}, nil
}

// FailedOnly makes Next skip successful attempts
func (r *Reader) FailedOnly() *Reader {
	r.failed = true
	return r
}

// Next returns the next event, or io.EOF when the file is exhausted
func (r *Reader) Next() (Event, error) {
	for {
		var event Event
		if err := r.decoder.Decode(&event); err != nil {
			if errors.Is(err, io.EOF) {
				return Event{}, io.EOF
			}
			return Event{}, err
		}
		if r.failed && !event.Failed() {
			continue
		}
		return event, nil
	}
}

// Close closes the underlying file
func (r *Reader) Close() error {
	return r.file.Close()
}

// ReadAll returns every event in the trace file at path
func ReadAll(path string) ([]Event, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var events []Event
	for {
		event, err := r.Next()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, event)
	}
}
