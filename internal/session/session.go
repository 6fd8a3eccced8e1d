// Package session tracks the state of one abstraction workspace: the active
// extraction configuration, the last result, and an explicit state machine
// enforcing at most one extraction in flight.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/zkjiang/autoabstract/internal/abstract"
	"github.com/zkjiang/autoabstract/internal/record"
	"github.com/zkjiang/autoabstract/internal/schema"
)

// Status is the processing state of the session.
type Status int

const (
	StatusIdle Status = iota
	StatusProcessing
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusProcessing:
		return "processing"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the status as its lowercase name.
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

var (
	// ErrBusy is returned when an extraction is requested while another is
	// still in flight.
	ErrBusy = errors.New("an extraction is already in progress")

	// ErrEmptyNote is returned when the note text is blank.
	ErrEmptyNote = errors.New("note text is empty")
)

// Session is safe for concurrent use.
type Session struct {
	mu     sync.Mutex
	status Status
	cfg    schema.Config
	result *record.Record
	err    error
}

// New returns an idle session carrying the built-in default configuration.
func New() *Session {
	return &Session{cfg: schema.DefaultConfig()}
}

// Status returns the current processing state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Config returns a copy of the active extraction configuration.
func (s *Session) Config() schema.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// SetConfig replaces the active configuration wholesale. An extraction
// already in flight keeps the copy it started with.
func (s *Session) SetConfig(cfg schema.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// ResetConfig restores the built-in default configuration.
func (s *Session) ResetConfig() {
	s.SetConfig(schema.DefaultConfig())
}

// Result returns the last successful extraction, if any.
func (s *Session) Result() (*record.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.result != nil
}

// Err returns the failure from the last extraction, if the session is in the
// error state.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusError {
		return nil
	}
	return s.err
}

// Clear drops the last result or error and returns the session to idle. The
// active configuration is kept.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusProcessing {
		return
	}
	s.status = StatusIdle
	s.result = nil
	s.err = nil
}

// begin transitions to processing and returns the configuration the
// extraction should run with.
func (s *Session) begin() (schema.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusProcessing {
		return schema.Config{}, ErrBusy
	}
	s.status = StatusProcessing
	s.result = nil
	s.err = nil
	return s.cfg, nil
}

func (s *Session) complete(rec *record.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusSuccess
	s.result = rec
}

func (s *Session) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusError
	s.err = err
}

// Extract runs one abstraction through the state machine: idle, success, and
// error states may start a new run; a second call while one is in flight
// fails with ErrBusy.
func (s *Session) Extract(ctx context.Context, ex abstract.Extractor, note string) (*record.Record, error) {
	if strings.TrimSpace(note) == "" {
		return nil, ErrEmptyNote
	}

	cfg, err := s.begin()
	if err != nil {
		return nil, err
	}

	rec, err := ex.Extract(ctx, note, cfg.CustomFields())
	if err != nil {
		s.fail(err)
		return nil, err
	}
	s.complete(rec)
	return rec, nil
}
