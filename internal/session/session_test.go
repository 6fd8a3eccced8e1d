package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zkjiang/autoabstract/internal/abstract"
	"github.com/zkjiang/autoabstract/internal/record"
	"github.com/zkjiang/autoabstract/internal/schema"
)

// fakeExtractor lets tests control completion and observe the fields passed.
type fakeExtractor struct {
	reply   string
	err     error
	release chan struct{}
	fields  []schema.Field
}

func (f *fakeExtractor) Extract(ctx context.Context, note string, fields []schema.Field) (*record.Record, error) {
	f.fields = fields
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return record.Decode([]byte(f.reply))
}

func TestExtract_Success(t *testing.T) {
	s := New()
	ex := &fakeExtractor{reply: `{"visitDate":"2024-01-01","missingInformation":[]}`}

	rec, err := s.Extract(context.Background(), ex, "note")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if s.Status() != StatusSuccess {
		t.Errorf("status = %v, want success", s.Status())
	}
	got, ok := s.Result()
	if !ok || got != rec {
		t.Error("result not stored on session")
	}
	if ex.fields != nil {
		t.Error("default config should pass nil custom fields")
	}
}

func TestExtract_EmptyNote(t *testing.T) {
	s := New()
	if _, err := s.Extract(context.Background(), &fakeExtractor{}, "   \n"); !errors.Is(err, ErrEmptyNote) {
		t.Fatalf("expected ErrEmptyNote, got %v", err)
	}
	if s.Status() != StatusIdle {
		t.Errorf("blank note must not leave idle, status = %v", s.Status())
	}
}

func TestExtract_SingleInFlight(t *testing.T) {
	s := New()
	ex := &fakeExtractor{
		reply:   `{"missingInformation":[]}`,
		release: make(chan struct{}),
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.Extract(context.Background(), ex, "note")
		done <- err
	}()

	for s.Status() != StatusProcessing {
		time.Sleep(time.Millisecond)
	}

	if _, err := s.Extract(context.Background(), &fakeExtractor{}, "note"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	close(ex.release)
	if err := <-done; err != nil {
		t.Fatalf("first extraction failed: %v", err)
	}
	if s.Status() != StatusSuccess {
		t.Errorf("status = %v, want success", s.Status())
	}
}

func TestExtract_FailureThenRetry(t *testing.T) {
	s := New()
	upstream := &abstract.StatusError{Code: 500, Body: "boom"}

	_, err := s.Extract(context.Background(), &fakeExtractor{err: upstream}, "note")
	var statusErr *abstract.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if s.Status() != StatusError {
		t.Errorf("status = %v, want error", s.Status())
	}
	if _, ok := s.Result(); ok {
		t.Error("failed extraction must not produce a result")
	}
	if s.Err() == nil {
		t.Error("error state should expose the failure")
	}

	// The error state is not terminal for new requests.
	rec, err := s.Extract(context.Background(), &fakeExtractor{reply: `{"missingInformation":[]}`}, "note")
	if err != nil || rec == nil {
		t.Fatalf("retry after failure: rec=%v err=%v", rec, err)
	}
	if s.Err() != nil {
		t.Error("success must clear the stored failure")
	}
}

func TestExtract_UsesActiveConfig(t *testing.T) {
	s := New()
	s.SetConfig(schema.DefaultConfig().WithField(schema.Field{
		ID: "1", Key: "allergies", Description: "d", Type: schema.TypeArray,
	}))

	ex := &fakeExtractor{reply: `{"allergies":[],"missingInformation":[]}`}
	if _, err := s.Extract(context.Background(), ex, "note"); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(ex.fields) != 1 || ex.fields[0].Key != "allergies" {
		t.Errorf("custom fields not passed through: %v", ex.fields)
	}
}

func TestClear(t *testing.T) {
	s := New()
	cfg := schema.DefaultConfig().WithField(schema.Field{ID: "1", Key: "k", Description: "d", Type: schema.TypeString})
	s.SetConfig(cfg)

	if _, err := s.Extract(context.Background(), &fakeExtractor{reply: `{"k":"v","missingInformation":[]}`}, "note"); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	s.Clear()
	if s.Status() != StatusIdle {
		t.Errorf("status = %v, want idle", s.Status())
	}
	if _, ok := s.Result(); ok {
		t.Error("Clear should drop the result")
	}
	if !s.Config().IsCustom {
		t.Error("Clear must keep the active configuration")
	}
}

func TestStatusJSON(t *testing.T) {
	b, err := StatusProcessing.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"processing"` {
		t.Errorf("MarshalJSON = %s", b)
	}
}
