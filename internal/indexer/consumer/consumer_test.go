package consumer

import (
	"context"
	"errors"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/document"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

type added struct {
	source  string
	id      int
	text    string
	status  document.Status
	ratings []int
}

type recordingAdder struct {
	calls []added
	err   error
}

func (r *recordingAdder) AddDocument(_ context.Context, source string, id int, text string, status document.Status, ratings []int) error {
	r.calls = append(r.calls, added{source, id, text, status, ratings})
	return r.err
}

func TestHandleMessage(t *testing.T) {
	adder := &recordingAdder{}
	h := HandleMessage(adder, "kafka")
	ctx := context.Background()

	if err := h(ctx, []byte("1"), []byte(`{"id":1,"text":"white cat","status":"banned","ratings":[8,-3]}`)); err != nil {
		t.Fatal(err)
	}
	if err := h(ctx, []byte("2"), []byte(`{"id":2,"text":"dog"}`)); err != nil {
		t.Fatal(err)
	}
	if len(adder.calls) != 2 {
		t.Fatalf("calls = %+v", adder.calls)
	}
	first := adder.calls[0]
	if first.source != "kafka" || first.id != 1 || first.status != document.StatusBanned || len(first.ratings) != 2 {
		t.Errorf("first call = %+v", first)
	}
	if adder.calls[1].status != document.StatusActual {
		t.Errorf("default status = %v, want ACTUAL", adder.calls[1].status)
	}
}

func TestHandleMessageAcknowledgesPoisonMessages(t *testing.T) {
	adder := &recordingAdder{}
	h := HandleMessage(adder, "kafka")
	ctx := context.Background()

	for _, payload := range []string{
		`not json`,
		`{"text":"no id"}`,
		`{"id":3,"status":"ARCHIVED"}`,
	} {
		if err := h(ctx, nil, []byte(payload)); err != nil {
			t.Errorf("payload %s: err = %v, want nil", payload, err)
		}
	}
	if len(adder.calls) != 0 {
		t.Errorf("invalid payloads reached the service: %+v", adder.calls)
	}

	adder.err = apperrors.InvalidInput("document %d already exists", 1)
	if err := h(ctx, nil, []byte(`{"id":1,"text":"again"}`)); err != nil {
		t.Errorf("rejected document should be acknowledged, got %v", err)
	}
}

func TestHandleMessageSurfacesUnexpectedErrors(t *testing.T) {
	boom := errors.New("boom")
	h := HandleMessage(&recordingAdder{err: boom}, "kafka")
	if err := h(context.Background(), nil, []byte(`{"id":1,"text":"cat"}`)); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

type stubRunner struct{ started bool }

func (s *stubRunner) Start(context.Context) error {
	s.started = true
	return nil
}

func TestIndexConsumerStart(t *testing.T) {
	r := &stubRunner{}
	if err := New(r).Start(context.Background()); err != nil || !r.started {
		t.Errorf("started = %v, err = %v", r.started, err)
	}
}
