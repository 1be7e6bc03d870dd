package inmemory

import (
	"context"
	"errors"
	"testing"

	"github.com/mohammad-safakhou/paperchat/internal/agent/state"
	"github.com/mohammad-safakhou/paperchat/internal/memory"
)

func TestPutGetRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	st := state.NewInitialState([]state.Message{state.Human("hello")}, "s1")
	st.FinalAnswer = "hi"
	if err := s.Put(ctx, "s1", st); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FinalAnswer != "hi" || len(got.Messages) != 1 {
		t.Fatalf("unexpected state: %+v", got)
	}
}

func TestGetMissingReturnsErrNotFound(t *testing.T) {
	s := New()
	if _, err := s.Get(context.Background(), "absent"); !errors.Is(err, memory.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutIsolatesLaterMutations(t *testing.T) {
	s := New()
	ctx := context.Background()

	st := state.NewInitialState([]state.Message{state.Human("hello")}, "s1")
	if err := s.Put(ctx, "s1", st); err != nil {
		t.Fatalf("put: %v", err)
	}
	st.AppendAssistant("mutated after checkpoint")

	got, err := s.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Messages) != 1 {
		t.Fatalf("checkpoint saw later mutation: %d messages", len(got.Messages))
	}
}

func TestDeleteAndExists(t *testing.T) {
	s := New()
	ctx := context.Background()

	st := state.NewInitialState(nil, "s1")
	if err := s.Put(ctx, "s1", st); err != nil {
		t.Fatalf("put: %v", err)
	}
	ok, err := s.Exists(ctx, "s1")
	if err != nil || !ok {
		t.Fatalf("expected checkpoint to exist: ok=%v err=%v", ok, err)
	}

	if err := s.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ok, err = s.Exists(ctx, "s1")
	if err != nil || ok {
		t.Fatalf("expected checkpoint gone: ok=%v err=%v", ok, err)
	}
}
