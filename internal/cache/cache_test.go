package cache

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetAbsentSlot(t *testing.T) {
	s := openTestStore(t)
	got, err := s.Get(context.Background(), SlotActiveQuiz)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("absent slot should be nil, got %q", got)
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, SlotActiveQuiz, []byte(`{"quizId":1}`)); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, SlotActiveQuiz)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"quizId":1}` {
		t.Errorf("got %q", got)
	}
}

func TestPutReplacesLastWriterWins(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, SlotQuizConfig, []byte("first")); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, SlotQuizConfig, []byte("second")); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, SlotQuizConfig)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Errorf("got %q, want the later write", got)
	}
}

func TestSlotsAreIndependent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, SlotActiveQuiz, []byte("quiz")); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, SlotQuizConfig, []byte("config")); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(ctx, SlotActiveQuiz); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, SlotActiveQuiz)
	if err != nil || got != nil {
		t.Errorf("cleared slot should be nil, got %q err %v", got, err)
	}
	got, err = s.Get(ctx, SlotQuizConfig)
	if err != nil || string(got) != "config" {
		t.Errorf("other slot must survive, got %q err %v", got, err)
	}
}

func TestClearAbsentSlotIsNoOp(t *testing.T) {
	s := openTestStore(t)
	if err := s.Clear(context.Background(), "never_written"); err != nil {
		t.Errorf("clearing an absent slot must not error: %v", err)
	}
}
