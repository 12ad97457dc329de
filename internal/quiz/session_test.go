package quiz

import (
	"testing"
)

func testPayload(n int) *Payload {
	p := &Payload{QuizID: 7, AttemptID: 42}
	for i := 0; i < n; i++ {
		p.Questions = append(p.Questions, QuestionSlot{
			ID:     int64(100 + i),
			Type:   TypeSingleSelect,
			Prompt: "question",
		})
	}
	return p
}

func TestLoadPrefersCandidate(t *testing.T) {
	candidate := testPayload(2)
	cached := testPayload(3)
	cached.QuizID = 99

	s := Load(candidate, cached)
	if s == nil {
		t.Fatal("expected a session")
	}
	if s.QuizID != 7 || s.Len() != 2 {
		t.Errorf("expected candidate session, got quiz %d with %d questions", s.QuizID, s.Len())
	}
}

func TestLoadFallsBackToCache(t *testing.T) {
	cached := testPayload(3)
	s := Load(nil, cached)
	if s == nil {
		t.Fatal("expected a session from cache")
	}
	if s.Len() != 3 {
		t.Errorf("expected 3 questions, got %d", s.Len())
	}
}

func TestLoadNilWhenEmpty(t *testing.T) {
	if s := Load(nil, nil); s != nil {
		t.Error("expected nil session for no payloads")
	}
	if s := Load(&Payload{}, nil); s != nil {
		t.Error("expected nil session for empty question list")
	}
}

func TestLoadClampsCursor(t *testing.T) {
	p := testPayload(2)
	p.Current = 5
	s := Load(p, nil)
	if s.Current != 0 {
		t.Errorf("expected cursor clamped to 0, got %d", s.Current)
	}
}

func TestLoadRestoresSubmittedAndAnswers(t *testing.T) {
	p := testPayload(3)
	p.Current = 1
	p.SubmittedIDs = []int64{100, 101}
	p.LocalAnswers = map[int][]string{0: {"A"}, 1: {"B"}}

	s := Load(p, nil)
	if !s.Submitted(100) || !s.Submitted(101) || s.Submitted(102) {
		t.Error("submitted set not restored correctly")
	}
	if s.SubmittedCount() != 2 {
		t.Errorf("expected 2 submitted, got %d", s.SubmittedCount())
	}
	if got := s.LocalAnswer(1); len(got) != 1 || got[0] != "B" {
		t.Errorf("local answer not restored, got %v", got)
	}
	if s.Current != 1 {
		t.Errorf("expected cursor 1, got %d", s.Current)
	}
}

func TestLoadNormalizesRawTypes(t *testing.T) {
	p := &Payload{
		AttemptID: 1,
		Questions: []QuestionSlot{
			{ID: 1, Type: "MULTIPLE_CHOICE", Prompt: "pick many"},
			{ID: 2, Type: "TRUE_FALSE", Prompt: "yes or no"},
			{ID: 3, Type: "something_new", Prompt: "mystery"},
		},
	}
	s := Load(p, nil)
	if s.Questions[0].Type != TypeMultiSelect {
		t.Errorf("expected multi-select, got %s", s.Questions[0].Type)
	}
	if s.Questions[1].Type != TypeBoolean {
		t.Errorf("expected boolean, got %s", s.Questions[1].Type)
	}
	if s.Questions[2].Type != TypeFreeText {
		t.Errorf("unknown type should degrade to free-text, got %s", s.Questions[2].Type)
	}
}

func TestAdvanceStopsAtEnd(t *testing.T) {
	s := Load(testPayload(2), nil)
	if !s.Advance() {
		t.Fatal("expected advance from 0 to 1")
	}
	if !s.AtEnd() {
		t.Fatal("expected cursor at end")
	}
	if s.Advance() {
		t.Error("advance past the last question must return false")
	}
	if s.Current != 1 {
		t.Errorf("cursor moved past end: %d", s.Current)
	}
}

func TestCanAdvance(t *testing.T) {
	s := Load(testPayload(2), nil)
	if s.CanAdvance() {
		t.Error("unanswered question must not be advanceable")
	}
	s.RecordLocalAnswer(0, []string{"x"})
	if !s.CanAdvance() {
		t.Error("locally answered question should be advanceable")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	p := testPayload(3)
	s := Load(p, nil)
	s.RecordSubmission(&Submission{Index: 0, QuestionID: 100, Answers: []string{"A"}}, nil)
	s.Advance()

	snap := s.Snapshot()
	restored := Load(nil, snap)
	if restored.QuizID != s.QuizID || restored.AttemptID != s.AttemptID {
		t.Error("identity fields lost in snapshot")
	}
	if restored.Current != 1 {
		t.Errorf("cursor lost, got %d", restored.Current)
	}
	if !restored.Submitted(100) {
		t.Error("submitted set lost in snapshot")
	}
	if got := restored.LocalAnswer(0); len(got) != 1 || got[0] != "A" {
		t.Errorf("local answers lost, got %v", got)
	}
}
