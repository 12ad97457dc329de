package quiz

import (
	"context"
	"errors"
	"testing"

	"github.com/abhisek/bellring/internal/api"
)

type fakeSubmitClient struct {
	choiceCalls int
	createCalls int
	updateCalls int

	lastSelections []api.ChoiceSelection
	createErr      error
	result         *api.TextAnswerResult
}

func (f *fakeSubmitClient) SubmitChoices(ctx context.Context, attemptID int64, selections []api.ChoiceSelection) error {
	f.choiceCalls++
	f.lastSelections = selections
	return nil
}

func (f *fakeSubmitClient) SubmitTextAnswer(ctx context.Context, attemptID, questionID int64, answerText string) (*api.TextAnswerResult, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.result, nil
}

func (f *fakeSubmitClient) UpdateTextAnswer(ctx context.Context, attemptID, questionID int64, answerText string) (*api.TextAnswerResult, error) {
	f.updateCalls++
	return f.result, nil
}

func choiceSession(t *testing.T) *Session {
	t.Helper()
	s := Load(testPayload(2), nil)
	s.Questions[0].Choices = []Choice{
		{ID: 11, Label: "red"},
		{ID: 12, Label: "blue"},
	}
	return s
}

func TestPrepareSubmissionResolvesLabels(t *testing.T) {
	s := choiceSession(t)
	sub, err := s.PrepareSubmission(0, []string{" blue "})
	if err != nil {
		t.Fatal(err)
	}
	if len(sub.Selections) != 1 || sub.Selections[0].ChoiceID != 12 {
		t.Errorf("label not resolved: %+v", sub.Selections)
	}
	if sub.Selections[0].QuestionID != 100 {
		t.Errorf("selection bound to wrong question: %+v", sub.Selections[0])
	}
}

func TestPrepareSubmissionUnknownLabel(t *testing.T) {
	s := choiceSession(t)
	_, err := s.PrepareSubmission(0, []string{"green"})
	var notFound *ChoiceNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ChoiceNotFoundError, got %v", err)
	}
	if notFound.Label != "green" {
		t.Errorf("wrong label in error: %q", notFound.Label)
	}
}

func TestPrepareSubmissionValidation(t *testing.T) {
	s := choiceSession(t)

	if _, err := s.PrepareSubmission(0, []string{"  "}); !errors.Is(err, ErrInvalidSubmission) {
		t.Errorf("blank answer: expected ErrInvalidSubmission, got %v", err)
	}
	if _, err := s.PrepareSubmission(5, []string{"x"}); !errors.Is(err, ErrInvalidSubmission) {
		t.Errorf("bad index: expected ErrInvalidSubmission, got %v", err)
	}

	noAttempt := Load(&Payload{Questions: testPayload(1).Questions}, nil)
	if _, err := noAttempt.PrepareSubmission(0, []string{"x"}); !errors.Is(err, ErrInvalidSubmission) {
		t.Errorf("no attempt id: expected ErrInvalidSubmission, got %v", err)
	}
}

func TestPrepareSubmissionIdempotentNoOp(t *testing.T) {
	s := choiceSession(t)
	s.RecordSubmission(&Submission{Index: 0, QuestionID: 100, Answers: []string{"red"}}, nil)

	sub, err := s.PrepareSubmission(0, []string{"blue"})
	if err != nil {
		t.Fatalf("re-submission must not error: %v", err)
	}
	if sub != nil {
		t.Error("re-submission must be a no-op, got a submission")
	}
	// The original answer stays.
	if got := s.LocalAnswer(0); got[0] != "red" {
		t.Errorf("recorded answer changed: %v", got)
	}
}

func TestSubmitChoicesGoesOutAsOneBatch(t *testing.T) {
	s := choiceSession(t)
	s.Questions[0].Type = TypeMultiSelect
	sub, err := s.PrepareSubmission(0, []string{"red", "blue"})
	if err != nil {
		t.Fatal(err)
	}

	c := &fakeSubmitClient{}
	sc, err := Submit(context.Background(), c, s.AttemptID, sub)
	if err != nil {
		t.Fatal(err)
	}
	if sc != nil {
		t.Error("choice submission returns no scoring")
	}
	if c.choiceCalls != 1 || len(c.lastSelections) != 2 {
		t.Errorf("expected one batch with 2 selections, got %d calls, %d selections",
			c.choiceCalls, len(c.lastSelections))
	}
	if c.createCalls != 0 {
		t.Error("choice submission must not hit the text-answer endpoint")
	}
}

func TestSubmitTextConflictFallsBackToUpdateOnce(t *testing.T) {
	s := Load(testPayload(1), nil)
	s.Questions[0].Type = TypeFreeText
	sub, err := s.PrepareSubmission(0, []string{"my answer"})
	if err != nil {
		t.Fatal(err)
	}

	correct := true
	c := &fakeSubmitClient{
		createErr: &api.ErrConflict{Err: errors.New("duplicate")},
		result:    &api.TextAnswerResult{IsCorrect: &correct, Feedback: "nice"},
	}
	sc, err := Submit(context.Background(), c, s.AttemptID, sub)
	if err != nil {
		t.Fatal(err)
	}
	if c.createCalls != 1 || c.updateCalls != 1 {
		t.Errorf("expected exactly one create and one update, got %d/%d", c.createCalls, c.updateCalls)
	}
	if sc == nil || !sc.Correct || sc.Feedback != "nice" {
		t.Errorf("scoring not mapped: %+v", sc)
	}
}

func TestSubmitTextErrorPropagates(t *testing.T) {
	s := Load(testPayload(1), nil)
	s.Questions[0].Type = TypeFreeText
	sub, _ := s.PrepareSubmission(0, []string{"x"})

	c := &fakeSubmitClient{createErr: errors.New("network down")}
	if _, err := Submit(context.Background(), c, s.AttemptID, sub); err == nil {
		t.Fatal("expected error")
	}
	if c.updateCalls != 0 {
		t.Error("non-conflict errors must not trigger the update fallback")
	}
}

func TestRecordSubmissionMergesScoringAndClearsError(t *testing.T) {
	s := Load(testPayload(1), nil)
	s.ErrorMsg = "old failure"

	s.RecordSubmission(
		&Submission{Index: 0, QuestionID: 100, Answers: []string{"x"}},
		&Scoring{Correct: true, Score: 1},
	)

	if !s.Submitted(100) {
		t.Error("question not marked submitted")
	}
	if sc := s.Questions[0].Scoring; sc == nil || !sc.Correct {
		t.Errorf("scoring not merged: %+v", sc)
	}
	if s.ErrorMsg != "" {
		t.Error("success must clear the error banner")
	}
}
