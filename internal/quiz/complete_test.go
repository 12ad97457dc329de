package quiz

import (
	"context"
	"errors"
	"testing"

	"github.com/abhisek/bellring/internal/api"
)

type fakeCompleteClient struct {
	completeErr   error
	detailErr     error
	detail        *api.Attempt
	completeCalls int
	detailCalls   int
}

func (f *fakeCompleteClient) CompleteAttempt(ctx context.Context, attemptID int64) error {
	f.completeCalls++
	return f.completeErr
}

func (f *fakeCompleteClient) AttemptDetail(ctx context.Context, attemptID int64) (*api.Attempt, error) {
	f.detailCalls++
	return f.detail, f.detailErr
}

// scoredSession builds a three-question session: a single-select, a
// multi-select with two correct choices, and a free-text.
func scoredSession() *Session {
	p := &Payload{
		QuizID:    1,
		AttemptID: 42,
		Questions: []QuestionSlot{
			{ID: 1, Type: TypeSingleSelect, Prompt: "q1", Choices: []Choice{
				{ID: 10, Label: "right", Correct: true},
				{ID: 11, Label: "wrong"},
			}},
			{ID: 2, Type: TypeMultiSelect, Prompt: "q2", Choices: []Choice{
				{ID: 20, Label: "a", Correct: true},
				{ID: 21, Label: "b", Correct: true},
				{ID: 22, Label: "c"},
			}},
			{ID: 3, Type: TypeFreeText, Prompt: "q3"},
		},
	}
	return Load(p, nil)
}

func TestCompleteAuthoritativeFullMarks(t *testing.T) {
	correct := true
	c := &fakeCompleteClient{
		detail: &api.Attempt{
			ID: 42,
			SelectedChoices: []api.SelectedChoice{
				{QuestionID: 1, ChoiceID: 10},
				{QuestionID: 2, ChoiceID: 20},
				{QuestionID: 2, ChoiceID: 21},
			},
			TextAnswers: []api.TextAnswerResult{
				{QuestionID: 3, IsCorrect: &correct},
			},
		},
	}

	out := Complete(context.Background(), c, scoredSession())
	if !out.Authoritative {
		t.Fatal("expected authoritative outcome")
	}
	if out.Score != 3 || out.Total != 3 {
		t.Errorf("expected 3/3, got %d/%d", out.Score, out.Total)
	}
	if c.completeCalls != 1 || c.detailCalls != 1 {
		t.Errorf("expected one complete and one detail call, got %d/%d",
			c.completeCalls, c.detailCalls)
	}
}

func TestCompleteMultiSelectNeedsExactSet(t *testing.T) {
	tests := []struct {
		name     string
		selected []api.SelectedChoice
		want     int
	}{
		{"subset", []api.SelectedChoice{{QuestionID: 2, ChoiceID: 20}}, 0},
		{"superset", []api.SelectedChoice{
			{QuestionID: 2, ChoiceID: 20},
			{QuestionID: 2, ChoiceID: 21},
			{QuestionID: 2, ChoiceID: 22},
		}, 0},
		{"exact", []api.SelectedChoice{
			{QuestionID: 2, ChoiceID: 20},
			{QuestionID: 2, ChoiceID: 21},
		}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeCompleteClient{detail: &api.Attempt{SelectedChoices: tt.selected}}
			out := Complete(context.Background(), c, scoredSession())
			if out.Score != tt.want {
				t.Errorf("got score %d, want %d", out.Score, tt.want)
			}
		})
	}
}

func TestCompleteSingleSelectUniqueCorrect(t *testing.T) {
	// Two selections for a single-select question must not count even if
	// one of them is the correct choice.
	c := &fakeCompleteClient{detail: &api.Attempt{SelectedChoices: []api.SelectedChoice{
		{QuestionID: 1, ChoiceID: 10},
		{QuestionID: 1, ChoiceID: 11},
	}}}
	out := Complete(context.Background(), c, scoredSession())
	if out.Score != 0 {
		t.Errorf("expected 0, got %d", out.Score)
	}
}

func TestCompleteFallbackOnCompleteFailure(t *testing.T) {
	s := scoredSession()
	// Only the free-text question has a client-side verdict.
	s.Questions[2].Scoring = &Scoring{Correct: true}

	c := &fakeCompleteClient{completeErr: errors.New("server down")}
	out := Complete(context.Background(), c, s)
	if out.Authoritative {
		t.Fatal("failed completion must not claim authoritative results")
	}
	if out.Score != 1 || out.Total != 3 {
		t.Errorf("fallback should count only free-text verdicts: got %d/%d", out.Score, out.Total)
	}
	if c.detailCalls != 0 {
		t.Error("detail fetch must be skipped when completion fails")
	}
}

func TestCompleteFallbackOnDetailFailure(t *testing.T) {
	c := &fakeCompleteClient{detailErr: errors.New("not found")}
	out := Complete(context.Background(), c, scoredSession())
	if out.Authoritative {
		t.Fatal("expected fallback outcome")
	}
	if out.Score != 0 {
		t.Errorf("no client-side verdicts means score 0, got %d", out.Score)
	}
}

func TestCompleteWithoutAttemptSkipsNetwork(t *testing.T) {
	p := &Payload{Questions: scoredSession().Questions}
	s := Load(p, nil)

	c := &fakeCompleteClient{}
	out := Complete(context.Background(), c, s)
	if c.completeCalls != 0 || c.detailCalls != 0 {
		t.Error("no attempt id: no network calls expected")
	}
	if out.Authoritative {
		t.Error("expected local fallback outcome")
	}
}
