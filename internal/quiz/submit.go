package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/bellring/internal/api"
)

// SubmitClient is the slice of the API client the answer submitter needs.
type SubmitClient interface {
	SubmitChoices(ctx context.Context, attemptID int64, selections []api.ChoiceSelection) error
	SubmitTextAnswer(ctx context.Context, attemptID, questionID int64, answerText string) (*api.TextAnswerResult, error)
	UpdateTextAnswer(ctx context.Context, attemptID, questionID int64, answerText string) (*api.TextAnswerResult, error)
}

// ErrInvalidSubmission is returned when a submission precondition fails
// before any network call: missing attempt id, missing question id, or an
// empty answer.
var ErrInvalidSubmission = errors.New("invalid submission")

// ChoiceNotFoundError indicates an answer label had no exact match among the
// question's fetched choices.
type ChoiceNotFoundError struct {
	Label string
}

func (e *ChoiceNotFoundError) Error() string {
	return fmt.Sprintf("no choice matches answer %q", e.Label)
}

// Submission is a validated, resolved answer ready to be sent. Preparing and
// sending are split so the UI can run the network call off the update loop
// while all session mutation stays on it.
type Submission struct {
	Index      int
	QuestionID int64
	Answers    []string
	Selections []api.ChoiceSelection
	Text       string
	freeText   bool
}

// PrepareSubmission validates preconditions and resolves answer labels for
// the question at index i. It returns (nil, nil) when the question was
// already submitted: the caller treats that as an immediate no-op, with no
// network call and no state change.
func (s *Session) PrepareSubmission(i int, rawAnswers []string) (*Submission, error) {
	if i < 0 || i >= len(s.Questions) {
		return nil, fmt.Errorf("%w: index %d out of range", ErrInvalidSubmission, i)
	}
	slot := &s.Questions[i]

	if s.Submitted(slot.ID) {
		return nil, nil
	}

	answers := make([]string, 0, len(rawAnswers))
	for _, a := range rawAnswers {
		if t := strings.TrimSpace(a); t != "" {
			answers = append(answers, t)
		}
	}
	switch {
	case s.AttemptID == 0:
		return nil, fmt.Errorf("%w: no attempt id", ErrInvalidSubmission)
	case slot.ID == 0:
		return nil, fmt.Errorf("%w: question has no id", ErrInvalidSubmission)
	case len(answers) == 0:
		return nil, fmt.Errorf("%w: empty answer", ErrInvalidSubmission)
	}

	sub := &Submission{Index: i, QuestionID: slot.ID, Answers: answers}

	if !slot.Type.ChoiceBearing() {
		sub.freeText = true
		sub.Text = answers[0]
		return sub, nil
	}

	for _, label := range answers {
		choiceID, ok := resolveChoice(slot.Choices, label)
		if !ok {
			return nil, &ChoiceNotFoundError{Label: label}
		}
		sub.Selections = append(sub.Selections, api.ChoiceSelection{
			QuestionID: slot.ID,
			ChoiceID:   choiceID,
		})
	}
	return sub, nil
}

// resolveChoice finds the choice id for an exact label match.
func resolveChoice(choices []Choice, label string) (int64, bool) {
	for _, ch := range choices {
		if ch.Label == label {
			return ch.ID, true
		}
	}
	return 0, false
}

// Submit sends a prepared submission. Choice answers go out as one batch;
// free-text answers are created, falling back to an update when the server
// reports the answer already exists. The returned scoring is nil for choice
// types (the server does not echo correctness on batch submission).
func Submit(ctx context.Context, c SubmitClient, attemptID int64, sub *Submission) (*Scoring, error) {
	if !sub.freeText {
		if err := c.SubmitChoices(ctx, attemptID, sub.Selections); err != nil {
			return nil, err
		}
		return nil, nil
	}

	res, err := c.SubmitTextAnswer(ctx, attemptID, sub.QuestionID, sub.Text)
	if api.IsConflict(err) {
		res, err = c.UpdateTextAnswer(ctx, attemptID, sub.QuestionID, sub.Text)
	}
	if err != nil {
		return nil, err
	}
	return scoringFromResult(res), nil
}

func scoringFromResult(res *api.TextAnswerResult) *Scoring {
	if res == nil {
		return nil
	}
	sc := &Scoring{Feedback: res.Feedback}
	if res.Score != nil {
		sc.Score = *res.Score
	}
	if res.IsCorrect != nil {
		sc.Correct = *res.IsCorrect
	}
	return sc
}

// RecordSubmission applies an accepted submission to the session: the
// question id enters the submitted set (write-once), the raw answers are
// kept for re-display, and any scoring verdict is merged into the slot.
func (s *Session) RecordSubmission(sub *Submission, sc *Scoring) {
	if sub == nil || sub.Index < 0 || sub.Index >= len(s.Questions) {
		return
	}
	s.submitted[sub.QuestionID] = true
	s.localAnswers[sub.Index] = sub.Answers
	if sc != nil {
		s.Questions[sub.Index].Scoring = sc
	}
	s.ErrorMsg = ""
}

// RecordLocalAnswer keeps the raw answer for re-display without marking the
// question submitted, used when submission is unavailable (no attempt id).
func (s *Session) RecordLocalAnswer(i int, answers []string) {
	if i < 0 || i >= len(s.Questions) {
		return
	}
	s.localAnswers[i] = answers
}
