package quiz

import (
	"context"

	"github.com/abhisek/bellring/internal/api"
)

// CompleteClient is the slice of the API client the completion flow needs.
type CompleteClient interface {
	CompleteAttempt(ctx context.Context, attemptID int64) error
	AttemptDetail(ctx context.Context, attemptID int64) (*api.Attempt, error)
}

// Outcome is the final score handed to the results view.
type Outcome struct {
	Score         int
	Total         int
	Authoritative bool
}

// Complete runs the completion flow: finalize the remote attempt, fetch the
// authoritative results, and compute the score. Each step that fails
// short-circuits forward to the local fallback; the flow never fails
// terminally, so the user is never trapped on the quiz screen.
func Complete(ctx context.Context, c CompleteClient, s *Session) Outcome {
	out := Outcome{Total: len(s.Questions)}

	if s.AttemptID == 0 {
		out.Score = fallbackScore(s)
		return out
	}
	if err := c.CompleteAttempt(ctx, s.AttemptID); err != nil {
		out.Score = fallbackScore(s)
		return out
	}
	detail, err := c.AttemptDetail(ctx, s.AttemptID)
	if err != nil {
		out.Score = fallbackScore(s)
		return out
	}

	out.Score = authoritativeScore(s, detail)
	out.Authoritative = true
	return out
}

// authoritativeScore counts correct questions from the server's detailed
// attempt record. Multi-select requires the selected choice set to exactly
// equal the correct choice set; single-select and boolean require the one
// selection to be the unique correct choice; free-text uses the server's
// correctness flag.
func authoritativeScore(s *Session, detail *api.Attempt) int {
	selectedByQuestion := make(map[int64]map[int64]bool)
	for _, sc := range detail.SelectedChoices {
		set := selectedByQuestion[sc.QuestionID]
		if set == nil {
			set = make(map[int64]bool)
			selectedByQuestion[sc.QuestionID] = set
		}
		set[sc.ChoiceID] = true
	}
	textCorrect := make(map[int64]bool)
	for _, ta := range detail.TextAnswers {
		if ta.IsCorrect != nil && *ta.IsCorrect {
			textCorrect[ta.QuestionID] = true
		}
	}

	score := 0
	for i := range s.Questions {
		q := &s.Questions[i]
		switch {
		case q.Type == TypeFreeText:
			if textCorrect[q.ID] {
				score++
			}
		case q.Type == TypeMultiSelect:
			if matchesCorrectSet(q.Choices, selectedByQuestion[q.ID]) {
				score++
			}
		default: // single-select, boolean
			if matchesUniqueCorrect(q.Choices, selectedByQuestion[q.ID]) {
				score++
			}
		}
	}
	return score
}

// matchesCorrectSet reports exact equality between the selected set and the
// correct choice set. No partial credit.
func matchesCorrectSet(choices []Choice, selected map[int64]bool) bool {
	if len(selected) == 0 {
		return false
	}
	correct := 0
	for _, ch := range choices {
		if ch.Correct {
			correct++
			if !selected[ch.ID] {
				return false
			}
		}
	}
	return correct > 0 && len(selected) == correct
}

// matchesUniqueCorrect reports whether exactly one choice was selected and
// it is the unique correct one.
func matchesUniqueCorrect(choices []Choice, selected map[int64]bool) bool {
	if len(selected) != 1 {
		return false
	}
	for _, ch := range choices {
		if ch.Correct && selected[ch.ID] {
			return true
		}
	}
	return false
}

// fallbackScore tallies locally when authoritative results are unavailable:
// only free-text scoring verdicts are known client-side, so choice-type
// questions contribute nothing. An accepted degradation, not an error.
func fallbackScore(s *Session) int {
	score := 0
	for i := range s.Questions {
		if sc := s.Questions[i].Scoring; sc != nil && sc.Correct {
			score++
		}
	}
	return score
}
