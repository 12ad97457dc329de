package quiz

import (
	"context"

	"github.com/abhisek/bellring/internal/api"
)

// DetailClient is the slice of the API client the detail fetcher needs.
type DetailClient interface {
	QuestionChoices(ctx context.Context, questionID int64) ([]api.Choice, error)
	ReferenceAnswer(ctx context.Context, questionID int64) (string, error)
}

// Detail is the lazily fetched per-question enrichment: choices for
// choice-bearing types, the reference answer for free-text.
type Detail struct {
	Choices         []Choice
	ReferenceAnswer string
}

// NeedsDetail reports whether the slot at index i still needs enrichment and
// no request for it is in flight.
func (s *Session) NeedsDetail(i int) bool {
	if i < 0 || i >= len(s.Questions) {
		return false
	}
	return !s.Questions[i].HasDetail() && !s.fetching[i]
}

// BeginDetail claims the in-flight slot for index i. It returns false when
// the slot already has detail or a request is outstanding, so a second
// trigger for the same unresolved index never issues a duplicate request.
func (s *Session) BeginDetail(i int) bool {
	if !s.NeedsDetail(i) {
		return false
	}
	s.fetching[i] = true
	return true
}

// FetchDetail retrieves the enrichment for one question. The slot is passed
// by value: the request is bound to the question it was issued for, not to
// the live cursor, so a late response cannot target the wrong slot.
func FetchDetail(ctx context.Context, c DetailClient, slot QuestionSlot) (Detail, error) {
	if slot.Type.ChoiceBearing() {
		wire, err := c.QuestionChoices(ctx, slot.ID)
		if err != nil {
			return Detail{}, err
		}
		d := Detail{Choices: make([]Choice, 0, len(wire))}
		for _, ch := range wire {
			d.Choices = append(d.Choices, Choice{ID: ch.ID, Label: ch.ChoiceText, Correct: ch.IsCorrect})
		}
		return d, nil
	}

	text, err := c.ReferenceAnswer(ctx, slot.ID)
	if err != nil {
		return Detail{}, err
	}
	return Detail{ReferenceAnswer: text}, nil
}

// MergeDetail writes a fetched detail into the slot at index i and releases
// the in-flight claim. Already-populated detail is never overwritten, and no
// other index is touched.
func (s *Session) MergeDetail(i int, d Detail) {
	if i < 0 || i >= len(s.Questions) {
		return
	}
	delete(s.fetching, i)
	slot := &s.Questions[i]
	if slot.HasDetail() {
		return
	}
	if slot.Type.ChoiceBearing() {
		slot.Choices = d.Choices
	} else {
		slot.ReferenceAnswer = d.ReferenceAnswer
	}
}

// FailDetail releases the in-flight claim for index i and raises the session
// error banner. Merged detail from earlier fetches is left intact, and the
// fetch retries when the user revisits the index.
func (s *Session) FailDetail(i int, err error) {
	delete(s.fetching, i)
	if err != nil {
		s.ErrorMsg = "Could not load question details: " + err.Error()
	}
}
