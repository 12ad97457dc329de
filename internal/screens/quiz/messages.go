package quiz

import (
	"github.com/abhisek/bellring/internal/quiz"
)

// sessionLoadedMsg is sent when the session has been resolved from the
// navigation payload or the resume cache.
type sessionLoadedMsg struct {
	Session *quiz.Session
	Err     error
}

// detailFetchedMsg is sent when a question's choices or reference answer
// arrive. Index pins the response to the slot the request was issued for.
type detailFetchedMsg struct {
	Index  int
	Detail quiz.Detail
	Err    error
}

// submitDoneMsg is sent when an answer submission round-trip finishes.
type submitDoneMsg struct {
	Sub     *quiz.Submission
	Scoring *quiz.Scoring
	Err     error
}

// completeDoneMsg is sent when the completion flow has produced an outcome.
type completeDoneMsg struct {
	Outcome quiz.Outcome
}
