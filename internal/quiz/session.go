package quiz

// Session is the root aggregate of one quiz run. It is owned exclusively by
// the active quiz view: all mutation happens on the UI update goroutine, and
// network work only reads a snapshot of the fields it needs.
type Session struct {
	QuizID    int64
	AttemptID int64

	// Questions is fixed-length for the session's lifetime and is never
	// reordered after load.
	Questions []QuestionSlot

	// Current is the cursor into Questions.
	Current int

	// ErrorMsg is the session-level transient error banner. Cleared by the
	// user dismissing it or by the next successful operation.
	ErrorMsg string

	submitted    map[int64]bool
	localAnswers map[int][]string
	fetching     map[int]bool
}

// Load resolves the initial session from a navigation-provided payload or a
// resume-cache payload, in that precedence order. Returns nil when neither
// yields any questions; the caller must then leave the quiz view.
func Load(candidate, cached *Payload) *Session {
	p := candidate
	if p == nil {
		p = cached
	}
	if p == nil || len(p.Questions) == 0 {
		return nil
	}

	s := &Session{
		QuizID:       p.QuizID,
		AttemptID:    p.AttemptID,
		Questions:    make([]QuestionSlot, len(p.Questions)),
		Current:      p.Current,
		submitted:    make(map[int64]bool),
		localAnswers: make(map[int][]string),
		fetching:     make(map[int]bool),
	}
	copy(s.Questions, p.Questions)

	// Re-collapse type strings: cached payloads may predate the current enum.
	for i := range s.Questions {
		s.Questions[i].Type = ParseQuestionType(string(s.Questions[i].Type))
	}

	if s.Current < 0 || s.Current >= len(s.Questions) {
		s.Current = 0
	}
	for _, id := range p.SubmittedIDs {
		s.submitted[id] = true
	}
	for i, answers := range p.LocalAnswers {
		if i >= 0 && i < len(s.Questions) {
			s.localAnswers[i] = answers
		}
	}
	return s
}

// Len returns the number of questions in the session.
func (s *Session) Len() int { return len(s.Questions) }

// CurrentSlot returns the slot under the cursor.
func (s *Session) CurrentSlot() *QuestionSlot {
	return &s.Questions[s.Current]
}

// Submitted reports whether the question's answer has been accepted by the
// server. Once true it stays true for the session's lifetime.
func (s *Session) Submitted(questionID int64) bool {
	return s.submitted[questionID]
}

// SubmittedCount returns the number of accepted answers so far.
func (s *Session) SubmittedCount() int { return len(s.submitted) }

// LocalAnswer returns the raw answer values the user provided for the
// question at index i, for re-display.
func (s *Session) LocalAnswer(i int) []string { return s.localAnswers[i] }

// CanAdvance reports whether the cursor may move past the current question:
// its answer must have been accepted, or at least recorded locally.
func (s *Session) CanAdvance() bool {
	if s.Submitted(s.CurrentSlot().ID) {
		return true
	}
	_, ok := s.localAnswers[s.Current]
	return ok
}

// AtEnd reports whether the cursor is on the last question.
func (s *Session) AtEnd() bool { return s.Current == len(s.Questions)-1 }

// Advance moves the cursor to the next question. It returns false when the
// cursor was already on the last question; the caller must then run the
// completion flow instead of staying in the session.
func (s *Session) Advance() bool {
	if s.AtEnd() {
		return false
	}
	s.Current++
	return true
}

// ClearError dismisses the session-level error banner.
func (s *Session) ClearError() { s.ErrorMsg = "" }

// Snapshot serializes the session into a resume payload. The snapshot always
// reflects the most recently completed mutation; in-flight request state is
// deliberately not captured.
func (s *Session) Snapshot() *Payload {
	p := &Payload{
		QuizID:    s.QuizID,
		AttemptID: s.AttemptID,
		Questions: make([]QuestionSlot, len(s.Questions)),
		Current:   s.Current,
	}
	copy(p.Questions, s.Questions)
	for id := range s.submitted {
		p.SubmittedIDs = append(p.SubmittedIDs, id)
	}
	if len(s.localAnswers) > 0 {
		p.LocalAnswers = make(map[int][]string, len(s.localAnswers))
		for i, answers := range s.localAnswers {
			p.LocalAnswers[i] = answers
		}
	}
	return p
}
