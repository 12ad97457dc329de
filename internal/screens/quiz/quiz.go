// Package quiz is the active quiz view: it resolves a session from the
// navigation payload or the resume cache, fetches question detail lazily,
// submits answers, and runs the completion flow when the last question is
// behind the cursor.
package quiz

import (
	"context"
	"encoding/json"
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/bellring/internal/api"
	"github.com/abhisek/bellring/internal/cache"
	"github.com/abhisek/bellring/internal/quiz"
	"github.com/abhisek/bellring/internal/router"
	"github.com/abhisek/bellring/internal/screen"
	"github.com/abhisek/bellring/internal/screens/results"
	"github.com/abhisek/bellring/internal/ui/components"
	"github.com/abhisek/bellring/internal/ui/layout"
)

// QuizScreen implements screen.Screen for a quiz run. The session is owned
// by this screen: every mutation happens in Update, network calls run in
// commands and only carry copies of what they need.
type QuizScreen struct {
	client *api.Client
	store  *cache.Store

	candidate *quiz.Payload
	retry     quiz.RetryRequest
	makeSetup results.MakeSetupScreen

	session *quiz.Session
	choices components.ChoiceList
	input   components.TextInput

	// widgetFor is the question index the answer widget was built for.
	widgetFor   int
	submitting  bool
	completing  bool
	confirmQuit bool
	errMsg      string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)

// New creates a QuizScreen. A nil payload means "resume from cache". The
// setup factory is threaded through to the results screen so "new quiz" can
// navigate without a circular package dependency.
func New(client *api.Client, store *cache.Store, payload *quiz.Payload, retry quiz.RetryRequest, makeSetup results.MakeSetupScreen) *QuizScreen {
	return &QuizScreen{
		client:    client,
		store:     store,
		candidate: payload,
		retry:     retry,
		makeSetup: makeSetup,
		widgetFor: -1,
	}
}

func (s *QuizScreen) Init() tea.Cmd {
	return s.loadCmd()
}

func (s *QuizScreen) Title() string {
	return "Quiz"
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	if s.confirmQuit {
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave quiz"},
			{Key: "N", Description: "Keep going"},
		}
	}
	if s.session != nil && s.session.ErrorMsg != "" {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Dismiss"},
			{Key: "Enter", Description: "Retry"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Submit"},
		{Key: "Esc", Description: "Leave"},
	}
	if s.session != nil && s.session.Submitted(s.session.CurrentSlot().ID) {
		hints[0] = layout.KeyHint{Key: "Enter", Description: "Next"}
	}
	return hints
}

// loadCmd resolves the session. The cache read happens off the update loop;
// the resulting session pointer is handed over in the message and only
// touched on the update loop from then on.
func (s *QuizScreen) loadCmd() tea.Cmd {
	candidate := s.candidate
	store := s.store
	return func() tea.Msg {
		var cached *quiz.Payload
		if store != nil {
			if raw, err := store.Get(context.Background(), cache.SlotActiveQuiz); err == nil && raw != nil {
				if p, err := quiz.ParsePayload(raw); err == nil {
					cached = p
				}
			}
		}
		sess := quiz.Load(candidate, cached)
		if sess == nil {
			return sessionLoadedMsg{Err: errors.New("no quiz to show")}
		}
		return sessionLoadedMsg{Session: sess}
	}
}

// ensureDetailCmd issues the detail fetch for index i if the slot still
// needs one and none is in flight. The slot is copied into the command so a
// cursor move cannot redirect the response.
func (s *QuizScreen) ensureDetailCmd(i int) tea.Cmd {
	if s.session == nil || !s.session.BeginDetail(i) {
		return nil
	}
	slot := s.session.Questions[i]
	client := s.client
	return func() tea.Msg {
		d, err := quiz.FetchDetail(context.Background(), client, slot)
		return detailFetchedMsg{Index: i, Detail: d, Err: err}
	}
}

func (s *QuizScreen) submitCmd(sub *quiz.Submission) tea.Cmd {
	client := s.client
	attemptID := s.session.AttemptID
	return func() tea.Msg {
		sc, err := quiz.Submit(context.Background(), client, attemptID, sub)
		return submitDoneMsg{Sub: sub, Scoring: sc, Err: err}
	}
}

func (s *QuizScreen) completeCmd() tea.Cmd {
	client := s.client
	sess := s.session
	return func() tea.Msg {
		return completeDoneMsg{Outcome: quiz.Complete(context.Background(), client, sess)}
	}
}

// persist writes the session snapshot to the resume cache. Best effort: a
// failed write costs only resumability, never the session.
func (s *QuizScreen) persist() {
	if s.store == nil || s.session == nil {
		return
	}
	raw, err := json.Marshal(s.session.Snapshot())
	if err != nil {
		return
	}
	_ = s.store.Put(context.Background(), cache.SlotActiveQuiz, raw)
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.session = msg.Session
		s.persist()
		s.rebuildWidget()
		return s, s.ensureDetailCmd(s.session.Current)

	case detailFetchedMsg:
		if s.session == nil {
			return s, nil
		}
		if msg.Err != nil {
			s.session.FailDetail(msg.Index, msg.Err)
			return s, nil
		}
		s.session.MergeDetail(msg.Index, msg.Detail)
		if msg.Index == s.session.Current {
			s.rebuildWidget()
		}
		return s, nil

	case submitDoneMsg:
		return s.handleSubmitDone(msg)

	case completeDoneMsg:
		if s.store != nil {
			_ = s.store.Clear(context.Background(), cache.SlotActiveQuiz)
		}
		client := s.client
		store := s.store
		makeSetup := s.makeSetup
		makeQuiz := func(p *quiz.Payload, r quiz.RetryRequest) screen.Screen {
			return New(client, store, p, r, makeSetup)
		}
		retry := s.retry
		quizID := s.session.QuizID
		outcome := msg.Outcome
		return s, func() tea.Msg {
			return router.ReplaceScreenMsg{
				Screen: results.New(client, outcome, retry, quizID, makeQuiz, makeSetup),
			}
		}

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.session != nil && s.widgetFor == s.session.Current && !s.session.CurrentSlot().Type.ChoiceBearing() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuizScreen) handleSubmitDone(msg submitDoneMsg) (screen.Screen, tea.Cmd) {
	s.submitting = false
	if s.session == nil {
		return s, nil
	}
	if msg.Err != nil {
		if api.IsUnauthenticated(msg.Err) {
			s.session.ErrorMsg = "Your session has expired. Leave the quiz and sign in again; your progress is saved."
		} else {
			s.session.ErrorMsg = "Could not submit answer: " + msg.Err.Error()
		}
		return s, nil
	}
	s.session.RecordSubmission(msg.Sub, msg.Scoring)
	s.persist()
	if msg.Sub != nil && msg.Sub.Index == s.session.Current {
		s.rebuildWidget()
	}
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if s.session == nil {
		return s, nil
	}

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.confirmQuit = false
			s.persist()
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	if s.completing {
		return s, nil
	}

	switch key {
	case "esc":
		if s.session.ErrorMsg != "" {
			s.session.ClearError()
			return s, nil
		}
		s.confirmQuit = true
		return s, nil

	case "enter":
		if s.submitting {
			return s, nil
		}
		if s.session.ErrorMsg != "" {
			// Retry whatever failed: detail fetches re-arm on revisit,
			// submissions re-run from the still-editable widget.
			s.session.ClearError()
			return s, s.ensureDetailCmd(s.session.Current)
		}
		if s.session.Submitted(s.session.CurrentSlot().ID) {
			return s.advance()
		}
		return s.submit()
	}

	// Forward everything else to the answer widget.
	if s.widgetFor == s.session.Current {
		if s.session.CurrentSlot().Type.ChoiceBearing() {
			var cmd tea.Cmd
			s.choices, cmd = s.choices.Update(msg)
			return s, cmd
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// submit validates and sends the current answer.
func (s *QuizScreen) submit() (screen.Screen, tea.Cmd) {
	answers := s.widgetAnswers()

	// With no attempt binding, answers are recorded locally so the user can
	// still walk the whole quiz; scoring happens in the fallback tally.
	if s.session.AttemptID == 0 {
		if len(answers) == 0 {
			return s, nil
		}
		s.session.RecordLocalAnswer(s.session.Current, answers)
		s.persist()
		return s.advance()
	}

	sub, err := s.session.PrepareSubmission(s.session.Current, answers)
	if err != nil {
		var notFound *quiz.ChoiceNotFoundError
		switch {
		case errors.As(err, &notFound):
			s.session.ErrorMsg = err.Error()
		case errors.Is(err, quiz.ErrInvalidSubmission):
			// Empty answer or similar; nothing was sent, nothing changed.
		default:
			s.session.ErrorMsg = err.Error()
		}
		return s, nil
	}
	if sub == nil {
		// Already submitted; treat the keypress as advance.
		return s.advance()
	}
	s.submitting = true
	return s, s.submitCmd(sub)
}

// advance moves the cursor forward, or starts completion past the last
// question.
func (s *QuizScreen) advance() (screen.Screen, tea.Cmd) {
	if !s.session.CanAdvance() {
		return s, nil
	}
	if !s.session.Advance() {
		s.completing = true
		return s, s.completeCmd()
	}
	s.persist()
	s.rebuildWidget()
	return s, s.ensureDetailCmd(s.session.Current)
}

// widgetAnswers reads the raw answer values from the active widget.
func (s *QuizScreen) widgetAnswers() []string {
	if s.widgetFor != s.session.Current {
		return nil
	}
	if s.session.CurrentSlot().Type.ChoiceBearing() {
		return s.choices.Selections()
	}
	if v := s.input.Value(); v != "" {
		return []string{v}
	}
	return nil
}

// rebuildWidget constructs the answer widget for the question under the
// cursor, restoring any prior answer for re-display.
func (s *QuizScreen) rebuildWidget() {
	slot := s.session.CurrentSlot()
	i := s.session.Current
	prior := s.session.LocalAnswer(i)

	if slot.Type.ChoiceBearing() {
		if len(slot.Choices) == 0 {
			// Detail not merged yet; the view shows a loading line.
			s.widgetFor = -1
			return
		}
		labels := make([]string, 0, len(slot.Choices))
		for _, ch := range slot.Choices {
			labels = append(labels, ch.Label)
		}
		s.choices = components.NewChoiceList(labels, slot.Type == quiz.TypeMultiSelect)
		s.choices.SetSelections(prior)
		s.choices.Locked = s.session.Submitted(slot.ID)
	} else {
		s.input = components.NewTextInput("Type your answer...", false, 200)
		if len(prior) > 0 {
			s.input.Model.SetValue(prior[0])
		}
	}
	s.widgetFor = i
}
