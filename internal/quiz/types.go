package quiz

import (
	"strings"

	"github.com/abhisek/bellring/internal/api"
)

// QuestionType is the closed set of question kinds the client understands.
// Raw type strings from the server (any casing) are collapsed into this enum
// at ingestion; nothing past the boundary compares raw strings.
type QuestionType string

const (
	TypeSingleSelect QuestionType = "single-select"
	TypeMultiSelect  QuestionType = "multi-select"
	TypeBoolean      QuestionType = "boolean"
	TypeFreeText     QuestionType = "free-text"
)

// ParseQuestionType normalizes a raw server type string. Unrecognized types
// degrade to free-text so the user can still type an answer.
func ParseQuestionType(raw string) QuestionType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "unique_choice", "single_select", "single-select", "single_choice":
		return TypeSingleSelect
	case "multiple_choice", "multi_select", "multi-select":
		return TypeMultiSelect
	case "true_false", "boolean", "true-false":
		return TypeBoolean
	case "short_answer", "free_text", "free-text", "open_answer":
		return TypeFreeText
	}
	return TypeFreeText
}

// ChoiceBearing reports whether this type carries a list of choices
// (as opposed to a free-text reference answer).
func (t QuestionType) ChoiceBearing() bool {
	return t == TypeSingleSelect || t == TypeMultiSelect || t == TypeBoolean
}

// Choice is one selectable option, with the server's correctness flag.
type Choice struct {
	ID      int64  `json:"id"`
	Label   string `json:"label"`
	Correct bool   `json:"correct"`
}

// Scoring is the server's verdict on a submitted free-text answer.
type Scoring struct {
	Score    int    `json:"score"`
	Correct  bool   `json:"correct"`
	Feedback string `json:"feedback,omitempty"`
}

// QuestionSlot is one question's display and runtime state. Exactly one of
// Choices / ReferenceAnswer is populated once detail is fetched, determined
// by Type.
type QuestionSlot struct {
	ID              int64        `json:"id"`
	Type            QuestionType `json:"type"`
	Prompt          string       `json:"prompt"`
	Choices         []Choice     `json:"choices,omitempty"`
	ReferenceAnswer string       `json:"referenceAnswer,omitempty"`
	Scoring         *Scoring     `json:"scoring,omitempty"`
}

// HasDetail reports whether the slot's type-appropriate detail field is
// already populated. A slot with detail is never re-fetched.
func (q *QuestionSlot) HasDetail() bool {
	if q.Type.ChoiceBearing() {
		return len(q.Choices) > 0
	}
	return q.ReferenceAnswer != ""
}

// normalizeQuestion converts a wire question into a canonical slot, keeping
// any choices the generation response already embedded.
func normalizeQuestion(wq api.Question) QuestionSlot {
	slot := QuestionSlot{
		ID:     wq.ID,
		Type:   ParseQuestionType(wq.Type),
		Prompt: wq.Question,
	}
	for _, ch := range wq.Choices {
		slot.Choices = append(slot.Choices, Choice{ID: ch.ID, Label: ch.ChoiceText, Correct: ch.IsCorrect})
	}
	return slot
}

// NormalizeQuestions converts a wire question list into canonical slots,
// preserving order.
func NormalizeQuestions(wire []api.Question) []QuestionSlot {
	slots := make([]QuestionSlot, 0, len(wire))
	for _, wq := range wire {
		slots = append(slots, normalizeQuestion(wq))
	}
	return slots
}
