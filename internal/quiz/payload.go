package quiz

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Payload is the canonical serialized form of a session, used for the
// navigation hand-off into the quiz view and for the resume cache.
type Payload struct {
	QuizID       int64            `json:"quizId"`
	AttemptID    int64            `json:"attemptId"`
	Questions    []QuestionSlot   `json:"questions"`
	Current      int              `json:"current"`
	SubmittedIDs []int64          `json:"submittedIds,omitempty"`
	LocalAnswers map[int][]string `json:"localAnswers,omitempty"`
}

// RetryRequest is the originating selection configuration, carried alongside
// the session so a finished quiz can be regenerated with the same settings.
// It is an explicit value, decoupled from any navigation mechanism.
type RetryRequest struct {
	CategoryID      int64 `json:"categoryId"`
	ChildCategoryID int64 `json:"childCategoryId,omitempty"`
	QuestionCount   int   `json:"questionCount"`
}

// ParseRetryRequest decodes a cached selection configuration. A request with
// neither a category nor a question count carries no usable settings and is
// rejected, so callers fall back to the manual selection steps.
func ParseRetryRequest(raw []byte) (*RetryRequest, error) {
	var r RetryRequest
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode retry request: %w", err)
	}
	if r.CategoryID == 0 && r.QuestionCount == 0 {
		return nil, fmt.Errorf("retry request is empty")
	}
	return &r, nil
}

// PayloadFromQuestions wraps a bare ordered question sequence into a payload
// with no attempt binding. Submission and completion stay disabled until an
// attempt id is resolved.
func PayloadFromQuestions(questions []QuestionSlot) *Payload {
	return &Payload{Questions: questions}
}

// payloadSchema constrains what a cached payload may look like before it is
// trusted on resume. Cache entries are written by us but survive upgrades,
// so the shape is checked rather than assumed.
var payloadSchema = map[string]any{
	"oneOf": []any{
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"quizId":       map[string]any{"type": "integer"},
				"attemptId":    map[string]any{"type": "integer"},
				"questions":    questionListSchema,
				"current":      map[string]any{"type": "integer", "minimum": 0},
				"submittedIds": map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
			},
			"required": []any{"questions"},
		},
		questionListSchema,
	},
}

var questionListSchema = map[string]any{
	"type": "array",
	"items": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":     map[string]any{"type": "integer"},
			"type":   map[string]any{"type": "string"},
			"prompt": map[string]any{"type": "string"},
		},
		"required": []any{"id", "type", "prompt"},
	},
}

var (
	compiledPayloadSchema     *jsonschema.Schema
	compilePayloadSchemaOnce  sync.Once
	compilePayloadSchemaError error
)

func payloadSchemaCompiled() (*jsonschema.Schema, error) {
	compilePayloadSchemaOnce.Do(func() {
		// The compiler wants a parsed JSON document, not Go maps with typed
		// values. Round-trip through encoding/json to get a clean any tree.
		b, err := json.Marshal(payloadSchema)
		if err != nil {
			compilePayloadSchemaError = err
			return
		}
		var doc any
		if err := json.Unmarshal(b, &doc); err != nil {
			compilePayloadSchemaError = err
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("resume-payload.json", doc); err != nil {
			compilePayloadSchemaError = err
			return
		}
		compiledPayloadSchema, compilePayloadSchemaError = compiler.Compile("resume-payload.json")
	})
	return compiledPayloadSchema, compilePayloadSchemaError
}

// ParsePayload decodes a serialized payload, accepting either the canonical
// object form or a bare question array. The raw JSON is validated against
// the payload schema first; a failed validation means the cache entry is
// unusable and should be treated as absent.
func ParsePayload(raw []byte) (*Payload, error) {
	sch, err := payloadSchemaCompiled()
	if err != nil {
		return nil, fmt.Errorf("compile payload schema: %w", err)
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}
	if err := sch.Validate(parsed); err != nil {
		return nil, fmt.Errorf("validate payload: %w", err)
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err == nil && len(p.Questions) > 0 {
		if p.QuizID == 0 {
			// Tolerate the {id, questions, attemptId} bundle shape.
			var alias struct {
				ID int64 `json:"id"`
			}
			if json.Unmarshal(raw, &alias) == nil {
				p.QuizID = alias.ID
			}
		}
		return &p, nil
	}
	var questions []QuestionSlot
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return PayloadFromQuestions(questions), nil
}
