package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenSource supplies the bearer credential attached to every request.
// Implementations refresh opportunistically; the client never caches tokens.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client is a typed HTTP client for the Bell Ringer quiz API.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a Client for the API at baseURL.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: 30 * time.Second},
		tokens: tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do issues one request and decodes the response into out (if non-nil).
// Non-success statuses are converted into the client error taxonomy here,
// at the boundary; callers never inspect raw status codes.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return &ErrUnauthenticated{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &ErrUnauthenticated{Err: &RequestError{Status: resp.StatusCode, Method: method, Path: path}}
	case resp.StatusCode == http.StatusConflict:
		return &ErrConflict{Err: &RequestError{Status: resp.StatusCode, Method: method, Path: path, Body: bodySnippet(data)}}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &RequestError{Status: resp.StatusCode, Method: method, Path: path, Body: bodySnippet(data)}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// bodySnippet truncates an error body for inclusion in messages.
func bodySnippet(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

// Me resolves the internal user record for the current credential.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/api/v1/users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GenerateQuiz asks the server to assemble a new quiz and open an attempt.
func (c *Client) GenerateQuiz(ctx context.Context, req GenerateRequest) (*GeneratedQuiz, error) {
	var g GeneratedQuiz
	if err := c.do(ctx, http.MethodPost, "/api/v1/questions/generate", req, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// QuestionChoices fetches the choices of one question. The server may reply
// with a bare array or with an object wrapping it under "choices"; both are
// normalized here.
func (c *Client) QuestionChoices(ctx context.Context, questionID int64) ([]Choice, error) {
	var raw json.RawMessage
	path := fmt.Sprintf("/api/v1/choices/question/%d", questionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return decodeChoices(raw)
}

func decodeChoices(raw json.RawMessage) ([]Choice, error) {
	var list []Choice
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Choices []Choice `json:"choices"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode choices: %w", err)
	}
	return wrapped.Choices, nil
}

// ReferenceAnswer fetches the reference answer text for a free-text question.
// The server may reply with an array of answer records or a single object,
// and the text may live under "answerText" or "answer".
func (c *Client) ReferenceAnswer(ctx context.Context, questionID int64) (string, error) {
	var raw json.RawMessage
	path := fmt.Sprintf("/api/v1/open-answers/question/%d", questionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return "", err
	}
	return decodeReferenceAnswer(raw)
}

type openAnswerShape struct {
	AnswerText string `json:"answerText"`
	Answer     string `json:"answer"`
}

func (o openAnswerShape) text() string {
	if o.AnswerText != "" {
		return o.AnswerText
	}
	return o.Answer
}

func decodeReferenceAnswer(raw json.RawMessage) (string, error) {
	var list []openAnswerShape
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return "", nil
		}
		return list[0].text(), nil
	}
	var one openAnswerShape
	if err := json.Unmarshal(raw, &one); err != nil {
		return "", fmt.Errorf("decode open answer: %w", err)
	}
	return one.text(), nil
}

// SubmitChoices records the user's choice selections for an attempt in one
// batch request.
func (c *Client) SubmitChoices(ctx context.Context, attemptID int64, selections []ChoiceSelection) error {
	body := struct {
		AttemptID       int64             `json:"attemptId"`
		SelectedChoices []ChoiceSelection `json:"selectedChoices"`
	}{attemptID, selections}
	return c.do(ctx, http.MethodPost, "/api/v1/attempt-choices/batch", body, nil)
}

// SubmitTextAnswer records a free-text answer. Returns ErrConflict when the
// answer already exists; callers fall back to UpdateTextAnswer.
func (c *Client) SubmitTextAnswer(ctx context.Context, attemptID, questionID int64, answerText string) (*TextAnswerResult, error) {
	body := struct {
		AttemptID  int64  `json:"attemptId"`
		QuestionID int64  `json:"questionId"`
		AnswerText string `json:"answerText"`
	}{attemptID, questionID, answerText}
	var res TextAnswerResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/attempt-text-answers", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateTextAnswer replaces an existing free-text answer for the same key.
func (c *Client) UpdateTextAnswer(ctx context.Context, attemptID, questionID int64, answerText string) (*TextAnswerResult, error) {
	body := struct {
		AnswerText string `json:"answerText"`
	}{answerText}
	path := fmt.Sprintf("/api/v1/attempt-text-answers/%d/%d", attemptID, questionID)
	var res TextAnswerResult
	if err := c.do(ctx, http.MethodPut, path, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CompleteAttempt marks the attempt finished on the server.
func (c *Client) CompleteAttempt(ctx context.Context, attemptID int64) error {
	path := fmt.Sprintf("/api/v1/attempts/%d/complete", attemptID)
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

// AttemptDetail fetches the authoritative record of an attempt, including
// all selected choices and scored text answers.
func (c *Client) AttemptDetail(ctx context.Context, attemptID int64) (*Attempt, error) {
	var a Attempt
	path := fmt.Sprintf("/api/v1/attempts/%d/detailed", attemptID)
	if err := c.do(ctx, http.MethodGet, path, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// RetryAttempt opens a fresh attempt for an existing quiz.
func (c *Client) RetryAttempt(ctx context.Context, quizID int64) (*Attempt, error) {
	body := struct {
		QuizID int64 `json:"quizId"`
	}{quizID}
	var a Attempt
	if err := c.do(ctx, http.MethodPost, "/api/v1/attempts/retry", body, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// QuizDetail fetches the question ids of an existing quiz.
func (c *Client) QuizDetail(ctx context.Context, quizID int64) (*QuizDetail, error) {
	var d QuizDetail
	path := fmt.Sprintf("/api/v1/quizzes/%d/detailed", quizID)
	if err := c.do(ctx, http.MethodGet, path, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Question fetches a single question by id.
func (c *Client) Question(ctx context.Context, questionID int64) (*Question, error) {
	var q Question
	path := fmt.Sprintf("/api/v1/questions/%d", questionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// RootCategories fetches the top-level topic categories.
func (c *Client) RootCategories(ctx context.Context) ([]Category, error) {
	var cats []Category
	if err := c.do(ctx, http.MethodGet, "/api/v1/categories/roots", nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// ChildCategories fetches the children of one category.
func (c *Client) ChildCategories(ctx context.Context, categoryID int64) ([]Category, error) {
	var cats []Category
	path := fmt.Sprintf("/api/v1/categories/%d/children", categoryID)
	if err := c.do(ctx, http.MethodGet, path, nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// UserResults fetches a user's per-attempt quiz history.
func (c *Client) UserResults(ctx context.Context, userID string) ([]AttemptScore, error) {
	var rows []AttemptScore
	path := fmt.Sprintf("/api/v1/attempts/user/%s/results", userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// UserStats fetches a user's aggregate attempt statistics.
func (c *Client) UserStats(ctx context.Context, userID string) (*UserStats, error) {
	var s UserStats
	path := fmt.Sprintf("/api/v1/attempts/user/%s/stats", userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
