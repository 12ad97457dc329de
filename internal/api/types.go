package api

import "time"

// User is the server-side identity resolved from the bearer token.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// Category is one node of the server's topic hierarchy.
type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parentId,omitempty"`
}

// Question is a quiz question as delivered by the generation endpoint.
// Choices may be omitted; they are fetched lazily per question.
type Question struct {
	ID         int64    `json:"id"`
	Type       string   `json:"type"`
	CategoryID int64    `json:"categoryId"`
	Difficulty string   `json:"difficulty"`
	Question   string   `json:"question"`
	Choices    []Choice `json:"choices,omitempty"`
}

// Choice is one selectable option of a choice-bearing question.
type Choice struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"questionId"`
	ChoiceText string `json:"choiceText"`
	IsCorrect  bool   `json:"isCorrect"`
}

// GeneratedQuiz is the response of the quiz generation endpoint.
type GeneratedQuiz struct {
	QuizID    int64      `json:"quizId"`
	AttemptID int64      `json:"attemptId"`
	Questions []Question `json:"questions"`
}

// GenerateRequest asks the server to assemble a quiz.
type GenerateRequest struct {
	UserID       string `json:"userId"`
	CategoryID   int64  `json:"categoryId"`
	Total        int    `json:"total"`
	ModeOverride string `json:"modeOverride,omitempty"`
}

// ChoiceSelection pairs a question with the choice the user picked.
type ChoiceSelection struct {
	QuestionID int64 `json:"questionId"`
	ChoiceID   int64 `json:"choiceId"`
}

// TextAnswerResult is the server's scored record of a free-text answer.
type TextAnswerResult struct {
	AttemptID  int64  `json:"attemptId"`
	QuestionID int64  `json:"questionId"`
	AnswerText string `json:"answerText"`
	Score      *int   `json:"score"`
	IsCorrect  *bool  `json:"isCorrect"`
	Feedback   string `json:"feedback"`
}

// SelectedChoice is one recorded choice selection within an attempt.
type SelectedChoice struct {
	AttemptID  int64 `json:"attemptId"`
	QuestionID int64 `json:"questionId"`
	ChoiceID   int64 `json:"choiceId"`
}

// Attempt is the server's record of one run through a quiz. The detailed
// view includes all selected choices and text answers.
type Attempt struct {
	ID              int64              `json:"id"`
	QuizID          int64              `json:"quizId"`
	StartedAt       *time.Time         `json:"startedAt"`
	CompletedAt     *time.Time         `json:"completedAt"`
	IsCompleted     bool               `json:"isCompleted"`
	SelectedChoices []SelectedChoice   `json:"selectedChoices"`
	TextAnswers     []TextAnswerResult `json:"textAnswers"`
}

// QuizDetail carries the question ids of an existing quiz, used when
// retrying a quiz with a fresh attempt.
type QuizDetail struct {
	ID          int64   `json:"id"`
	QuestionIDs []int64 `json:"questionIds"`
}

// AttemptScore is one row of a user's quiz history.
type AttemptScore struct {
	AttemptID      int64      `json:"attemptId"`
	QuizID         int64      `json:"quizId"`
	CorrectAnswers int64      `json:"correctAnswers"`
	TotalQuestions int64      `json:"totalQuestions"`
	SuccessRate    float64    `json:"successRate"`
	CompletedAt    *time.Time `json:"completedAt"`
}

// UserStats aggregates a user's attempt counts and rates.
type UserStats struct {
	TotalAttempts      int64   `json:"totalAttempts"`
	CompletedAttempts  int64   `json:"completedAttempts"`
	IncompleteAttempts int64   `json:"incompleteAttempts"`
	CompletionRate     float64 `json:"completionRate"`
	SuccessRate        float64 `json:"successRate"`
}
