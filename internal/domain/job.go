package domain

import (
	"encoding/json"
	"time"
)

// Job names understood by the worker
const (
	JobSendWelcomeEmail = "send_welcome_email"
	JobAnalyzeArticle   = "analyze_article"
	JobLogArticlesCount = "log_articles_count"
)

// Job status values published when a job finishes
const (
	JobStatusSucceeded = "succeeded"
	JobStatusFailed    = "failed"
)

// Job is the envelope carried by the queue
type Job struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Payload     json.RawMessage `json:"payload"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// JobResult is published by the worker once a job finishes
type JobResult struct {
	JobID      string    `json:"job_id"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// Succeeded reports whether the job completed without error
func (r *JobResult) Succeeded() bool {
	return r != nil && r.Status == JobStatusSucceeded
}

// WelcomeEmailPayload is the payload of JobSendWelcomeEmail
type WelcomeEmailPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AnalyzeArticlePayload is the payload of JobAnalyzeArticle
type AnalyzeArticlePayload struct {
	ArticleID string `json:"article_id"`
}

// Log entry types
const (
	LogTypeUser    = "user"
	LogTypeArticle = "article"
)

// LogEntry is a structured line written by background jobs
type LogEntry struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
