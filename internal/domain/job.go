package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the lifecycle state of a generation job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobCompleted JobStatus = "completed"
)

// IsTerminal returns true if the status represents a final state.
func (s JobStatus) IsTerminal() bool {
	return s == JobCompleted
}

// JobResult is the outcome of one generation job. Exactly one of DocumentID
// (success) or Error (failure) is set.
type JobResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	DocumentID string `json:"documentId,omitempty"`
	Error      string `json:"error,omitempty"`
}

// SuccessResult builds the payload recorded when an interview was stored.
func SuccessResult(documentID string) *JobResult {
	return &JobResult{
		Success:    true,
		Message:    "Interview questions generated and stored successfully",
		DocumentID: documentID,
	}
}

// FailureResult builds the payload recorded when generation failed.
func FailureResult(err error) *JobResult {
	return &JobResult{
		Success: false,
		Error:   "Internal server error: " + err.Error(),
	}
}

// Job is one asynchronous generation request tracked by the ledger.
type Job struct {
	ID          string            `json:"id"`
	Status      JobStatus         `json:"status"`
	Result      *JobResult        `json:"result,omitempty"`
	Params      GenerationRequest `json:"params"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// NewJobID returns an identifier built from the current time plus a random suffix.
func NewJobID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:13]
	return fmt.Sprintf("interview_%d_%s", now.UnixMilli(), suffix)
}

// PollView is what a poll observes for a job.
type PollView struct {
	Status JobStatus
	Result *JobResult
}

// ExecutionMode selects whether the intake waits for generation.
type ExecutionMode string

const (
	ModeAsync ExecutionMode = "async"
	ModeSync  ExecutionMode = "sync"
)

// IsValid reports whether the mode is a known execution mode.
func (m ExecutionMode) IsValid() bool {
	return m == ModeAsync || m == ModeSync
}
