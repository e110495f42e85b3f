package domain

import (
	"errors"
	"strings"
)

var (
	// ErrMalformedInput is returned when the request body is not valid JSON
	// or a field has the wrong JSON type.
	ErrMalformedInput = errors.New("invalid JSON input")

	// ErrMissingFields is returned when one or more required fields are absent.
	// The concrete error is a *MissingFieldsError naming every missing field.
	ErrMissingFields = errors.New("missing required fields")

	// ErrInvalidField is returned when a field is present but unusable.
	ErrInvalidField = errors.New("invalid field")

	// ErrBackendUnavailable is returned when the document store connectivity check fails.
	ErrBackendUnavailable = errors.New("document store is currently unavailable")

	// ErrGenerationFailed is returned when the text-generation model call fails.
	ErrGenerationFailed = errors.New("question generation failed")

	// ErrMalformedOutput is returned when the model's text is not a list of questions.
	ErrMalformedOutput = errors.New("generated output is not a list of questions")

	// ErrPersistenceFailed is returned when the interview document cannot be written.
	ErrPersistenceFailed = errors.New("failed to store interview")

	// ErrJobNotFound is returned when a job id is unknown or already consumed.
	ErrJobNotFound = errors.New("job not found")

	// ErrJobExists is returned when registering a job id that is already present.
	ErrJobExists = errors.New("job already registered")

	// ErrJobAlreadyCompleted is returned when completing a job whose result is already set.
	ErrJobAlreadyCompleted = errors.New("job already completed")

	// ErrQueueFull is returned when the bounded worker pool cannot accept more jobs.
	ErrQueueFull = errors.New("generation queue is full, try again later")

	// ErrInterviewNotFound is returned when an interview document does not exist.
	ErrInterviewNotFound = errors.New("interview not found")
)

// MissingFieldsError lists every required field absent from a request.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "Missing required fields: " + strings.Join(e.Fields, ", ")
}

// Is reports ErrMissingFields as the category of this error.
func (e *MissingFieldsError) Is(target error) bool {
	return target == ErrMissingFields
}
