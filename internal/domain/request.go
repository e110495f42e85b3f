package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// TechStack is the tech stack of a generation request. Clients send it either
// as a comma-separated string or as a list of strings.
type TechStack []string

// UnmarshalJSON accepts a JSON string or an array of strings.
func (t *TechStack) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*t = nil
			return nil
		}
		*t = TechStack{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("techstack must be a string or a list of strings: %w", err)
	}
	*t = list
	return nil
}

// Tokens splits the stack into ordered, trimmed, non-empty tokens.
func (t TechStack) Tokens() []string {
	tokens := make([]string, 0, len(t))
	for _, entry := range t {
		for _, tok := range strings.Split(entry, ",") {
			if tok = strings.TrimSpace(tok); tok != "" {
				tokens = append(tokens, tok)
			}
		}
	}
	return tokens
}

// String renders the stack the way it is embedded in a prompt.
func (t TechStack) String() string {
	return strings.Join(t.Tokens(), ", ")
}

// QuestionCount is the number of questions requested. Voice workflows often
// deliver it as a string, so numeric strings are accepted too.
type QuestionCount int

// UnmarshalJSON accepts an integer or a string holding an integer.
func (q *QuestionCount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*q = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*q = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("amount must be an integer: %w", err)
		}
		*q = QuestionCount(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be an integer: %w", err)
	}
	*q = QuestionCount(n)
	return nil
}

// GenerationRequest is an incoming request to generate interview questions.
type GenerationRequest struct {
	Type      string        `json:"type"`
	Role      string        `json:"role"`
	Level     string        `json:"level"`
	TechStack TechStack     `json:"techstack"`
	Amount    QuestionCount `json:"amount"`
	UserID    string        `json:"userid"`
}

// MissingFields returns the name of every required field that is absent,
// in the order type, role, level, techstack, amount, userid.
func (r *GenerationRequest) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(r.Type) == "" {
		missing = append(missing, "type")
	}
	if strings.TrimSpace(r.Role) == "" {
		missing = append(missing, "role")
	}
	if strings.TrimSpace(r.Level) == "" {
		missing = append(missing, "level")
	}
	if len(r.TechStack.Tokens()) == 0 {
		missing = append(missing, "techstack")
	}
	if r.Amount == 0 {
		missing = append(missing, "amount")
	}
	if strings.TrimSpace(r.UserID) == "" {
		missing = append(missing, "userid")
	}
	return missing
}

// SubmitResponse is returned by the intake for both execution modes.
type SubmitResponse struct {
	Success     bool   `json:"success"`
	Status      string `json:"status"`
	InterviewID string `json:"interviewId,omitempty"`
	DocumentID  string `json:"documentId,omitempty"`
	Message     string `json:"message,omitempty"`
}

const (
	SubmitStatusAccepted  = "accepted"
	SubmitStatusCompleted = "completed"
	SubmitStatusFailed    = "failed"
)
