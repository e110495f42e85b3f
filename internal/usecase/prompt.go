package usecase

import (
	"fmt"
	"strings"

	"github.com/prepwise/interview-api/internal/domain"
)

// BuildPrompt renders the instruction sent to the text-generation model.
func BuildPrompt(req *domain.GenerationRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Prepare questions for a job interview.\n")
	fmt.Fprintf(&b, "The job role is %s.\n", strings.TrimSpace(req.Role))
	fmt.Fprintf(&b, "The job experience level is %s.\n", strings.TrimSpace(req.Level))
	fmt.Fprintf(&b, "The tech stack used in the job is: %s.\n", req.TechStack.String())
	fmt.Fprintf(&b, "The focus between behavioural and technical questions should lean towards: %s.\n", strings.TrimSpace(req.Type))
	fmt.Fprintf(&b, "The amount of questions required is: %d.\n", req.Amount)
	b.WriteString("Please return only the questions, without any additional text.\n")
	b.WriteString(`The questions are going to be read by a voice assistant so do not use "/" or "*" or any other special characters which might break the voice assistant.` + "\n")
	b.WriteString(`Return the questions formatted like this:` + "\n")
	b.WriteString(`["Question 1", "Question 2", "Question 3"]` + "\n")
	b.WriteString("\nThank you! <3\n")
	return b.String()
}
