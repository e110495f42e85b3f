package usecase

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/xeipuuv/gojsonschema"

	"github.com/prepwise/interview-api/internal/domain"
)

// questionsSchema accepts a non-empty array of strings that contain at least
// one non-whitespace character.
const questionsSchema = `{
	"type": "array",
	"minItems": 1,
	"items": {"type": "string", "pattern": "\\S"}
}`

var questionsLoader = gojsonschema.NewStringLoader(questionsSchema)

// ParseQuestions decodes the model's raw text into a list of questions.
// Surrounding whitespace and one markdown code fence (multi-line or inline) are
// tolerated; anything other than a non-empty JSON array of non-empty strings is
// rejected.
func ParseQuestions(raw string) ([]string, error) {
	text := trimCodeFence(strings.TrimSpace(raw))
	if text == "" {
		return nil, fmt.Errorf("%w: empty output", domain.ErrMalformedOutput)
	}

	res, err := gojsonschema.Validate(questionsLoader, gojsonschema.NewStringLoader(text))
	if err != nil {
		// Not JSON at all.
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedOutput, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrMalformedOutput, strings.Join(msgs, "; "))
	}

	var questions []string
	if err := json.Unmarshal([]byte(text), &questions); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedOutput, err)
	}
	for i, q := range questions {
		questions[i] = strings.TrimSpace(q)
	}
	return questions, nil
}

func trimCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	// Drop an optional language tag such as ```json.
	s = strings.TrimLeftFunc(s, unicode.IsLetter)
	return strings.TrimSpace(s)
}
