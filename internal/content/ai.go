package content

import (
	"encoding/json"
	"fmt"
	"strings"
)

// aiPayload is the JSON shape the system prompt asks the model for.
type aiPayload struct {
	Email *struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
	} `json:"email"`
	Warnings []string `json:"warnings"`
}

// parseModelOutput decodes a model response into an email. Models
// occasionally wrap JSON in markdown fences despite instructions, so
// those are stripped first.
func parseModelOutput(text string) (*aiPayload, error) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "```", 3)
		if len(parts) >= 2 {
			s = parts[1]
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(s)
	}

	var payload aiPayload
	if err := json.Unmarshal([]byte(s), &payload); err != nil {
		return nil, fmt.Errorf("model output is not valid JSON: %w", err)
	}
	if payload.Email == nil || payload.Email.Subject == "" || payload.Email.Body == "" {
		return nil, fmt.Errorf("model output missing email subject or body")
	}
	return &payload, nil
}
