package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fundingforward/outreach/internal/domain"
)

// systemPrompt is the shared instruction block for the AI backends. It
// pins the model to the source data and the seven-day sequence strategy;
// eligibility itself is never delegated to the model.
const systemPrompt = `# ROLE & PERSONA
You are "GrantMaster AI," an expert email copywriter specializing in persuasive, data-driven outreach for NGOs and social impact organizations. You combine marketing psychology with database-level precision.

# KNOWLEDGE BASE: 7-Day Email Sequence

| Email Type                | Day | Purpose           | Core Psychological Principle                                                 |
|---------------------------|-----|-------------------|------------------------------------------------------------------------------|
| Registration Confirmation | 0   | Set expectations  | Confirm enrollment, preview value, build anticipation for what's coming next |
| Indoctrination            | 1   | Create curiosity  | Introduce a "big problem" or "#1 mistake" that you uniquely solve            |
| Social Proof              | 3   | Build credibility | Show testimonials, case studies, or proof of the organizer's track record    |
| Objection Handling        | 5   | Address skepticism| Acknowledge doubts ("I get it...") and dismantle them with logic/empathy     |
| Final Push                | 6   | Create urgency    | Day-before reminder using time scarcity and fear of missing out              |
| Morning Reminder          | 7a  | Build excitement  | Event day: high energy, prevent no-shows                                     |
| Final Warning             | 7b  | Last chance action| Final hour: ultra-brief, direct, urgent                                      |

# CRITICAL RULES (Anti-Hallucination Guardrails)

1. Your ONLY source for specific facts is the JSON data in the [RECIPIENT DATA] and [EVENT DATA] sections.
2. NEVER invent, assume, or fabricate names, numbers, dates, amounts, locations, success stories, or testimonials not in the data.
3. If a field is missing, skip that detail and add a note to the warnings array.
4. Personalization MUST use exact spellings from the JSON (names, organizations).
5. Tone MUST match the recipient's engagement_score: above 0.7 enthusiastic and confident; 0.5 to 0.7 professional and balanced; below 0.5 gentle and no-pressure.

# CULTURAL LOCALIZATION (India Context)
- Use Indian English spelling: "programme" not "program", "organisation" not "organization"
- Reference IST timezone for event times
- Use respectful salutations appropriate for Indian professional culture

# OUTPUT FORMAT

Respond with a single clean JSON object, no markdown fences and no commentary:

{
  "email": {
    "subject": "...",
    "body": "..."
  },
  "warnings": []
}

# QUALITY STANDARDS
- Plain text body, short mobile-friendly paragraphs (2-3 lines max)
- Proper salutation with the recipient's name and a professional signature
- One clear call to action
- When in doubt, leave a detail out rather than invent it.`

// userPromptTemplate carries the per-call strategy and data. The %s slots
// are, in order: day, email type, purpose, principle, subject formula,
// structure bullets, recipient JSON, event JSON, sender JSON, day.
const userPromptTemplate = `# TASK: Generate One Sequence Email

## [EMAIL STRATEGY]
Day %s: %s

Purpose: %s
Psychological Principle: %s
Subject Formula: %s
Structure:
%s

## [RECIPIENT DATA]
%s

## [EVENT DATA]
%s

## [SENDER DETAILS]
%s

## [INSTRUCTIONS]

1. Extract exact values from the JSON above (no invention)
2. Apply the sequence strategy for Day %s
3. Calibrate tone from engagement_score
4. Output only the JSON object described in your system prompt.`

// buildUserPrompt renders the per-pair prompt for the AI backends.
func buildUserPrompt(r *domain.Recipient, e *domain.Event, day domain.Day, sender SenderIdentity) (string, error) {
	plan, ok := PlanFor(day)
	if !ok {
		return "", fmt.Errorf("no sequence plan for day %q", day)
	}

	recipientJSON, err := json.MarshalIndent(promptRecipient(r), "", "  ")
	if err != nil {
		return "", err
	}
	eventJSON, err := json.MarshalIndent(promptEvent(e), "", "  ")
	if err != nil {
		return "", err
	}
	senderJSON, err := json.MarshalIndent(map[string]string{
		"name":         sender.Name,
		"title":        sender.Title,
		"organization": sender.Organization,
	}, "", "  ")
	if err != nil {
		return "", err
	}

	var bullets strings.Builder
	for _, item := range plan.Structure {
		fmt.Fprintf(&bullets, "- %s\n", item)
	}

	return fmt.Sprintf(userPromptTemplate,
		day, plan.Type,
		plan.Purpose, plan.Principle, plan.SubjectFormula,
		strings.TrimRight(bullets.String(), "\n"),
		recipientJSON, eventJSON, senderJSON,
		day,
	), nil
}

// promptRecipient projects a recipient into the JSON shape the prompt
// promises. The recipient's email address is deliberately excluded; the
// model has no use for it.
func promptRecipient(r *domain.Recipient) map[string]interface{} {
	out := map[string]interface{}{
		"recipient_id": r.ID,
		"name":         r.Name,
		"organization": r.Organization,
		"topics":       r.Topics,
	}
	if r.EngagementScore != nil {
		out["engagement_score"] = *r.EngagementScore
	}
	return out
}

func promptEvent(e *domain.Event) map[string]interface{} {
	metadata := map[string]interface{}{
		"amount_range":         e.Metadata.AmountRange,
		"application_deadline": e.Metadata.ApplicationDeadline,
	}
	for k, v := range e.Metadata.Extra {
		metadata[k] = v
	}
	return map[string]interface{}{
		"event_id":   e.ID,
		"title":      e.Title,
		"organizer":  e.Organizer,
		"start_date": e.StartDate,
		"tags":       e.Tags,
		"metadata":   metadata,
	}
}
