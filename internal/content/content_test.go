package content

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundingforward/outreach/internal/domain"
)

var testSender = SenderIdentity{
	Name:         "Priya Singh",
	Title:        "Grants Coordinator",
	Organization: "Funding Forward",
}

func score(v float64) *float64 { return &v }

func sampleRecipient() *domain.Recipient {
	return &domain.Recipient{
		ID:              "r-001",
		Name:            "Rohit Mehta",
		Email:           "rohit@example.org",
		Organization:    "GreenPlanet Initiative",
		Topics:          []string{"climate_action", "sustainability"},
		EngagementScore: score(0.54),
	}
}

func sampleEvent() *domain.Event {
	return &domain.Event{
		ID:        "e-001",
		Title:     "Green Futures Initiative 2025",
		Organizer: "EcoVenture Foundation",
		StartDate: "2025-12-28",
		Tags:      []string{"climate_action", "renewable_energy"},
		Metadata: domain.EventMetadata{
			AmountRange:         "$5,000 - $40,000",
			ApplicationDeadline: "2025-12-25",
		},
	}
}

func TestToneFromEngagement(t *testing.T) {
	tests := []struct {
		name  string
		score *float64
		want  domain.Tone
	}{
		{"high", score(0.85), domain.ToneEnthusiastic},
		{"high boundary", score(0.7), domain.ToneEnthusiastic},
		{"medium", score(0.6), domain.ToneProfessional},
		{"medium boundary", score(0.5), domain.ToneProfessional},
		{"low", score(0.3), domain.ToneGentle},
		{"missing defaults to professional", nil, domain.ToneProfessional},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ToneFromEngagement(tc.score))
		})
	}
}

func TestPlanFor_CoversEveryDay(t *testing.T) {
	for _, day := range domain.AllDays() {
		plan, ok := PlanFor(day)
		require.True(t, ok, "day %s has no plan", day)
		assert.NotEmpty(t, plan.Type)
		assert.NotEmpty(t, plan.Purpose)
		assert.NotEmpty(t, plan.SubjectFormula)
		assert.NotEmpty(t, plan.Structure)
	}

	_, ok := PlanFor(domain.Day("99"))
	assert.False(t, ok)
}

func TestFallbackProvider_Deterministic(t *testing.T) {
	p, err := NewFallbackProvider(testSender)
	require.NoError(t, err)

	first, err := p.Generate(context.Background(), sampleRecipient(), sampleEvent(), domain.DayIndoctrination)
	require.NoError(t, err)
	second, err := p.Generate(context.Background(), sampleRecipient(), sampleEvent(), domain.DayIndoctrination)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, first.UsedFallback)
	assert.Equal(t, "Green Futures Initiative 2025 - Opportunity for GreenPlanet Initiative", first.Subject)
	assert.Contains(t, first.Body, "Hi Rohit Mehta,")
	assert.Contains(t, first.Body, "organised by EcoVenture Foundation")
	assert.Contains(t, first.Body, "Grant amount: $5,000 - $40,000")
	assert.Contains(t, first.Body, "Application deadline: 2025-12-25")
	assert.Contains(t, first.Body, "Priya Singh")
}

func TestFallbackProvider_MissingFieldsUsePlaceholders(t *testing.T) {
	p, err := NewFallbackProvider(testSender)
	require.NoError(t, err)

	r := &domain.Recipient{ID: "r-002", Name: "Asha"}
	e := &domain.Event{ID: "e-002", Title: "Quiet Grants"}

	res, err := p.Generate(context.Background(), r, e, domain.DayConfirmation)
	require.NoError(t, err)
	assert.Contains(t, res.Body, "Grant amount: [amount]")
	assert.Contains(t, res.Body, "Application deadline: [deadline]")
	assert.Contains(t, res.Body, "your work at your organization")
}

func TestBuildUserPrompt(t *testing.T) {
	prompt, err := buildUserPrompt(sampleRecipient(), sampleEvent(), domain.DaySocialProof, testSender)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Day 3: Social Proof")
	assert.Contains(t, prompt, `"name": "Rohit Mehta"`)
	assert.Contains(t, prompt, `"title": "Green Futures Initiative 2025"`)
	assert.Contains(t, prompt, `"organization": "Funding Forward"`)
	assert.NotContains(t, prompt, "rohit@example.org")
}

func TestBuildUserPrompt_UnknownDay(t *testing.T) {
	_, err := buildUserPrompt(sampleRecipient(), sampleEvent(), domain.Day("42"), testSender)
	assert.Error(t, err)
}

func TestParseModelOutput(t *testing.T) {
	t.Run("clean json", func(t *testing.T) {
		payload, err := parseModelOutput(`{"email":{"subject":"Hello","body":"World"},"warnings":["w1"]}`)
		require.NoError(t, err)
		assert.Equal(t, "Hello", payload.Email.Subject)
		assert.Equal(t, []string{"w1"}, payload.Warnings)
	})

	t.Run("markdown fenced", func(t *testing.T) {
		payload, err := parseModelOutput("```json\n{\"email\":{\"subject\":\"S\",\"body\":\"B\"}}\n```")
		require.NoError(t, err)
		assert.Equal(t, "S", payload.Email.Subject)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := parseModelOutput("Sure! Here's your email:")
		assert.Error(t, err)
	})

	t.Run("missing body", func(t *testing.T) {
		_, err := parseModelOutput(`{"email":{"subject":"S"}}`)
		assert.Error(t, err)
	})
}

func groqTestProvider(t *testing.T, url string) *GroqProvider {
	t.Helper()
	fallback, err := NewFallbackProvider(testSender)
	require.NoError(t, err)
	p, err := NewGroqProvider(GroqOptions{
		APIKey:  "test-key",
		BaseURL: url,
		Timeout: 2 * time.Second,
	}, testSender, fallback)
	require.NoError(t, err)
	return p
}

func TestGroqProvider_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		resp := chatResponse{}
		resp.Choices = append(resp.Choices, struct {
			Message      chatMessage `json:"message"`
			FinishReason string      `json:"finish_reason"`
		}{
			Message: chatMessage{
				Role:    "assistant",
				Content: `{"email":{"subject":"AI Subject","body":"AI Body"},"warnings":[]}`,
			},
		})
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	res, err := groqTestProvider(t, srv.URL).Generate(
		context.Background(), sampleRecipient(), sampleEvent(), domain.DayIndoctrination)
	require.NoError(t, err)
	assert.False(t, res.UsedFallback)
	assert.Equal(t, "AI Subject", res.Subject)
	assert.Equal(t, "AI Body", res.Body)
}

func TestGroqProvider_MalformedOutputFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"not json at all"}}]}`))
	}))
	defer srv.Close()

	res, err := groqTestProvider(t, srv.URL).Generate(
		context.Background(), sampleRecipient(), sampleEvent(), domain.DayIndoctrination)
	require.NoError(t, err)
	assert.True(t, res.UsedFallback)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[len(res.Warnings)-1], "Used fallback due to:")
}

func TestGroqProvider_ServerErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	res, err := groqTestProvider(t, srv.URL).Generate(
		context.Background(), sampleRecipient(), sampleEvent(), domain.DayFinalPush)
	require.NoError(t, err)
	assert.True(t, res.UsedFallback)
	assert.Contains(t, res.Subject, "Green Futures Initiative 2025")
}
