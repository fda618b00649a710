package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipientUnmarshal_RecordsPresentKeys(t *testing.T) {
	var r Recipient
	err := json.Unmarshal([]byte(`{
		"recipient_id": "r-001",
		"name": "Anita Sharma",
		"email": "anita@example.org",
		"topics": ["education", "women_empowerment"],
		"opt_out": false
	}`), &r)
	require.NoError(t, err)

	assert.Equal(t, "r-001", r.ID)
	assert.Equal(t, []string{"education", "women_empowerment"}, r.Topics)
	assert.True(t, r.Has("email"))
	assert.True(t, r.Has("opt_out"))
	assert.False(t, r.Has("organization"))
	assert.False(t, r.Has("engagement_score"))
	assert.Nil(t, r.EngagementScore)
}

func TestRecipientUnmarshal_MalformedTopicsDoesNotFail(t *testing.T) {
	var r Recipient
	err := json.Unmarshal([]byte(`{
		"recipient_id": "r-002",
		"topics": "education"
	}`), &r)
	require.NoError(t, err)

	assert.True(t, r.Has("topics"))
	assert.True(t, r.ListMalformed("topics"))
	assert.Nil(t, r.Topics)
}

func TestRecipient_ZeroValueTreatedAsPresent(t *testing.T) {
	r := Recipient{ID: "r-003", Topics: []string{"health"}}
	assert.True(t, r.Has("anything"), "in-code fixtures skip presence tracking")
}

func TestEventUnmarshal_MetadataPresence(t *testing.T) {
	var e Event
	err := json.Unmarshal([]byte(`{
		"event_id": "e-001",
		"title": "Green Futures Initiative 2025",
		"organizer": "EcoVenture Foundation",
		"start_date": "2025-12-28",
		"tags": ["climate_action"],
		"metadata": {
			"amount_range": "$5,000 - $40,000",
			"application_deadline": "2025-12-25",
			"format": "virtual"
		}
	}`), &e)
	require.NoError(t, err)

	assert.Equal(t, "$5,000 - $40,000", e.Metadata.AmountRange)
	assert.Equal(t, "2025-12-25", e.Metadata.ApplicationDeadline)
	assert.True(t, e.Metadata.Has("amount_range"))
	assert.Contains(t, e.Metadata.Extra, "format")

	// Extra keys survive a round trip.
	out, err := json.Marshal(e.Metadata)
	require.NoError(t, err)
	var back map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, "virtual", back["format"])
	assert.Equal(t, "2025-12-25", back["application_deadline"])
}

func TestEventUnmarshal_MissingMetadata(t *testing.T) {
	var e Event
	err := json.Unmarshal([]byte(`{"event_id": "e-002", "title": "No Metadata"}`), &e)
	require.NoError(t, err)

	assert.False(t, e.Has("metadata"))
	assert.False(t, e.Has("tags"))
	assert.False(t, e.ListMalformed("tags"))
}

func TestParseDay(t *testing.T) {
	for _, d := range AllDays() {
		got, err := ParseDay(string(d))
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}

	_, err := ParseDay("2")
	assert.Error(t, err)
}

func TestBatchStatistics_CountBlock(t *testing.T) {
	var s BatchStatistics
	s.CountBlock(ReasonOptedOut)
	s.CountBlock(ReasonOptedOut)
	s.CountBlock(ReasonNoTopicMatch)

	assert.Equal(t, 3, s.Blocked)
	assert.Equal(t, 2, s.ByReason[ReasonOptedOut])
	assert.Equal(t, 1, s.ByReason[ReasonNoTopicMatch])
}
