package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundingforward/outreach/internal/domain"
)

var fixedNow = time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadRecipients(t *testing.T) {
	path := writeFile(t, t.TempDir(), "recipients.json", `[
		{
			"recipient_id": "r-001",
			"name": "Priya",
			"email": "priya@example.org",
			"organization": "Trust",
			"topics": ["education"],
			"engagement_score": 0.8,
			"opt_out": false
		},
		{
			"recipient_id": "r-002",
			"name": "No Topics"
		}
	]`)

	recipients, err := LoadRecipients(path)
	require.NoError(t, err)
	require.Len(t, recipients, 2)

	assert.Equal(t, "r-001", recipients[0].ID)
	assert.True(t, recipients[0].Has("email"))
	assert.False(t, recipients[1].Has("email"))
}

func TestLoadRecipients_NotAnArray(t *testing.T) {
	path := writeFile(t, t.TempDir(), "recipients.json", `{"recipient_id": "r-001"}`)
	_, err := LoadRecipients(path)
	assert.Error(t, err)
}

func TestLoadRecipients_SkipsUndecodableRecord(t *testing.T) {
	path := writeFile(t, t.TempDir(), "recipients.json", `[
		{"recipient_id": "r-001", "name": "Good"},
		{"recipient_id": "r-002", "opt_out": "definitely"},
		{"recipient_id": "r-003", "name": "Also Good"}
	]`)

	recipients, err := LoadRecipients(path)
	require.NoError(t, err)
	require.Len(t, recipients, 2)
	assert.Equal(t, "r-001", recipients[0].ID)
	assert.Equal(t, "r-003", recipients[1].ID)
}

func TestLoadEvents(t *testing.T) {
	path := writeFile(t, t.TempDir(), "events.json", `[
		{
			"event_id": "e-001",
			"title": "Grants 2025",
			"organizer": "FF",
			"start_date": "2025-07-01",
			"tags": ["education"],
			"metadata": {
				"amount_range": "$10,000",
				"application_deadline": "2025-12-31",
				"format": "online"
			}
		}
	]`)

	events, err := LoadEvents(path)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "$10,000", events[0].Metadata.AmountRange)
	assert.Contains(t, events[0].Metadata.Extra, "format")
}

func sampleCollection() *domain.DayCollection {
	return &domain.DayCollection{
		Day:         domain.DayConfirmation,
		GeneratedAt: fixedNow,
		Statistics:  domain.BatchStatistics{Total: 1, Generated: 1},
		Emails: []domain.ResultRecord{
			{
				RecipientID: "r-001",
				EventID:     "e-001",
				Day:         domain.DayConfirmation,
				Status:      domain.StatusGenerated,
				Email:       &domain.EmailContent{Subject: "S", Body: "B"},
			},
		},
	}
}

func TestWriteAndReadDayCollection(t *testing.T) {
	s := New(t.TempDir(), "", func() time.Time { return fixedNow })

	require.NoError(t, s.WriteDayCollection(sampleCollection()))

	got, err := s.ReadDayCollection(domain.DayConfirmation)
	require.NoError(t, err)
	assert.Equal(t, domain.DayConfirmation, got.Day)
	assert.Equal(t, 1, got.Statistics.Generated)
	require.Len(t, got.Emails, 1)
	require.NotNil(t, got.Emails[0].Email)
	assert.Equal(t, "S", got.Emails[0].Email.Subject)
}

func TestReadDayCollection_Missing(t *testing.T) {
	s := New(t.TempDir(), "", func() time.Time { return fixedNow })
	_, err := s.ReadDayCollection(domain.DayFinalWarning)
	assert.ErrorIs(t, err, ErrNoArtifact)
}

func TestWriteDayCollection_Overwrites(t *testing.T) {
	s := New(t.TempDir(), "", func() time.Time { return fixedNow })

	require.NoError(t, s.WriteDayCollection(sampleCollection()))

	col := sampleCollection()
	col.Statistics.Total = 9
	require.NoError(t, s.WriteDayCollection(col))

	got, err := s.ReadDayCollection(domain.DayConfirmation)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Statistics.Total)
}

func TestAvailableDays(t *testing.T) {
	s := New(t.TempDir(), "", func() time.Time { return fixedNow })
	assert.Empty(t, s.AvailableDays())

	require.NoError(t, s.WriteDayCollection(sampleCollection()))

	col := sampleCollection()
	col.Day = domain.DayFinalPush
	require.NoError(t, s.WriteDayCollection(col))

	assert.Equal(t, []domain.Day{domain.DayConfirmation, domain.DayFinalPush}, s.AvailableDays())
}

func TestWriteSendLog(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, "", func() time.Time { return fixedNow })

	path, err := s.WriteSendLog(&SendLog{
		Day:        domain.DayConfirmation,
		DryRun:     false,
		SentAt:     fixedNow,
		Statistics: domain.DeliveryStats{Attempted: 2, Sent: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "send_logs", "day_0_sent_20250615_093000.json"), path)

	dryPath, err := s.WriteSendLog(&SendLog{Day: domain.DayConfirmation, DryRun: true, SentAt: fixedNow})
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(dryPath), "dryrun_day_0_sent_")
}
