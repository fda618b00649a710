// Package store handles the filesystem surface of the engine: loading
// recipient and event source files and persisting per-day artifacts and
// send logs.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fundingforward/outreach/internal/domain"
	"github.com/fundingforward/outreach/internal/pkg/logger"
)

// ErrNoArtifact is returned when a day has no persisted collection.
var ErrNoArtifact = errors.New("no artifact for day")

// LoadRecipients reads a JSON array of recipient records. Records that
// cannot be decoded at all are skipped with a warning; structurally
// incomplete records decode fine and are blocked later by validation.
func LoadRecipients(path string) ([]*domain.Recipient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipients: %w", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("recipients file is not a JSON array: %w", err)
	}

	recipients := make([]*domain.Recipient, 0, len(raw))
	for i, msg := range raw {
		var r domain.Recipient
		if err := json.Unmarshal(msg, &r); err != nil {
			logger.Warn("skipping undecodable recipient record",
				"index", i, "error", err.Error())
			continue
		}
		recipients = append(recipients, &r)
	}
	return recipients, nil
}

// LoadEvents reads a JSON array of event records, with the same lenient
// per-record handling as LoadRecipients.
func LoadEvents(path string) ([]*domain.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("events file is not a JSON array: %w", err)
	}

	events := make([]*domain.Event, 0, len(raw))
	for i, msg := range raw {
		var e domain.Event
		if err := json.Unmarshal(msg, &e); err != nil {
			logger.Warn("skipping undecodable event record",
				"index", i, "error", err.Error())
			continue
		}
		events = append(events, &e)
	}
	return events, nil
}

// Store persists batch artifacts under a fixed output directory.
type Store struct {
	outputDir  string
	sendLogDir string
	now        func() time.Time
}

// New builds a Store. now is injectable for tests and defaults to
// time.Now.
func New(outputDir, sendLogDir string, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	if sendLogDir == "" {
		sendLogDir = filepath.Join(outputDir, "send_logs")
	}
	return &Store{outputDir: outputDir, sendLogDir: sendLogDir, now: now}
}

// DayCollectionPath returns the artifact path for a sequence day.
func (s *Store) DayCollectionPath(day domain.Day) string {
	return filepath.Join(s.outputDir, fmt.Sprintf("day_%s_emails.json", day))
}

// WriteDayCollection persists one day's results as pretty-printed JSON.
// An existing artifact for the same day is overwritten.
func (s *Store) WriteDayCollection(col *domain.DayCollection) error {
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	data, err := json.MarshalIndent(col, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal day collection: %w", err)
	}

	path := s.DayCollectionPath(col.Day)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write day collection: %w", err)
	}
	logger.Info("day collection saved", "day", string(col.Day), "path", path,
		"emails", len(col.Emails))
	return nil
}

// ReadDayCollection loads a previously persisted day artifact.
func (s *Store) ReadDayCollection(day domain.Day) (*domain.DayCollection, error) {
	data, err := os.ReadFile(s.DayCollectionPath(day))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w %s", ErrNoArtifact, day)
		}
		return nil, err
	}
	var col domain.DayCollection
	if err := json.Unmarshal(data, &col); err != nil {
		return nil, fmt.Errorf("decode day collection: %w", err)
	}
	return &col, nil
}

// AvailableDays lists the sequence days that have a persisted artifact.
func (s *Store) AvailableDays() []domain.Day {
	var days []domain.Day
	for _, day := range domain.AllDays() {
		if _, err := os.Stat(s.DayCollectionPath(day)); err == nil {
			days = append(days, day)
		}
	}
	return days
}

// SendLog is the persisted record of one delivery run.
type SendLog struct {
	Day        domain.Day             `json:"day"`
	DryRun     bool                   `json:"dry_run"`
	SentAt     time.Time              `json:"sent_at"`
	Statistics domain.DeliveryStats   `json:"statistics"`
	Emails     []domain.OutboundEmail `json:"emails"`
}

// WriteSendLog persists a delivery run log. Dry runs get a dryrun_
// filename prefix so they are easy to tell apart from real sends.
func (s *Store) WriteSendLog(log *SendLog) (string, error) {
	if err := os.MkdirAll(s.sendLogDir, 0755); err != nil {
		return "", fmt.Errorf("create send log dir: %w", err)
	}

	prefix := ""
	if log.DryRun {
		prefix = "dryrun_"
	}
	name := fmt.Sprintf("%sday_%s_sent_%s.json", prefix, log.Day,
		s.now().Format("20060102_150405"))
	path := filepath.Join(s.sendLogDir, name)

	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal send log: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write send log: %w", err)
	}
	logger.Info("send log saved", "path", path)
	return path, nil
}
