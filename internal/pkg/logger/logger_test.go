package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"john.doe@example.com", "jo***@example.com"},
		{"ab@example.com", "***@example.com"},
		{"not-an-email", "***@***"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, RedactEmail(tc.in))
	}
}

func TestLog_RedactsEmbeddedEmails(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	Info("queued send", "recipient", "priya.singh@example.org", "event", "e-001")

	var entry map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "pr***@example.org", entry["recipient"])
	assert.Equal(t, "e-001", entry["event"])
	assert.Equal(t, "INFO", entry["level"])
}
