package formlog

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formgate/formgate-api/internal/dto"
)

func newTestWriter(t *testing.T, enabled bool) (*Writer, string) {
	t.Helper()
	dir := t.TempDir()
	w := NewWriter(dir, enabled, zerolog.New(io.Discard))
	w.now = func() time.Time {
		return time.Date(2024, 3, 15, 9, 30, 5, 0, time.Local)
	}
	return w, dir
}

func TestSanitizeFormName(t *testing.T) {
	assert.Equal(t, "Sign_Up_", SanitizeFormName("Sign Up!"))
	assert.Equal(t, "Contact", SanitizeFormName("Contact"))
	assert.Equal(t, "___", SanitizeFormName("/.."))
	assert.Equal(t, "Форма123", SanitizeFormName("Форма123"), "unicode letters and digits survive")
}

func TestAppendWritesOneJSONLine(t *testing.T) {
	w, dir := newTestWriter(t, true)

	submission := dto.FormSubmission{Fields: []dto.Field{
		{Name: "email", Value: "a@b.com"},
		{Name: "message", Value: "hi"},
	}}
	meta := dto.SubmissionMeta{IP: "10.0.0.1", UserAgent: "curl/8.0"}

	require.NoError(t, w.Append("Sign Up!", meta, submission))

	path := filepath.Join(dir, "2024-03-15_Sign_Up_.log")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var record struct {
		Timestamp string          `json:"timestamp"`
		FormName  string          `json:"form_name"`
		IP        string          `json:"ip"`
		UserAgent string          `json:"user_agent"`
		Data      json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &record))
	assert.Equal(t, "2024-03-15 09:30:05", record.Timestamp)
	assert.Equal(t, "Sign Up!", record.FormName, "the record keeps the unsanitized name")
	assert.Equal(t, "10.0.0.1", record.IP)
	assert.Equal(t, "curl/8.0", record.UserAgent)
	assert.Equal(t, `{"email":"a@b.com","message":"hi"}`, string(record.Data), "field order is preserved")
}

func TestAppendAccumulatesLines(t *testing.T) {
	w, dir := newTestWriter(t, true)

	submission := dto.FormSubmission{Fields: []dto.Field{{Name: "n", Value: "1"}}}
	require.NoError(t, w.Append("Contact", dto.SubmissionMeta{}, submission))
	require.NoError(t, w.Append("Contact", dto.SubmissionMeta{}, submission))

	f, err := os.Open(filepath.Join(dir, "2024-03-15_Contact.log"))
	require.NoError(t, err)
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
		require.True(t, json.Valid(scanner.Bytes()), "every line is a standalone JSON record")
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, 2, lines)
}

func TestAppendDefaultsUserAgent(t *testing.T) {
	w, dir := newTestWriter(t, true)

	submission := dto.FormSubmission{Fields: []dto.Field{{Name: "n", Value: "1"}}}
	require.NoError(t, w.Append("Contact", dto.SubmissionMeta{}, submission))

	data, err := os.ReadFile(filepath.Join(dir, "2024-03-15_Contact.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"user_agent":"Unknown"`)
}

func TestDisabledWriterIsNoOp(t *testing.T) {
	w, dir := newTestWriter(t, false)

	submission := dto.FormSubmission{Fields: []dto.Field{{Name: "n", Value: "1"}}}
	require.NoError(t, w.Append("Contact", dto.SubmissionMeta{}, submission))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.False(t, w.Enabled())
}
