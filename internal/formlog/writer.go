package formlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/formgate/formgate-api/internal/dto"
)

const (
	fileDateLayout   = "2006-01-02"
	recordTimeLayout = "2006-01-02 15:04:05"
)

// Record is one appended submission entry.
type Record struct {
	Timestamp string             `json:"timestamp"`
	FormName  string             `json:"form_name"`
	IP        string             `json:"ip"`
	UserAgent string             `json:"user_agent"`
	Data      dto.FormSubmission `json:"data"`
}

// Writer appends one JSON line per submission to a per-day, per-form file.
// Failures never propagate to the caller's response path.
type Writer struct {
	dir     string
	enabled bool
	logger  zerolog.Logger
	now     func() time.Time
}

// NewWriter constructs a Writer. When enabled is false every Append is a
// no-op.
func NewWriter(dir string, enabled bool, logger zerolog.Logger) *Writer {
	return &Writer{
		dir:     dir,
		enabled: enabled,
		logger:  logger.With().Str("component", "form_log").Logger(),
		now:     time.Now,
	}
}

// Enabled reports whether submissions are being persisted.
func (w *Writer) Enabled() bool {
	return w.enabled
}

// Append writes one submission as a single JSON line. The whole
// open-append-write-close cycle happens per call so concurrent submissions
// interleave at line granularity only.
func (w *Writer) Append(formName string, meta dto.SubmissionMeta, data dto.FormSubmission) error {
	if !w.enabled {
		return nil
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create form log directory: %w", err)
	}

	now := w.now()
	userAgent := meta.UserAgent
	if userAgent == "" {
		userAgent = "Unknown"
	}

	record := Record{
		Timestamp: now.Format(recordTimeLayout),
		FormName:  formName,
		IP:        meta.IP,
		UserAgent: userAgent,
		Data:      data,
	}

	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode form log record: %w", err)
	}
	line = append(line, '\n')

	path := filepath.Join(w.dir, fmt.Sprintf("%s_%s.log", now.Format(fileDateLayout), SanitizeFormName(formName)))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open form log file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("write form log record: %w", err)
	}

	w.logger.Info().Str("file", path).Msg("form data saved to log")
	return nil
}

// SanitizeFormName maps every rune that is not a letter or digit to a single
// underscore, producing a filesystem-safe filename component for any input.
func SanitizeFormName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
