package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is one submitted form field. Value keeps whatever JSON shape the
// client sent (string, list, number, ...).
type Field struct {
	Name  string
	Value interface{}
}

// FormSubmission is an ordered field-name to value mapping. Go maps do not
// preserve key order, so the fields are kept as a slice and decoded from the
// raw JSON token stream to retain the order the client used.
type FormSubmission struct {
	Fields []Field
}

// Empty reports whether the submission carries no fields at all.
func (f FormSubmission) Empty() bool {
	return len(f.Fields) == 0
}

// Get returns the value of the first field with the given name.
func (f FormSubmission) Get(name string) (interface{}, bool) {
	for _, field := range f.Fields {
		if field.Name == name {
			return field.Value, true
		}
	}
	return nil, false
}

// GetString returns the value of the named field rendered as a string, or ""
// when the field is absent.
func (f FormSubmission) GetString(name string) string {
	value, ok := f.Get(name)
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

// UnmarshalJSON decodes a JSON object while preserving its key order.
// Numbers are kept as json.Number so their textual form survives.
func (f *FormSubmission) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		f.Fields = nil
		return nil
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return fmt.Errorf("form submission must be a JSON object")
	}

	fields := make([]Field, 0, 8)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in form submission", keyTok)
		}

		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return err
		}
		fields = append(fields, Field{Name: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	f.Fields = fields
	return nil
}

// MarshalJSON writes the submission back as a JSON object in field order.
func (f FormSubmission) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(field.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(field.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// SubmissionMeta carries request-level attributes recorded alongside a
// submission.
type SubmissionMeta struct {
	IP        string
	UserAgent string
}
