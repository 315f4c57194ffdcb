package service

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/formgate/formgate-api/internal/config"
	"github.com/formgate/formgate-api/internal/dto"
)

const headerTimeLayout = "02.01.2006 15:04:05"

// Formatter turns a form submission into a single notification message using
// the configured header, field and long-field templates. It has no failure
// mode: absent or odd values degrade to their text conversion.
type Formatter struct {
	headerTpl          string
	fieldTpl           string
	longFieldTpl       string
	ignoredPrefixes    []string
	formNameField      string
	defaultFormName    string
	longFieldThreshold int
	now                func() time.Time
}

// NewFormatter builds a Formatter from the loaded configuration.
func NewFormatter(cfg config.Config) *Formatter {
	return &Formatter{
		headerTpl:          cfg.TelegramHeaderTpl,
		fieldTpl:           cfg.TelegramFieldTpl,
		longFieldTpl:       cfg.TelegramLongFieldTpl,
		ignoredPrefixes:    cfg.IgnoredPrefixes,
		formNameField:      cfg.FormNameField,
		defaultFormName:    cfg.DefaultFormName,
		longFieldThreshold: cfg.LongFieldThreshold,
		now:                time.Now,
	}
}

// ResolveFormName picks the display name of a form: explicit override first,
// then the reserved name field, then the configured default.
func (f *Formatter) ResolveFormName(submission dto.FormSubmission, override string) string {
	if override != "" {
		return override
	}
	if name := submission.GetString(f.formNameField); name != "" {
		return name
	}
	return f.defaultFormName
}

// Format renders the header followed by one line per visible field, in the
// submission's own field order.
func (f *Formatter) Format(submission dto.FormSubmission, formName string) string {
	var b strings.Builder
	b.WriteString(renderTemplate(f.headerTpl, map[string]string{
		"form_name": formName,
		"datetime":  f.now().Format(headerTimeLayout),
	}))

	for _, field := range submission.Fields {
		if f.ignored(field.Name) {
			continue
		}

		vars := map[string]string{
			"field_name":  displayFieldName(field.Name),
			"field_value": renderValue(field.Value),
		}

		tpl := f.fieldTpl
		if utf8.RuneCountInString(vars["field_value"]) > f.longFieldThreshold {
			tpl = f.longFieldTpl
		}
		b.WriteString(renderTemplate(tpl, vars))
	}

	return b.String()
}

func (f *Formatter) ignored(name string) bool {
	for _, prefix := range f.ignoredPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// displayFieldName turns a raw field key into its display form: underscores
// become spaces and the first character is uppercased.
func displayFieldName(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	if name == "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}

// renderValue converts a field value to text. Lists are joined with ", ",
// everything else takes its default text conversion.
func renderValue(value interface{}) string {
	if items, ok := value.([]interface{}); ok {
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = fmt.Sprintf("%v", item)
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprintf("%v", value)
}

// renderTemplate substitutes {name} placeholders in the template.
func renderTemplate(tpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}
