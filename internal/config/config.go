package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Version reported by the health endpoint.
const Version = "1.0.0"

// Config holds the runtime configuration snapshot for the relay service.
// It is resolved once at startup and read-only afterwards.
type Config struct {
	Host string
	Port int

	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	CORSMaxAge     int

	TelegramEnabled       bool
	TelegramToken         string
	TelegramChatID        string
	TelegramTopicID       string
	TelegramParseMode     string
	TelegramHeaderTpl     string
	TelegramFieldTpl      string
	TelegramLongFieldTpl  string
	TelegramMaxMessageLen int
	TelegramTimeout       time.Duration

	EmailEnabled    bool
	EmailHost       string
	EmailPort       int
	EmailUsername   string
	EmailPassword   string
	EmailTo         []string
	EmailFrom       string
	EmailSubjectTpl string
	EmailUseTLS     bool
	EmailUseSSL     bool
	EmailTimeout    time.Duration

	LogLevel     string
	LogFormat    string
	SaveFormData bool
	FormLogsDir  string

	APIPrefix       string
	FormEndpoint    string
	ContactEndpoint string
	HealthEndpoint  string
	SuccessMessage  string
	ErrorNoData     string
	ErrorSending    string

	IgnoredPrefixes    []string
	FormNameField      string
	DefaultFormName    string
	LongFieldThreshold int

	CustomHeaders map[string]string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ZerologLevel maps the configured log level onto zerolog's levels.
func (c Config) ZerologLevel() zerolog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Validate checks settings that cannot be verified by parsing alone.
// Recipient addresses are only checked when the mail channel is enabled.
func (c Config) Validate(validate *validator.Validate) error {
	if !c.EmailEnabled {
		return nil
	}
	for _, addr := range c.EmailTo {
		if err := validate.Var(addr, "required,email"); err != nil {
			return fmt.Errorf("invalid email recipient %q: %w", addr, err)
		}
	}
	if c.EmailFrom != "" {
		if err := validate.Var(c.EmailFrom, "email"); err != nil {
			return fmt.Errorf("invalid email sender %q: %w", c.EmailFrom, err)
		}
	}
	return nil
}

// Load reads configuration values from environment variables and an optional
// .env file. Malformed numeric, boolean and duration values fail startup
// instead of silently defaulting.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", "8080")

	v.SetDefault("allowed.origins", "https://your-website.com")
	v.SetDefault("allowed.methods", "GET,POST,OPTIONS")
	v.SetDefault("allowed.headers", "Content-Type,Authorization")
	v.SetDefault("cors.max.age", "86400")

	v.SetDefault("enable.telegram", "true")
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.chat.id", "")
	v.SetDefault("telegram.topic.id", "")
	v.SetDefault("telegram.parse.mode", "HTML")
	v.SetDefault("telegram.format.header",
		`<b>New message from form: {form_name}</b>\n<b>Date and time:</b> {datetime}\n\n`)
	v.SetDefault("telegram.format.field", `<b>{field_name}:</b> {field_value}\n`)
	v.SetDefault("telegram.format.long.field", `<b>{field_name}:</b>\n{field_value}\n`)
	v.SetDefault("telegram.max.message.length", "4096")
	v.SetDefault("telegram.timeout", "10s")

	v.SetDefault("enable.email", "true")
	v.SetDefault("email.host", "smtp.gmail.com")
	v.SetDefault("email.port", "587")
	v.SetDefault("email.user", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.to", "")
	v.SetDefault("email.from", "")
	v.SetDefault("email.subject.template", "New message: {form_name}")
	v.SetDefault("email.use.tls", "true")
	v.SetDefault("email.use.ssl", "false")
	v.SetDefault("email.timeout", "15s")

	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.save.form.data", "true")
	v.SetDefault("form.logs.dir", "form_logs")

	v.SetDefault("api.prefix", "/api")
	v.SetDefault("api.form.endpoint", "/form-submit")
	v.SetDefault("api.contact.endpoint", "/contact")
	v.SetDefault("api.health.endpoint", "/health")
	v.SetDefault("api.success.message", "Form submitted successfully")
	v.SetDefault("api.error.no.data", "No form data")
	v.SetDefault("api.error.sending", "Failed to send notifications")

	v.SetDefault("form.ignored.prefixes", "_,csrf,captcha")
	v.SetDefault("form.name.field", "_form_name")
	v.SetDefault("default.form.name", "Feedback")
	v.SetDefault("form.long.field.threshold", "100")

	v.SetDefault("custom.headers", "")

	cfg := Config{
		Host: v.GetString("host"),

		AllowedOrigins: splitList(v.GetString("allowed.origins")),
		AllowedMethods: splitList(v.GetString("allowed.methods")),
		AllowedHeaders: splitList(v.GetString("allowed.headers")),

		TelegramToken:        v.GetString("telegram.token"),
		TelegramChatID:       v.GetString("telegram.chat.id"),
		TelegramTopicID:      v.GetString("telegram.topic.id"),
		TelegramParseMode:    v.GetString("telegram.parse.mode"),
		TelegramHeaderTpl:    unescapeNewlines(v.GetString("telegram.format.header")),
		TelegramFieldTpl:     unescapeNewlines(v.GetString("telegram.format.field")),
		TelegramLongFieldTpl: unescapeNewlines(v.GetString("telegram.format.long.field")),

		EmailHost:       v.GetString("email.host"),
		EmailUsername:   v.GetString("email.user"),
		EmailPassword:   v.GetString("email.password"),
		EmailTo:         splitList(v.GetString("email.to")),
		EmailFrom:       v.GetString("email.from"),
		EmailSubjectTpl: v.GetString("email.subject.template"),

		LogLevel:    v.GetString("log.level"),
		LogFormat:   strings.ToLower(v.GetString("log.format")),
		FormLogsDir: v.GetString("form.logs.dir"),

		APIPrefix:       v.GetString("api.prefix"),
		FormEndpoint:    v.GetString("api.form.endpoint"),
		ContactEndpoint: v.GetString("api.contact.endpoint"),
		HealthEndpoint:  v.GetString("api.health.endpoint"),
		SuccessMessage:  v.GetString("api.success.message"),
		ErrorNoData:     v.GetString("api.error.no.data"),
		ErrorSending:    v.GetString("api.error.sending"),

		IgnoredPrefixes: splitList(v.GetString("form.ignored.prefixes")),
		FormNameField:   v.GetString("form.name.field"),
		DefaultFormName: v.GetString("default.form.name"),

		CustomHeaders: parseHeaderMap(v.GetString("custom.headers")),
	}

	var err error
	if cfg.Port, err = parseInt(v, "port"); err != nil {
		return Config{}, err
	}
	if cfg.CORSMaxAge, err = parseInt(v, "cors.max.age"); err != nil {
		return Config{}, err
	}
	if cfg.TelegramMaxMessageLen, err = parseInt(v, "telegram.max.message.length"); err != nil {
		return Config{}, err
	}
	if cfg.EmailPort, err = parseInt(v, "email.port"); err != nil {
		return Config{}, err
	}
	if cfg.LongFieldThreshold, err = parseInt(v, "form.long.field.threshold"); err != nil {
		return Config{}, err
	}

	if cfg.TelegramEnabled, err = parseBool(v, "enable.telegram"); err != nil {
		return Config{}, err
	}
	if cfg.EmailEnabled, err = parseBool(v, "enable.email"); err != nil {
		return Config{}, err
	}
	if cfg.EmailUseTLS, err = parseBool(v, "email.use.tls"); err != nil {
		return Config{}, err
	}
	if cfg.EmailUseSSL, err = parseBool(v, "email.use.ssl"); err != nil {
		return Config{}, err
	}
	if cfg.SaveFormData, err = parseBool(v, "log.save.form.data"); err != nil {
		return Config{}, err
	}

	if cfg.TelegramTimeout, err = parseDuration(v, "telegram.timeout"); err != nil {
		return Config{}, err
	}
	if cfg.EmailTimeout, err = parseDuration(v, "email.timeout"); err != nil {
		return Config{}, err
	}

	if cfg.TelegramMaxMessageLen <= 0 {
		return Config{}, fmt.Errorf("telegram max message length must be positive")
	}
	if cfg.LongFieldThreshold < 0 {
		return Config{}, fmt.Errorf("long field threshold must not be negative")
	}

	return cfg, nil
}

func parseInt(v *viper.Viper, key string) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q", envName(key), raw)
	}
	return n, nil
}

func parseBool(v *viper.Viper, key string) (bool, error) {
	raw := strings.TrimSpace(v.GetString(key))
	b, err := strconv.ParseBool(strings.ToLower(raw))
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: %q", envName(key), raw)
	}
	return b, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q", envName(key), raw)
	}
	return d, nil
}

func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// unescapeNewlines turns literal "\n" sequences from environment values into
// real newlines so templates can be configured on a single env line.
func unescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseHeaderMap parses a comma-separated list of colon-separated pairs,
// e.g. "X-Service:formgate,X-Env:prod".
func parseHeaderMap(raw string) map[string]string {
	headers := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" || !strings.Contains(pair, ":") {
			continue
		}
		kv := strings.SplitN(pair, ":", 2)
		key := strings.TrimSpace(kv[0])
		if key == "" {
			continue
		}
		headers[key] = strings.TrimSpace(kv[1])
	}
	return headers
}
