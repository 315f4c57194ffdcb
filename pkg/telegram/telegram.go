package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const defaultBaseURL = "https://api.telegram.org"

// Config describes the Telegram destination.
type Config struct {
	Enabled          bool
	Token            string
	ChatID           string
	TopicID          string
	ParseMode        string
	MaxMessageLength int
	// BaseURL overrides the Bot API host, used by tests.
	BaseURL string
}

// Client posts messages to the Telegram Bot API over plain HTTP.
type Client struct {
	enabled   bool
	token     string
	chatID    string
	topicID   int
	hasTopic  bool
	parseMode string
	maxLen    int
	baseURL   string
	client    *http.Client
	logger    zerolog.Logger
}

// New builds a Client. An unparsable topic identifier fails construction.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	c := &Client{
		enabled:   cfg.Enabled,
		token:     cfg.Token,
		chatID:    cfg.ChatID,
		parseMode: cfg.ParseMode,
		maxLen:    cfg.MaxMessageLength,
		baseURL:   cfg.BaseURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger.With().Str("component", "telegram").Logger(),
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if cfg.TopicID != "" {
		topic, err := strconv.Atoi(cfg.TopicID)
		if err != nil {
			return nil, fmt.Errorf("invalid telegram topic id %q: %w", cfg.TopicID, err)
		}
		c.topicID = topic
		c.hasTopic = true
	}
	return c, nil
}

// Enabled reports whether the client is configured to deliver messages.
func (c *Client) Enabled() bool {
	return c.enabled && c.token != ""
}

// Send delivers the message, splitting it into sequential parts when it
// exceeds the configured maximum length. Parts after the first carry a
// "(Part i/N)" marker. The first transport failure aborts the remaining
// parts; anything already sent stays sent.
func (c *Client) Send(ctx context.Context, message string) error {
	parts := SplitMessage(message, c.maxLen)
	total := len(parts)

	for i, part := range parts {
		text := part
		if i > 0 {
			text = fmt.Sprintf("(Part %d/%d) %s", i+1, total, part)
		}
		if err := c.sendMessage(ctx, text); err != nil {
			if total > 1 {
				return fmt.Errorf("part %d/%d: %w", i+1, total, err)
			}
			return err
		}
	}
	return nil
}

// SplitMessage cuts the message into ceil(len/maxLen) chunks of at most
// maxLen runes each. Concatenating the chunks reproduces the message.
func SplitMessage(message string, maxLen int) []string {
	runes := []rune(message)
	if maxLen <= 0 || len(runes) <= maxLen {
		return []string{message}
	}

	parts := make([]string, 0, (len(runes)+maxLen-1)/maxLen)
	for start := 0; start < len(runes); start += maxLen {
		end := start + maxLen
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}

type sendMessageRequest struct {
	ChatID          string `json:"chat_id"`
	Text            string `json:"text"`
	ParseMode       string `json:"parse_mode,omitempty"`
	MessageThreadID int    `json:"message_thread_id,omitempty"`
}

func (c *Client) sendMessage(ctx context.Context, text string) error {
	payload := sendMessageRequest{
		ChatID:    c.chatID,
		Text:      text,
		ParseMode: c.parseMode,
	}
	if c.hasTopic {
		payload.MessageThreadID = c.topicID
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().Int("length", len(text)).Msg("sending telegram message")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("telegram returned %s", resp.Status)
	}
	return nil
}
