package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/formgate/formgate-api/pkg/telegram"
)

// TelegramDispatcher adapts the Telegram client to the chat dispatcher
// contract, converting errors into a tagged result.
type TelegramDispatcher struct {
	client  *telegram.Client
	timeout time.Duration
	logger  zerolog.Logger
}

// NewTelegramDispatcher constructs the adapter.
func NewTelegramDispatcher(client *telegram.Client, timeout time.Duration, logger zerolog.Logger) *TelegramDispatcher {
	return &TelegramDispatcher{
		client:  client,
		timeout: timeout,
		logger:  logger.With().Str("component", "telegram_dispatcher").Logger(),
	}
}

// Dispatch attempts delivery. A disabled channel is a normal state, not an
// error.
func (d *TelegramDispatcher) Dispatch(ctx context.Context, message, formName string) DispatchResult {
	if !d.client.Enabled() {
		d.logger.Info().Msg("telegram notifications disabled in settings")
		return DispatchResult{State: StateDisabled}
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	if err := d.client.Send(ctx, message); err != nil {
		d.logger.Error().Err(err).Str("form", formName).Msg("failed to send telegram notification")
		return DispatchResult{State: StateFailed, Err: err}
	}

	d.logger.Info().Str("form", formName).Msg("telegram notification sent")
	return DispatchResult{State: StateDelivered}
}
