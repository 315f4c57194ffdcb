package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/formgate/formgate-api/pkg/mailer"
)

// EmailDispatcher adapts the SMTP client to the mail dispatcher contract.
type EmailDispatcher struct {
	client *mailer.Client
	logger zerolog.Logger
}

// NewEmailDispatcher constructs the adapter.
func NewEmailDispatcher(client *mailer.Client, logger zerolog.Logger) *EmailDispatcher {
	return &EmailDispatcher{
		client: client,
		logger: logger.With().Str("component", "email_dispatcher").Logger(),
	}
}

// Dispatch attempts delivery of a single message to all configured
// recipients. Missing credentials are a normal disabled state.
func (d *EmailDispatcher) Dispatch(ctx context.Context, subject, body string) DispatchResult {
	if !d.client.Enabled() {
		d.logger.Info().Msg("email notifications disabled in settings")
		return DispatchResult{State: StateDisabled}
	}

	if err := ctx.Err(); err != nil {
		return DispatchResult{State: StateFailed, Err: err}
	}

	if err := d.client.Send(subject, body); err != nil {
		d.logger.Error().Err(err).Msg("failed to send email notification")
		return DispatchResult{State: StateFailed, Err: err}
	}

	d.logger.Info().Msg("email notification sent")
	return DispatchResult{State: StateDelivered}
}
