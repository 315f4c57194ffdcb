package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/formgate/formgate-api/internal/dto"
	"github.com/formgate/formgate-api/internal/formlog"
	"github.com/formgate/formgate-api/internal/observability"
)

var (
	// ErrEmptySubmission indicates the request body carried no form fields.
	ErrEmptySubmission = errors.New("empty form submission")
	// ErrDispatchFailed indicates no channel delivered the notification.
	ErrDispatchFailed = errors.New("all notification channels failed")
)

// SubmitResult reports the per-channel outcome of one submission.
type SubmitResult struct {
	FormName string
	Telegram DispatchResult
	Email    DispatchResult
}

// RelayService runs the submission workflow: validate, format, dispatch to
// both channels, log, aggregate.
type RelayService interface {
	Submit(ctx context.Context, submission dto.FormSubmission, meta dto.SubmissionMeta) (SubmitResult, error)
}

type relayService struct {
	formatter  *Formatter
	chat       ChatDispatcher
	mail       MailDispatcher
	formLog    *formlog.Writer
	subjectTpl string
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// NewRelayService constructs the orchestrator.
func NewRelayService(formatter *Formatter, chat ChatDispatcher, mail MailDispatcher, formLog *formlog.Writer, subjectTpl string, logger zerolog.Logger) RelayService {
	return &relayService{
		formatter:  formatter,
		chat:       chat,
		mail:       mail,
		formLog:    formLog,
		subjectTpl: subjectTpl,
		logger:     logger.With().Str("component", "relay_service").Logger(),
		tracer:     otel.Tracer("github.com/formgate/formgate-api/internal/service/relay"),
	}
}

func (s *relayService) Submit(ctx context.Context, submission dto.FormSubmission, meta dto.SubmissionMeta) (SubmitResult, error) {
	ctx, span := s.tracer.Start(ctx, "relay.submit")
	defer span.End()

	if submission.Empty() {
		span.SetStatus(codes.Error, "empty submission")
		observability.FormSubmissions().WithLabelValues("empty").Inc()
		return SubmitResult{}, ErrEmptySubmission
	}

	formName := s.formatter.ResolveFormName(submission, "")
	span.SetAttributes(attribute.String("form.name", formName))

	message := s.formatter.Format(submission, formName)
	subject := renderTemplate(s.subjectTpl, map[string]string{"form_name": formName})

	// The two channels are independent; they run concurrently. Chunked sends
	// inside the chat channel stay strictly sequential.
	result := SubmitResult{FormName: formName}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		result.Telegram = s.chat.Dispatch(ctx, message, formName)
	}()
	go func() {
		defer wg.Done()
		result.Email = s.mail.Dispatch(ctx, subject, message)
	}()
	wg.Wait()

	observability.Dispatches().WithLabelValues("telegram", result.Telegram.State.String()).Inc()
	observability.Dispatches().WithLabelValues("email", result.Email.State.String()).Inc()

	// Best effort: a logging failure must never affect the response.
	if err := s.formLog.Append(formName, meta, submission); err != nil {
		span.RecordError(err)
		s.logger.Error().Err(err).Str("form", formName).Msg("failed to save form data to log")
	}

	if !result.Telegram.Delivered() && !result.Email.Delivered() {
		span.SetStatus(codes.Error, "dispatch failed")
		observability.FormSubmissions().WithLabelValues("failed").Inc()
		return result, ErrDispatchFailed
	}

	observability.FormSubmissions().WithLabelValues("delivered").Inc()
	span.SetStatus(codes.Ok, "delivered")
	s.logger.Info().
		Str("form", formName).
		Str("telegram", result.Telegram.State.String()).
		Str("email", result.Email.State.String()).
		Msg("form submission processed")

	return result, nil
}
