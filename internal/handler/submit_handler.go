package handler

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/formgate/formgate-api/internal/config"
	"github.com/formgate/formgate-api/internal/dto"
	"github.com/formgate/formgate-api/internal/service"
	"github.com/formgate/formgate-api/internal/utils"
)

// SubmitHandler exposes the form submission endpoint.
type SubmitHandler struct {
	service service.RelayService
	cfg     config.Config
	logger  zerolog.Logger
}

// NewSubmitHandler constructs the handler.
func NewSubmitHandler(service service.RelayService, cfg config.Config, logger zerolog.Logger) *SubmitHandler {
	return &SubmitHandler{
		service: service,
		cfg:     cfg,
		logger:  logger.With().Str("component", "submit_handler").Logger(),
	}
}

// Handle accepts a JSON object of form fields and relays it to the
// notification channels.
func (h *SubmitHandler) Handle(c *fiber.Ctx) error {
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, h.cfg.ErrorNoData)
	}

	var submission dto.FormSubmission
	if err := json.Unmarshal(body, &submission); err != nil {
		h.logger.Warn().Err(err).Msg("rejecting unreadable submission body")
		return utils.SendError(c, fiber.StatusBadRequest, h.cfg.ErrorNoData)
	}
	if submission.Empty() {
		return utils.SendError(c, fiber.StatusBadRequest, h.cfg.ErrorNoData)
	}

	meta := dto.SubmissionMeta{
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}

	result, err := h.service.Submit(c.UserContext(), submission, meta)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptySubmission):
			return utils.SendError(c, fiber.StatusBadRequest, h.cfg.ErrorNoData)
		case errors.Is(err, service.ErrDispatchFailed):
			h.logger.Error().
				Str("form", result.FormName).
				Msg("no notification channel delivered the submission")
			return utils.SendError(c, fiber.StatusInternalServerError, h.cfg.ErrorSending)
		default:
			h.logger.Error().Err(err).Msg("failed to process form submission")
			return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
		}
	}

	return utils.SendSuccess(c, h.cfg.SuccessMessage)
}
