package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/formgate/formgate-api/internal/config"
	"github.com/formgate/formgate-api/internal/dto"
	"github.com/formgate/formgate-api/internal/handler"
	"github.com/formgate/formgate-api/internal/router"
	"github.com/formgate/formgate-api/internal/service"
	"github.com/formgate/formgate-api/internal/utils"
)

type stubRelayService struct {
	result service.SubmitResult
	err    error
	calls  int
	got    dto.FormSubmission
	meta   dto.SubmissionMeta
}

func (s *stubRelayService) Submit(_ context.Context, submission dto.FormSubmission, meta dto.SubmissionMeta) (service.SubmitResult, error) {
	s.calls++
	s.got = submission
	s.meta = meta
	return s.result, s.err
}

func testConfig() config.Config {
	return config.Config{
		APIPrefix:       "/api",
		FormEndpoint:    "/form-submit",
		ContactEndpoint: "/contact",
		HealthEndpoint:  "/health",
		SuccessMessage:  "Form submitted successfully",
		ErrorNoData:     "No form data",
		ErrorSending:    "Failed to send notifications",
		CustomHeaders:   map[string]string{"X-Service": "formgate"},
		TelegramEnabled: true,
		TelegramToken:   "token",
		EmailEnabled:    false,
		SaveFormData:    true,
	}
}

func setupSubmitApp(t *testing.T, relay *stubRelayService) *fiber.App {
	t.Helper()

	cfg := testConfig()
	logger := zerolog.New(io.Discard)
	submitHandler := handler.NewSubmitHandler(relay, cfg, logger)

	app := fiber.New()
	router.Register(app, cfg, router.Dependencies{SubmitHandler: submitHandler})
	return app
}

func decodeResponse(t *testing.T, body io.Reader) utils.APIResponse {
	t.Helper()
	var payload utils.APIResponse
	require.NoError(t, json.NewDecoder(body).Decode(&payload))
	return payload
}

func TestSubmitHandlerSuccess(t *testing.T) {
	relay := &stubRelayService{result: service.SubmitResult{FormName: "Contact"}}
	app := setupSubmitApp(t, relay)

	body := `{"_form_name":"Contact","email":"a@b.com","message":"hi"}`
	req := httptest.NewRequest("POST", "/api/form-submit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "formgate", resp.Header.Get("X-Service"))

	payload := decodeResponse(t, resp.Body)
	require.True(t, payload.Success)
	require.Equal(t, "Form submitted successfully", payload.Message)

	require.Equal(t, 1, relay.calls)
	require.Equal(t, "test-agent", relay.meta.UserAgent)
	require.Len(t, relay.got.Fields, 3)
	require.Equal(t, "_form_name", relay.got.Fields[0].Name)
	require.Equal(t, "email", relay.got.Fields[1].Name)
	require.Equal(t, "message", relay.got.Fields[2].Name)
}

func TestSubmitHandlerContactAlias(t *testing.T) {
	relay := &stubRelayService{}
	app := setupSubmitApp(t, relay)

	req := httptest.NewRequest("POST", "/api/contact", strings.NewReader(`{"email":"a@b.com"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, 1, relay.calls)
}

func TestSubmitHandlerEmptyBody(t *testing.T) {
	relay := &stubRelayService{}
	app := setupSubmitApp(t, relay)

	for _, body := range []string{"", "{}", "null"} {
		req := httptest.NewRequest("POST", "/api/form-submit", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "body %q", body)

		payload := decodeResponse(t, resp.Body)
		require.False(t, payload.Success)
		require.Equal(t, "No form data", payload.Error)
	}

	require.Zero(t, relay.calls, "relay service must not run for empty submissions")
}

func TestSubmitHandlerMalformedBody(t *testing.T) {
	relay := &stubRelayService{}
	app := setupSubmitApp(t, relay)

	req := httptest.NewRequest("POST", "/api/form-submit", strings.NewReader(`["not","an","object"]`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Zero(t, relay.calls)
}

func TestSubmitHandlerAllChannelsFailed(t *testing.T) {
	relay := &stubRelayService{err: service.ErrDispatchFailed}
	app := setupSubmitApp(t, relay)

	req := httptest.NewRequest("POST", "/api/form-submit", strings.NewReader(`{"email":"a@b.com"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	payload := decodeResponse(t, resp.Body)
	require.False(t, payload.Success)
	require.Equal(t, "Failed to send notifications", payload.Error)
}

func TestSubmitHandlerUnexpectedError(t *testing.T) {
	relay := &stubRelayService{err: errors.New("relay exploded")}
	app := setupSubmitApp(t, relay)

	req := httptest.NewRequest("POST", "/api/form-submit", strings.NewReader(`{"email":"a@b.com"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	payload := decodeResponse(t, resp.Body)
	require.False(t, payload.Success)
	require.Equal(t, "relay exploded", payload.Error)
}
