package utils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func performRequest(t *testing.T, handler fiber.Handler) (int, map[string]interface{}) {
	t.Helper()

	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp.StatusCode, payload
}

func TestSendSuccess(t *testing.T) {
	status, payload := performRequest(t, func(c *fiber.Ctx) error {
		return SendSuccess(c, "form submitted")
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "form submitted", payload["message"])
	assert.NotContains(t, payload, "error")
}

func TestSendError(t *testing.T) {
	status, payload := performRequest(t, func(c *fiber.Ctx) error {
		return SendError(c, fiber.StatusBadRequest, "no form data")
	})

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "no form data", payload["error"])
	assert.NotContains(t, payload, "message")
}

func TestSendDefaultsMessages(t *testing.T) {
	_, payload := performRequest(t, func(c *fiber.Ctx) error {
		return SendSuccess(c, "")
	})
	assert.Equal(t, "success", payload["message"])

	_, payload = performRequest(t, func(c *fiber.Ctx) error {
		return SendError(c, fiber.StatusInternalServerError, "")
	})
	assert.Equal(t, "error", payload["error"])
}
