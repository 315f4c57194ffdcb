package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/formgate/formgate-api/internal/config"
)

const healthTimeLayout = "2006-01-02 15:04:05"

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
	Version    string            `json:"version"`
	Timestamp  string            `json:"timestamp"`
}

// HealthCheck returns a handler that reports which notification components
// are active.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status: "ok",
			Components: map[string]string{
				"telegram": activity(cfg.TelegramEnabled && cfg.TelegramToken != ""),
				"email":    activity(cfg.EmailEnabled),
				"logging":  activity(cfg.SaveFormData),
			},
			Version:   config.Version,
			Timestamp: time.Now().Format(healthTimeLayout),
		}

		return c.Status(fiber.StatusOK).JSON(payload)
	}
}

func activity(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}
