package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger tags each request with an id and logs it once finished.
func (h *Handler) RequestLogger(c *fiber.Ctx) error {
	start := time.Now()

	id := c.Get(requestIDHeader)
	if id == "" {
		id = utils.UUIDv4()
	}
	c.Set(requestIDHeader, id)

	err := c.Next()
	if err != nil {
		// Run the error handler now so the logged status is the final one.
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	status := c.Response().StatusCode()
	ev := h.log.Info()
	if status >= fiber.StatusInternalServerError {
		ev = h.log.Error()
	} else if status >= fiber.StatusBadRequest {
		ev = h.log.Warn()
	}
	ev.Str("request_id", id).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", status).
		Dur("latency", time.Since(start)).
		Str("ip", c.IP()).
		Msg("Request")
	return nil
}

// Health handles GET /healthz
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.SendString("OK")
}

// NotFound is the catch-all for unknown routes, including "/".
func (h *Handler) NotFound(c *fiber.Ctx) error {
	return fiber.ErrNotFound
}
