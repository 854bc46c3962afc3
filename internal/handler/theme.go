package handler

import (
	"github.com/gofiber/fiber/v2"

	"wedding-invitation/internal/models"
)

// GetTheme handles GET /api/theme
func (h *Handler) GetTheme(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"theme":  h.themes.Load(),
		"themes": models.Themes,
	})
}

type themeRequest struct {
	Theme models.Theme `json:"theme" validate:"required"`
}

// SetTheme handles PUT /api/theme
func (h *Handler) SetTheme(c *fiber.Ctx) error {
	var req themeRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	if err := h.themes.Save(req.Theme); err != nil {
		return err
	}
	h.log.Info().Str("theme", string(req.Theme)).Msg("Theme changed")
	return c.JSON(fiber.Map{"ok": true, "theme": req.Theme})
}
