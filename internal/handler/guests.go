package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/skip2/go-qrcode"

	"wedding-invitation/internal/guest"
	"wedding-invitation/internal/models"
	"wedding-invitation/internal/whatsapp"
)

type guestItem struct {
	models.Guest
	URL string `json:"url"`
}

// ListGuests handles GET /api/guests?filter=
func (h *Handler) ListGuests(c *fiber.Ctx) error {
	filter, err := guest.ParseFilter(c.Query("filter"))
	if err != nil {
		return err
	}
	list, stats := h.guests.Overview(filter)

	items := make([]guestItem, 0, len(list))
	for _, g := range list {
		items = append(items, guestItem{Guest: g, URL: h.inviteURL(c, g.Code)})
	}
	return c.JSON(fiber.Map{
		"guests": items,
		"stats":  stats,
	})
}

type createGuestRequest struct {
	Name     string `json:"name" validate:"required"`
	Ceremony bool   `json:"ceremony"`
}

type createGuestResponse struct {
	guest.Created
	URL string `json:"url"`
}

// CreateGuest handles POST /api/guests. Re-adding an existing name only
// updates its ceremony flag and answers 200 instead of 201.
func (h *Handler) CreateGuest(c *fiber.Ctx) error {
	var req createGuestRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	created, err := h.guests.CreateOrUpdate(req.Name, req.Ceremony)
	if err != nil {
		return err
	}

	status := fiber.StatusCreated
	if created.Updated {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(createGuestResponse{
		Created: created,
		URL:     h.inviteURL(c, created.Code),
	})
}

type updateGuestRequest struct {
	Name     *string `json:"name"`
	Ceremony *bool   `json:"ceremony"`
}

// UpdateGuest handles PATCH /api/guests/:code
func (h *Handler) UpdateGuest(c *fiber.Ctx) error {
	var req updateGuestRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	if req.Name == nil && req.Ceremony == nil {
		return models.NewValidationError("", "nothing to update")
	}

	code := c.Params("code")
	if err := h.guests.EditGuest(code, req.Name, req.Ceremony); err != nil {
		return err
	}

	g, err := h.guests.Get(code)
	if err != nil {
		return err
	}
	return c.JSON(guestItem{Guest: g, URL: h.inviteURL(c, code)})
}

// DeleteGuest handles DELETE /api/guests/:code
func (h *Handler) DeleteGuest(c *fiber.Ctx) error {
	if err := h.guests.DeleteGuest(c.Params("code")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

// GuestQR handles GET /api/guests/:code/qr with a PNG of the invitation link.
func (h *Handler) GuestQR(c *fiber.Ctx) error {
	g, err := h.guests.Get(c.Params("code"))
	if err != nil {
		return err
	}

	png, err := qrcode.Encode(h.inviteURL(c, g.Code), qrcode.Medium, 256)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+g.Code+`.png"`)
	return c.Send(png)
}

type sendInvitationRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// SendInvitation handles POST /api/guests/:code/whatsapp. The number is
// remembered on the guest so chat replies can be matched back.
func (h *Handler) SendInvitation(c *fiber.Ctx) error {
	if h.messenger == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "WhatsApp delivery is disabled")
	}

	var req sendInvitationRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	phone := whatsapp.NormalizePhoneNumber(req.Phone, h.cfg.WhatsAppCountryCode)
	if phone == "" {
		return models.NewValidationError("phone", "phone number is required")
	}

	g, err := h.guests.Get(c.Params("code"))
	if err != nil {
		return err
	}

	w := h.cfg.Wedding
	inv := whatsapp.Invitation{
		GuestName: g.Name,
		Couple:    w.Couple(),
		Date:      w.Date,
		Venue:     w.Venue,
		URL:       h.inviteURL(c, g.Code),
	}
	if err := h.messenger.SendInvitation(c.UserContext(), phone, inv); err != nil {
		h.log.Error().Err(err).Str("code", g.Code).Str("phone", phone).Msg("Failed to send invitation")
		return fiber.NewError(fiber.StatusBadGateway, "failed to send invitation")
	}
	if err := h.guests.AttachPhone(g.Code, phone); err != nil {
		return err
	}

	h.log.Info().Str("code", g.Code).Str("phone", phone).Msg("Invitation sent over WhatsApp")
	return c.JSON(fiber.Map{"ok": true, "phone": phone})
}
