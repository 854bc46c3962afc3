package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.mau.fi/whatsmeow/types/events"

	"wedding-invitation/internal/config"
	"wedding-invitation/internal/guest"
	"wedding-invitation/internal/models"
	"wedding-invitation/internal/whatsapp"
)

type invitationPage struct {
	Code           string
	GuestName      string
	InviteCeremony bool
	RSVP           *models.RSVP
	Theme          models.Theme
	InviteText     string
	MaxPartySize   int
	Wedding        config.Wedding
}

// Invitation handles GET /i/:code. Every successful GET counts as a view;
// HEAD requests do not.
func (h *Handler) Invitation(c *fiber.Ctx) error {
	code := c.Params("code")

	var view guest.GuestView
	if c.Method() == fiber.MethodHead {
		// Link previews and uptime checks are not visits.
		g, err := h.guests.Get(code)
		if err != nil {
			return err
		}
		view = guest.GuestView{Code: g.Code, Name: g.Name, Ceremony: g.Ceremony, RSVP: g.RSVP, ViewCount: g.ViewCount}
	} else {
		var err error
		if view, err = h.guests.RecordView(code); err != nil {
			return err
		}
	}

	return h.render(c, fiber.StatusOK, "invitation.html", invitationPage{
		Code:           view.Code,
		GuestName:      view.Name,
		InviteCeremony: view.Ceremony,
		RSVP:           view.RSVP,
		Theme:          h.themes.Load(),
		InviteText:     h.cfg.Wedding.RenderInviteText(),
		MaxPartySize:   models.MaxPartySize,
		Wedding:        h.cfg.Wedding,
	})
}

type rsvpRequest struct {
	IsAttending *bool `json:"is_attending" validate:"required"`
	GuestCount  int   `json:"guest_count" validate:"gte=0"`
}

type rsvpResponse struct {
	OK          bool   `json:"ok"`
	IsAttending bool   `json:"is_attending"`
	GuestCount  int    `json:"guest_count"`
	Message     string `json:"message"`
}

// SubmitRSVP handles POST /api/rsvp/:code
func (h *Handler) SubmitRSVP(c *fiber.Ctx) error {
	var req rsvpRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	rsvp, err := h.guests.SubmitRSVP(c.Params("code"), req.IsAttending, req.GuestCount)
	if err != nil {
		return err
	}

	return c.JSON(rsvpResponse{
		OK:          true,
		IsAttending: rsvp.IsAttending,
		GuestCount:  rsvp.GuestCount,
		Message:     h.rsvpMessage(rsvp),
	})
}

func (h *Handler) rsvpMessage(rsvp models.RSVP) string {
	w := h.cfg.Wedding
	if rsvp.IsAttending {
		return fmt.Sprintf("%s %s\n您已确认%d人参加。", w.Couple(), w.RSVPThankYou, rsvp.GuestCount)
	}
	return w.RSVPDeclineText
}

// HandleWhatsAppMessage turns a chat reply from an invited number into an
// RSVP. Messages from unknown numbers and chatter that is not an answer
// are ignored.
func (h *Handler) HandleWhatsAppMessage(msg *events.Message) error {
	if msg.Message == nil {
		return nil
	}
	text := msg.Message.GetConversation()
	if text == "" {
		text = msg.Message.GetExtendedTextMessage().GetText()
	}
	return h.HandleReply(context.Background(), msg.Info.Sender.User, text)
}

// HandleReply records the RSVP contained in text for the guest whose
// invitation was delivered to phone, then confirms over chat.
func (h *Handler) HandleReply(ctx context.Context, phone, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	phone = whatsapp.NormalizePhoneNumber(phone, h.cfg.WhatsAppCountryCode)

	g, ok := h.guests.FindByPhone(phone)
	if !ok {
		return nil
	}
	reply, ok := whatsapp.ParseReply(text)
	if !ok {
		return nil
	}

	attending := reply.Attending
	rsvp, err := h.guests.SubmitRSVP(g.Code, &attending, reply.GuestCount)
	if err != nil {
		return fmt.Errorf("failed to update RSVP: %w", err)
	}
	h.log.Info().Str("code", g.Code).Str("phone", phone).Bool("attending", rsvp.IsAttending).Msg("RSVP received over WhatsApp")

	if h.messenger == nil {
		return nil
	}
	if err := h.messenger.SendMessage(ctx, phone, h.rsvpMessage(rsvp)); err != nil {
		return fmt.Errorf("failed to send confirmation: %w", err)
	}
	return nil
}
