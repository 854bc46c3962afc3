package handler

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"wedding-invitation/internal/config"
	"wedding-invitation/internal/guest"
	"wedding-invitation/internal/models"
	"wedding-invitation/internal/storage"
	"wedding-invitation/internal/whatsapp"
)

//go:embed templates/*.html
var templateFS embed.FS

// ThemeStore loads and saves the invitation theme. *storage.SettingsStore satisfies it.
type ThemeStore interface {
	Load() models.Theme
	Save(theme models.Theme) error
}

// Messenger delivers chat messages to guests. *whatsapp.Service satisfies it.
type Messenger interface {
	SendInvitation(ctx context.Context, phoneNumber string, inv whatsapp.Invitation) error
	SendMessage(ctx context.Context, phoneNumber, message string) error
}

// Deps are the collaborators a Handler needs. Messenger may be nil when
// WhatsApp delivery is disabled.
type Deps struct {
	Config    *config.Config
	Guests    *guest.Manager
	Themes    ThemeStore
	Messenger Messenger
	Log       zerolog.Logger
}

// Handler serves the invitation site and the admin API
type Handler struct {
	cfg       *config.Config
	guests    *guest.Manager
	themes    ThemeStore
	messenger Messenger
	log       zerolog.Logger
	tmpl      *template.Template
	validate  *validator.Validate
}

// New creates a handler and parses the page templates.
func New(deps Deps) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Handler{
		cfg:       deps.Config,
		guests:    deps.Guests,
		themes:    deps.Themes,
		messenger: deps.Messenger,
		log:       deps.Log.With().Str("component", "http").Logger(),
		tmpl:      tmpl,
		validate:  validator.New(),
	}, nil
}

func (h *Handler) render(c *fiber.Ctx, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}

// parseBody decodes the JSON body into v and runs struct validation.
// Failures come back as *models.ValidationError.
func (h *Handler) parseBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return &models.ValidationError{Message: "invalid JSON body"}
	}
	if err := h.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return models.NewValidationError(jsonFieldName(fe.Field()), "failed %q validation", fe.Tag())
		}
		return &models.ValidationError{Message: err.Error()}
	}
	return nil
}

func jsonFieldName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// inviteURL builds the public link for code, from BASE_URL when set and
// from the request's (possibly forwarded) scheme and host otherwise.
func (h *Handler) inviteURL(c *fiber.Ctx, code string) string {
	base := h.cfg.BaseURL
	if base == "" {
		base = c.BaseURL()
	}
	return base + "/i/" + code
}

// ErrorHandler maps domain errors to HTTP responses. API routes get
// {"error": "..."} bodies, pages get plain text.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "internal server error"

		var (
			verr  *models.ValidationError
			nf    *models.NotFoundError
			fatal *storage.StorageFatalError
			ferr  *fiber.Error
		)
		switch {
		case errors.As(err, &verr):
			status, message = fiber.StatusBadRequest, verr.Error()
		case errors.As(err, &nf):
			status, message = fiber.StatusNotFound, "guest not found"
		case errors.Is(err, storage.ErrUnavailable):
			status, message = fiber.StatusServiceUnavailable, "guest list temporarily unavailable, please retry"
		case errors.As(err, &fatal):
			status, message = fiber.StatusInternalServerError, "failed to save changes"
		case errors.As(err, &ferr):
			status, message = ferr.Code, ferr.Message
		}

		if status >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Int("status", status).Msg("Request failed")
		}

		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(status).JSON(fiber.Map{"error": message})
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(status).SendString(message)
	}
}
