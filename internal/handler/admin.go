package handler

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"wedding-invitation/internal/guest"
	"wedding-invitation/internal/models"
)

const (
	sessionCookie = "admin_session"
	sessionTTL    = 12 * time.Hour
	adminSubject  = "admin"
)

type loginPage struct {
	Error string
}

// AdminLogin handles GET /admin
func (h *Handler) AdminLogin(c *fiber.Ctx) error {
	if h.validSession(c) {
		return c.Redirect("/admin/dashboard")
	}
	return h.render(c, fiber.StatusOK, "admin_login.html", loginPage{})
}

// AdminLoginSubmit handles POST /admin with a form-encoded password.
func (h *Handler) AdminLoginSubmit(c *fiber.Ctx) error {
	if !checkPassword(h.cfg.AdminPassword, c.FormValue("password")) {
		h.log.Warn().Str("ip", c.IP()).Msg("Failed admin login")
		return h.render(c, fiber.StatusUnauthorized, "admin_login.html", loginPage{Error: "密码错误，请重试"})
	}

	token, err := h.issueSession(time.Now())
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(sessionTTL),
		HTTPOnly: true,
		Secure:   c.Protocol() == "https",
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect("/admin/dashboard")
}

// AdminLogout handles GET /admin/logout
func (h *Handler) AdminLogout(c *fiber.Ctx) error {
	c.ClearCookie(sessionCookie)
	return c.Redirect("/admin")
}

// RequireAdmin rejects requests without a valid session. Pages redirect to
// the login form, API calls get 401.
func (h *Handler) RequireAdmin(c *fiber.Ctx) error {
	if h.validSession(c) {
		return c.Next()
	}
	if strings.HasPrefix(c.Path(), "/api/") {
		return fiber.NewError(fiber.StatusUnauthorized, "admin login required")
	}
	return c.Redirect("/admin")
}

func (h *Handler) issueSession(now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.cfg.SecretKey))
}

func (h *Handler) validSession(c *fiber.Ctx) bool {
	raw := strings.TrimSpace(c.Cookies(sessionCookie))
	if raw == "" {
		return false
	}

	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(h.cfg.SecretKey), nil
	})
	if err != nil || !tok.Valid {
		return false
	}
	return claims.Subject == adminSubject
}

// checkPassword compares against a bcrypt hash when the configured value
// looks like one, and in constant time against the plain value otherwise.
func checkPassword(configured, given string) bool {
	if given == "" {
		return false
	}
	if strings.HasPrefix(configured, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(given)) == 1
}

type dashboardRow struct {
	models.Guest
	URL string
}

type dashboardPage struct {
	Guests   []dashboardRow
	Stats    guest.Stats
	Theme    models.Theme
	Themes   []models.Theme
	Couple   string
	Filter   guest.Filter
	Filters  []guest.Filter
	WhatsApp bool
}

// AdminDashboard handles GET /admin/dashboard
func (h *Handler) AdminDashboard(c *fiber.Ctx) error {
	filter, err := guest.ParseFilter(c.Query("filter"))
	if err != nil {
		return err
	}
	list, stats := h.guests.Overview(filter)

	rows := make([]dashboardRow, 0, len(list))
	for _, g := range list {
		rows = append(rows, dashboardRow{Guest: g, URL: h.inviteURL(c, g.Code)})
	}

	return h.render(c, fiber.StatusOK, "admin_dashboard.html", dashboardPage{
		Guests: rows,
		Stats:  stats,
		Theme:  h.themes.Load(),
		Themes: models.Themes,
		Couple: h.cfg.Wedding.Couple(),
		Filter: filter,
		Filters: []guest.Filter{
			guest.FilterAll, guest.FilterReplied, guest.FilterAttending,
			guest.FilterNotAttending, guest.FilterPending, guest.FilterCeremony,
		},
		WhatsApp: h.messenger != nil,
	})
}
