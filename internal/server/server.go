// Package server assembles the fiber application: middleware stack and the
// route table for guest pages, admin pages and the JSON API.
package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"wedding-invitation/internal/handler"
)

// New builds the app with all routes registered on h.
func New(h *handler.Handler, log zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "wedding-invitation",
		DisableStartupMessage: true,
		ErrorHandler:          handler.ErrorHandler(log),
		ProxyHeader:           fiber.HeaderXForwardedFor,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           90 * time.Second,
	})

	app.Use(h.RequestLogger)
	app.Use(recover.New())
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())

	app.Get("/healthz", h.Health)

	// Guest facing
	app.Get("/i/:code", h.Invitation)
	app.Post("/api/rsvp/:code", h.SubmitRSVP)
	app.Get("/calendar.ics", h.Calendar)
	app.Get("/music/*", h.Music)
	app.Get("/photo/*", h.Photo)

	// Admin pages
	app.Get("/admin", h.AdminLogin)
	app.Post("/admin", h.AdminLoginSubmit)
	app.Get("/admin/logout", h.AdminLogout)
	app.Get("/admin/dashboard", h.RequireAdmin, h.AdminDashboard)

	// Admin API
	api := app.Group("/api", h.RequireAdmin)
	api.Get("/guests", h.ListGuests)
	api.Post("/guests", h.CreateGuest)
	api.Patch("/guests/:code", h.UpdateGuest)
	api.Delete("/guests/:code", h.DeleteGuest)
	api.Get("/guests/:code/qr", h.GuestQR)
	api.Post("/guests/:code/whatsapp", h.SendInvitation)
	api.Get("/theme", h.GetTheme)
	api.Put("/theme", h.SetTheme)

	// Only personalised links are served; "/" included.
	app.Use(h.NotFound)

	return app
}
