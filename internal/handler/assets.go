package handler

import (
	"bytes"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"wedding-invitation/internal/calendar"
)

// Music handles GET /music/*
func (h *Handler) Music(c *fiber.Ctx) error {
	return h.serveAsset(c, h.cfg.MusicDir, filepath.Join(h.cfg.AssetDir, "music"))
}

// Photo handles GET /photo/*
func (h *Handler) Photo(c *fiber.Ctx) error {
	return h.serveAsset(c, h.cfg.PhotoDir, filepath.Join(h.cfg.AssetDir, "photo"))
}

// serveAsset looks the requested file up in each dir in turn, so files
// dropped into the data volume shadow the bundled defaults.
func (h *Handler) serveAsset(c *fiber.Ctx, dirs ...string) error {
	name, ok := cleanAssetPath(c.Params("*"))
	if !ok {
		return fiber.ErrNotFound
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		p := filepath.Join(dir, filepath.FromSlash(name))
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		return c.SendFile(p)
	}
	return fiber.ErrNotFound
}

// cleanAssetPath rejects anything that would escape the asset directory.
func cleanAssetPath(raw string) (string, bool) {
	if raw == "" || strings.Contains(raw, "\\") {
		return "", false
	}
	name := path.Clean("/" + raw)[1:]
	if name == "" || name != strings.TrimPrefix(raw, "/") {
		return "", false
	}
	return name, true
}

// Calendar handles GET /calendar.ics
func (h *Handler) Calendar(c *fiber.Ctx) error {
	w := h.cfg.Wedding

	location := w.Venue
	if w.Address != "" {
		location += ", " + w.Address
	}
	ev := calendar.Event{
		UID:         "wedding-" + w.Start.UTC().Format("20060102") + "@" + c.Hostname(),
		Summary:     w.Couple() + " 婚礼",
		Location:    location,
		Description: w.RenderInviteText(),
		Start:       w.Start,
		End:         w.Start.Add(w.Duration),
	}

	var buf bytes.Buffer
	if err := calendar.Write(&buf, ev); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="wedding.ics"`)
	return c.Send(buf.Bytes())
}
