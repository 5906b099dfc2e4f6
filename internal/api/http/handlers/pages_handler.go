package handlers

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/haras-web/pkg/util"
)

const notFoundPage = `<!DOCTYPE html>
<html lang="ar" dir="rtl">
<head><meta charset="utf-8"><title>404</title></head>
<body style="background:#0b0f19">
  <div style="text-align:center;margin-top:100px;color:#fff;font-family:'Tajawal',sans-serif;">
    <h1>🛑 الصفحة غير موجودة</h1>
    <p><a href="/login" style="color:#4d90fe;">العودة إلى الصفحة الرئيسية</a></p>
  </div>
</body>
</html>`

// PagesHandler serves the marketing pages from the public directory.
type PagesHandler struct {
	publicDir string
}

func NewPagesHandler(publicDir string) *PagesHandler {
	return &PagesHandler{publicDir: publicDir}
}

func (h *PagesHandler) Index(c *fiber.Ctx) error {
	return c.SendFile(filepath.Join(h.publicDir, "index.html"))
}

func (h *PagesHandler) Pricing(c *fiber.Ctx) error {
	return c.SendFile(filepath.Join(h.publicDir, "pricing.html"))
}

// NotFound answers unknown routes: JSON under /api, an HTML page elsewhere.
func (h *PagesHandler) NotFound(c *fiber.Ctx) error {
	if strings.HasPrefix(c.Path(), "/api/") || c.Path() == "/api" {
		return apperrors.NewNotFound(apperrors.MsgNotFound)
	}
	c.Type("html", "utf-8")
	return c.Status(fiber.StatusNotFound).SendString(notFoundPage)
}
