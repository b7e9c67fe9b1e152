package brandsite

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

func (a *App) handleAdminLoginPage(c echo.Context) error {
	if _, ok := SessionUser(c); ok {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return Render(c, a.Views.AdminLogin(false, safeRedirect(c.QueryParam("redirect")), CsrfToken(c)))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	if !a.loginLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c, "admin"); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, safeRedirect(c.FormValue("redirect")))
	}
	return Render(c, a.Views.AdminLogin(true, safeRedirect(c.FormValue("redirect")), CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// safeRedirect restricts post-login redirects to local admin paths.
func safeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return "/admin/"
	}
	return target
}

func (a *App) handleAdminDashboard(c echo.Context) error {
	blocks, err := a.Store.ListContentBlocks()
	if err != nil {
		return err
	}
	carousels, err := a.Store.ListCarousels()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(blocks, carousels, c.QueryParam("msg"), CsrfToken(c)))
}

func (a *App) handleAdminCarouselPage(c echo.Context) error {
	car, err := a.Store.GetCarouselBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "carousel not found")
		}
		return err
	}
	return Render(c, a.Views.AdminCarousel(car, CsrfToken(c)))
}

func (a *App) handleAdminImagesPage(c echo.Context) error {
	unused, err := a.unusedImages()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminImages(unused, CsrfToken(c)))
}

// --- content block API ---

func (a *App) handleContentList(c echo.Context) error {
	blocks, err := a.Store.ListContentBlocks()
	if err != nil {
		return err
	}
	if blocks == nil {
		blocks = []ContentBlock{}
	}
	return c.JSON(http.StatusOK, map[string]any{"blocks": blocks})
}

func (a *App) handleContentGet(c echo.Context) error {
	block, err := a.Store.GetContentBlock(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "content block not found"})
		}
		return err
	}
	return c.JSON(http.StatusOK, block)
}

// handleContentUpdate persists one field of one content block. Last write
// wins; there is no concurrency token.
func (a *App) handleContentUpdate(c echo.Context) error {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	slug := c.Param("slug")
	if err := a.Store.UpdateContentBlock(slug, req.Content); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "content block not found"})
		}
		return err
	}
	a.Cache.Invalidate()
	block, err := a.Store.GetContentBlock(slug)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "block": block})
}
