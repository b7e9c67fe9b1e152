package brandsite

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const draftCookie = "draft_mode"

// handlePreview validates the shared preview secret, flips the draft-mode
// cookie, and redirects to a local path.
func (a *App) handlePreview(c echo.Context) error {
	if a.Config.PreviewSecret == "" {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "preview is not configured"})
	}
	secret := c.QueryParam("secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(a.Config.PreviewSecret)) != 1 {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid secret"})
	}

	enable := c.QueryParam("enable") == "1" || c.QueryParam("enable") == "true"
	cookie := &http.Cookie{
		Name:     draftCookie,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	if enable {
		cookie.Value = "1"
		cookie.MaxAge = 60 * 60
	} else {
		cookie.MaxAge = -1
	}
	c.SetCookie(cookie)

	target := c.QueryParam("redirect")
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		target = "/"
	}
	return c.Redirect(http.StatusFound, target)
}

// IsDraftMode reports whether the request carries the draft-mode cookie.
func IsDraftMode(c echo.Context) bool {
	cookie, err := c.Cookie(draftCookie)
	return err == nil && cookie.Value == "1"
}
