package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/halknowsaguy/api/configs"
)

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

// setCookie writes an http-only cookie scoped to the whole site. A zero
// expires makes it a session cookie.
func setCookie(c *fiber.Ctx, cfg config.Config, name, value string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:        name,
		Value:       value,
		Path:        "/",
		HTTPOnly:    true,
		Secure:      cfg.IsProduction(),
		SameSite:    fiber.CookieSameSiteLaxMode,
		Expires:     expires,
		SessionOnly: expires.IsZero(),
	})
}

func clearCookie(c *fiber.Ctx, cfg config.Config, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Unix(0, 0),
	})
}
