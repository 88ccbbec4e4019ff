package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	config "github.com/halknowsaguy/api/configs"
	"github.com/halknowsaguy/api/internal/service"
	"github.com/halknowsaguy/api/internal/transfer"
)

type AuthHandler struct {
	s        service.AuthService
	cfg      config.Config
	validate *validator.Validate
}

func NewAuthHandler(cfg config.Config, service service.AuthService, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{s: service, cfg: cfg, validate: validate}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req transfer.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Error processing request",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Invalid password",
		})
	}

	token, err := h.s.Login(req.Password)
	if errors.Is(err, service.ErrInvalidPassword) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Invalid password",
		})
	}
	if err != nil {
		slog.Error("failed to issue session", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Error processing request",
		})
	}

	setCookie(c, h.cfg, h.cfg.CookieName, token, time.Now().Add(service.SessionDuration))

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged in",
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	clearCookie(c, h.cfg, h.cfg.CookieName)
	return c.JSON(fiber.Map{"success": true})
}

func (h *AuthHandler) Check(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"authenticated": h.s.Verify(c.Cookies(h.cfg.CookieName)),
	})
}
