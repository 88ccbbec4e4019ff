package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/halknowsaguy/api/configs"
	"github.com/halknowsaguy/api/internal/service"
	"github.com/halknowsaguy/api/internal/transfer"
)

const (
	StateCookie    = "twitter_state"
	VerifierCookie = "twitter_code_verifier"
)

type SocialHandler struct {
	tokens   service.TokenService
	twitter  service.TwitterService
	importer service.ImportService
	status   service.StatusService
	cfg      config.Config
}

func NewSocialHandler(tokens service.TokenService, twitter service.TwitterService, importer service.ImportService, status service.StatusService, cfg config.Config) *SocialHandler {
	return &SocialHandler{
		tokens:   tokens,
		twitter:  twitter,
		importer: importer,
		status:   status,
		cfg:      cfg,
	}
}

func (h *SocialHandler) TwitterLogin(c *fiber.Ctx) error {
	req, err := h.tokens.BeginAuthorization(c.UserContext())
	if errors.Is(err, service.ErrNotConfigured) {
		slog.Error("twitter login requested without client credentials")
		return errorJSON(c, fiber.StatusInternalServerError, "Config Error")
	}
	if err != nil {
		slog.Error("failed to start twitter authorization", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to start Twitter login")
	}

	setCookie(c, h.cfg, StateCookie, req.State, time.Time{})
	setCookie(c, h.cfg, VerifierCookie, req.StateToken, time.Time{})

	return c.Redirect(req.URL, fiber.StatusTemporaryRedirect)
}

func (h *SocialHandler) TwitterCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	storedState := c.Cookies(StateCookie)
	stateToken := c.Cookies(VerifierCookie)

	clearCookie(c, h.cfg, StateCookie)
	clearCookie(c, h.cfg, VerifierCookie)

	_, err := h.tokens.CompleteAuthorization(c.UserContext(), code, state, storedState, stateToken)
	if err != nil {
		var exchangeErr *service.ProviderExchangeError
		switch {
		case errors.Is(err, service.ErrInvalidState):
			return errorJSON(c, fiber.StatusBadRequest, "Invalid State or Code")
		case errors.Is(err, service.ErrNotConfigured):
			return errorJSON(c, fiber.StatusInternalServerError, "Config Error")
		case errors.As(err, &exchangeErr):
			return errorJSON(c, fiber.StatusInternalServerError, "Login Failed: "+exchangeErr.Message)
		default:
			slog.Error("twitter callback failed", "error", err)
			return errorJSON(c, fiber.StatusInternalServerError, "Login Failed: unable to save account")
		}
	}

	redirectURL := fmt.Sprintf("%s/admin?tab=social", h.cfg.FrontendURL)
	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

func (h *SocialHandler) FetchTwitter(c *fiber.Ctx) error {
	posts, err := h.twitter.FetchRecentPosts(c.UserContext())
	if err != nil {
		var rateErr *service.RateLimitedError
		var fetchErr *service.FetchFailedError
		switch {
		case errors.Is(err, service.ErrNotConnected):
			return errorJSON(c, fiber.StatusBadRequest, "Twitter not connected or expired")
		case errors.As(err, &rateErr):
			return errorJSON(c, fiber.StatusTooManyRequests, rateErr.Error())
		case errors.As(err, &fetchErr):
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":  "Failed to fetch tweets",
				"detail": fetchErr.Message,
			})
		default:
			slog.Error("fetch tweets failed", "error", err)
			return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch tweets")
		}
	}
	if posts == nil {
		posts = []transfer.FetchedPost{}
	}

	return c.JSON(transfer.FetchResponse{Tweets: posts})
}

func (h *SocialHandler) Import(c *fiber.Ctx) error {
	var req transfer.ImportRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid data")
	}

	count, err := h.importer.ImportSelected(c.UserContext(), req.Items)
	if errors.Is(err, service.ErrInvalidInput) {
		slog.Info("rejected import payload", "error", err)
		return errorJSON(c, fiber.StatusBadRequest, "Invalid data")
	}
	if err != nil {
		slog.Error("import failed", "error", err, "created", count)
		return errorJSON(c, fiber.StatusInternalServerError, "Import failed")
	}

	return c.JSON(transfer.ImportResponse{Success: true, Count: count})
}

func (h *SocialHandler) Status(c *fiber.Ctx) error {
	status, err := h.status.GetStatus(c.UserContext())
	if err != nil {
		slog.Error("failed to load social status", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to load status")
	}

	return c.JSON(status)
}
