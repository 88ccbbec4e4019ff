package service

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	config "github.com/halknowsaguy/api/configs"
	"github.com/halknowsaguy/api/pkg/utils"
)

const (
	adminRole       = "admin"
	SessionDuration = 24 * time.Hour
)

var ErrInvalidPassword = errors.New("invalid password")

// AuthService guards the admin dashboard with the shared admin password.
type AuthService interface {
	Login(password string) (string, error)
	Verify(sessionToken string) bool
}

type authService struct {
	cfg config.Config
}

func NewAuthService(cfg config.Config) AuthService {
	return &authService{cfg: cfg}
}

// Login returns a signed session token when password matches.
func (s *authService) Login(password string) (string, error) {
	if s.cfg.AdminPassword == "" || subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.AdminPassword)) != 1 {
		slog.Info("rejected admin login")
		return "", ErrInvalidPassword
	}

	return utils.GenerateSessionToken(s.cfg.SecretKey, adminRole, SessionDuration)
}

func (s *authService) Verify(sessionToken string) bool {
	if sessionToken == "" {
		return false
	}
	claims, err := utils.ValidateSessionToken(s.cfg.SecretKey, sessionToken)
	if err != nil {
		return false
	}
	return claims.Role == adminRole
}
