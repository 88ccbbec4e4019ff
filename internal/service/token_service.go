package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	config "github.com/halknowsaguy/api/configs"
	"github.com/halknowsaguy/api/internal/models"
	"github.com/halknowsaguy/api/internal/repository"
	"github.com/halknowsaguy/api/internal/transfer"
	"github.com/halknowsaguy/api/pkg/utils"
	"golang.org/x/oauth2"
)

const (
	// RefreshBuffer is how long before expiry a stored token is already
	// treated as expired.
	RefreshBuffer = 5 * time.Minute

	// StateTTL bounds how long an authorization attempt stays redeemable.
	StateTTL = 10 * time.Minute

	defaultTokenLifetime = 2 * time.Hour
)

var twitterScopes = []string{"tweet.read", "users.read", "offline.access"}

type TokenService interface {
	BeginAuthorization(ctx context.Context) (*transfer.AuthorizationRequest, error)
	CompleteAuthorization(ctx context.Context, code, state, stateCookie, stateToken string) (*models.SocialAccount, error)
	GetValidAccessToken(ctx context.Context) (*oauth2.Token, error)
}

type tokenService struct {
	cfg        config.Config
	sa         repository.SocialAccountRepository
	states     repository.StateRepository
	oauth      *oauth2.Config
	httpClient *http.Client
	refreshMu  sync.Mutex
	now        func() time.Time
}

func NewTokenService(cfg config.Config, sa repository.SocialAccountRepository, states repository.StateRepository) TokenService {
	return &tokenService{
		cfg:    cfg,
		sa:     sa,
		states: states,
		oauth: &oauth2.Config{
			ClientID:     cfg.Twitter.ClientID,
			ClientSecret: cfg.Twitter.ClientSecret,
			RedirectURL:  cfg.Twitter.CallbackURL,
			Scopes:       twitterScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.Twitter.AuthURL,
				TokenURL:  cfg.Twitter.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		httpClient: &http.Client{Timeout: cfg.ProviderTimeout},
		now:        time.Now,
	}
}

func (s *tokenService) BeginAuthorization(ctx context.Context) (*transfer.AuthorizationRequest, error) {
	if !s.configured() {
		return nil, ErrNotConfigured
	}

	state, err := utils.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}

	verifier := oauth2.GenerateVerifier()
	stateToken, err := utils.GenerateStateToken(s.cfg.SecretKey, state, verifier, StateTTL)
	if err != nil {
		return nil, fmt.Errorf("sign state: %w", err)
	}

	return &transfer.AuthorizationRequest{
		URL:        s.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)),
		State:      state,
		StateToken: stateToken,
	}, nil
}

func (s *tokenService) CompleteAuthorization(ctx context.Context, code, state, stateCookie, stateToken string) (*models.SocialAccount, error) {
	verifier, err := s.redeemState(ctx, code, state, stateCookie, stateToken)
	if err != nil {
		return nil, err
	}
	if !s.configured() {
		return nil, ErrNotConfigured
	}

	token, err := s.oauth.Exchange(s.providerContext(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		msg := providerMessage(err)
		slog.Error("twitter code exchange failed", "error", err, "provider_message", msg)
		return nil, &ProviderExchangeError{Message: msg, Err: err}
	}

	var me transfer.TwitterUserResponse
	if err := getTwitterJSON(ctx, s.httpClient, s.cfg.Twitter.APIURL+"/2/users/me", token.AccessToken, &me); err != nil {
		slog.Error("twitter identity lookup failed", "error", err)
		return nil, &ProviderExchangeError{Message: providerMessage(err), Err: err}
	}

	account := &models.SocialAccount{
		Platform:        models.PlatformTwitter,
		AccountID:       me.Data.ID,
		AccountName:     me.Data.Name,
		AccountUsername: me.Data.Username,
		TokenExpiresAt:  s.expiryOf(token),
	}
	if err := s.sealTokens(account, token); err != nil {
		return nil, err
	}

	id, err := s.sa.Upsert(ctx, account)
	if err != nil {
		return nil, storageError("save twitter account", err)
	}
	account.ID = id

	slog.Info("twitter account connected", "username", account.AccountUsername, "account_id", account.AccountID)
	return account, nil
}

// redeemState validates the callback against the pending attempt and marks
// the state consumed. It returns the PKCE verifier bound to the state.
func (s *tokenService) redeemState(ctx context.Context, code, state, stateCookie, stateToken string) (string, error) {
	if code == "" || state == "" || stateCookie == "" || stateToken == "" {
		return "", ErrInvalidState
	}
	if subtle.ConstantTimeCompare([]byte(state), []byte(stateCookie)) != 1 {
		return "", ErrInvalidState
	}

	claims, err := utils.ValidateStateToken(s.cfg.SecretKey, stateToken)
	if err != nil {
		slog.Info("rejected authorization state token", "error", err)
		return "", ErrInvalidState
	}
	if claims.State != state || claims.CodeVerifier == "" {
		return "", ErrInvalidState
	}

	if err := s.states.Consume(ctx, state, StateTTL); err != nil {
		if errors.Is(err, repository.ErrStateNotPending) {
			slog.Info("rejected replayed authorization state")
			return "", ErrInvalidState
		}
		return "", storageError("consume state", err)
	}

	return claims.CodeVerifier, nil
}

// GetValidAccessToken returns a token usable for at least RefreshBuffer, or
// nil when the operator has to reconnect.
func (s *tokenService) GetValidAccessToken(ctx context.Context) (*oauth2.Token, error) {
	account, err := s.sa.GetByPlatform(ctx, models.PlatformTwitter)
	if err != nil {
		return nil, storageError("load twitter account", err)
	}
	if account == nil {
		return nil, nil
	}

	if s.isFresh(account) {
		return s.openToken(account), nil
	}

	return s.refresh(ctx)
}

func (s *tokenService) refresh(ctx context.Context) (*oauth2.Token, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	// Another request may have refreshed while we waited for the lock.
	account, err := s.sa.GetByPlatform(ctx, models.PlatformTwitter)
	if err != nil {
		return nil, storageError("load twitter account", err)
	}
	if account == nil {
		return nil, nil
	}
	if s.isFresh(account) {
		return s.openToken(account), nil
	}

	refreshToken, err := utils.DecryptOptional(account.RefreshToken, []byte(s.cfg.SecretKey))
	if err != nil {
		slog.Warn("unable to open stored refresh token", "error", err)
		return nil, nil
	}
	if refreshToken == "" {
		slog.Info("twitter token expired and no refresh token is stored")
		return nil, nil
	}

	token, err := s.oauth.TokenSource(s.providerContext(ctx), &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		slog.Warn("twitter token refresh failed", "error", err, "provider_message", providerMessage(err))
		return nil, nil
	}

	updated := &models.SocialAccount{TokenExpiresAt: s.expiryOf(token)}
	if err := s.sealTokens(updated, token); err != nil {
		return nil, err
	}

	err = s.sa.SetToken(ctx, models.PlatformTwitter, account.AccessToken, updated)
	if errors.Is(err, repository.ErrNoRowsAffected) {
		// Someone else replaced the row; theirs wins.
		current, err := s.sa.GetByPlatform(ctx, models.PlatformTwitter)
		if err != nil {
			return nil, storageError("load twitter account", err)
		}
		if current == nil || !s.isFresh(current) {
			return nil, nil
		}
		return s.openToken(current), nil
	}
	if err != nil {
		return nil, storageError("save refreshed token", err)
	}

	slog.Info("twitter token refreshed", "expires_at", updated.TokenExpiresAt)
	return &oauth2.Token{
		AccessToken:  token.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: token.RefreshToken,
		Expiry:       updated.TokenExpiresAt,
	}, nil
}

func (s *tokenService) configured() bool {
	return s.oauth.ClientID != "" && s.oauth.ClientSecret != ""
}

func (s *tokenService) isFresh(account *models.SocialAccount) bool {
	return account.TokenExpiresAt.After(s.now().Add(RefreshBuffer))
}

// openToken decrypts the stored access token. A token that cannot be
// decrypted is unusable and yields nil.
func (s *tokenService) openToken(account *models.SocialAccount) *oauth2.Token {
	accessToken, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		slog.Warn("unable to open stored access token", "error", err)
		return nil
	}
	return &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		Expiry:      account.TokenExpiresAt,
	}
}

func (s *tokenService) sealTokens(account *models.SocialAccount, token *oauth2.Token) error {
	key := []byte(s.cfg.SecretKey)

	access, err := utils.Encrypt([]byte(token.AccessToken), key)
	if err != nil {
		return fmt.Errorf("encrypt access token: %w", err)
	}
	refresh, err := utils.EncryptOptional(token.RefreshToken, key)
	if err != nil {
		return fmt.Errorf("encrypt refresh token: %w", err)
	}

	account.AccessToken = access
	account.RefreshToken = refresh
	return nil
}

func (s *tokenService) expiryOf(token *oauth2.Token) time.Time {
	if token.Expiry.IsZero() {
		return s.now().Add(defaultTokenLifetime)
	}
	return token.Expiry
}

func (s *tokenService) providerContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
}

// providerMessage extracts the provider's explanation from an exchange or
// API error without echoing request secrets.
func providerMessage(err error) string {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		switch {
		case re.ErrorDescription != "":
			return re.ErrorDescription
		case re.ErrorCode != "":
			return re.ErrorCode
		case re.Response != nil:
			return re.Response.Status
		}
	}

	var apiErr *twitterAPIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}

	return strings.TrimSpace(err.Error())
}
