package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/halknowsaguy/api/internal/models"
)

type SocialAccountRepository interface {
	Upsert(ctx context.Context, sa *models.SocialAccount) (int64, error)
	GetByPlatform(ctx context.Context, platform string) (*models.SocialAccount, error)
	SetToken(ctx context.Context, platform, oldAccessToken string, sa *models.SocialAccount) error
}

type socialAccountRepository struct {
	db *sql.DB
}

func NewSocialAccountRepository(db *sql.DB) SocialAccountRepository {
	return &socialAccountRepository{db: db}
}

// Upsert writes the account for sa.Platform, replacing any previous
// connection for that platform.
func (r *socialAccountRepository) Upsert(ctx context.Context, sa *models.SocialAccount) (int64, error) {
	query := `
		INSERT INTO social_accounts(
			platform,
			account_id,
			account_name,
			account_username,
			access_token,
			refresh_token,
			token_expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (platform) DO UPDATE SET
			account_id = EXCLUDED.account_id,
			account_name = EXCLUDED.account_name,
			account_username = EXCLUDED.account_username,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expires_at = EXCLUDED.token_expires_at,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		sa.Platform,
		sa.AccountID,
		sa.AccountName,
		sa.AccountUsername,
		sa.AccessToken,
		sa.RefreshToken,
		sa.TokenExpiresAt,
	).Scan(&id)
	if err != nil {
		slog.Error("upsert social account", "platform", sa.Platform, "error", err)
		return 0, fmt.Errorf("upsert social account: %w", err)
	}

	return id, nil
}

func (r *socialAccountRepository) GetByPlatform(ctx context.Context, platform string) (*models.SocialAccount, error) {
	query := `
		SELECT id, platform, account_id, account_name, account_username,
			access_token, refresh_token, token_expires_at, created_at, updated_at
		FROM social_accounts
		WHERE platform = $1`

	var sa models.SocialAccount
	err := r.db.QueryRowContext(ctx, query, platform).Scan(&sa.ID, &sa.Platform, &sa.AccountID,
		&sa.AccountName, &sa.AccountUsername, &sa.AccessToken, &sa.RefreshToken,
		&sa.TokenExpiresAt, &sa.CreatedAt, &sa.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Error("get social account", "platform", platform, "error", err)
		return nil, fmt.Errorf("get social account: %w", err)
	}

	return &sa, nil
}

// SetToken swaps in refreshed credentials only while the row still holds
// oldAccessToken. ErrNoRowsAffected means another request already replaced it.
func (r *socialAccountRepository) SetToken(ctx context.Context, platform, oldAccessToken string, sa *models.SocialAccount) error {
	query := `
		UPDATE social_accounts
		SET
			access_token = COALESCE(NULLIF($3, ''), access_token),
			refresh_token = COALESCE(NULLIF($4, ''), refresh_token),
			token_expires_at = $5,
			updated_at = CURRENT_TIMESTAMP
		WHERE platform = $1 AND access_token = $2
	`
	result, err := r.db.ExecContext(ctx, query, platform, oldAccessToken, sa.AccessToken, sa.RefreshToken, sa.TokenExpiresAt)
	if err != nil {
		slog.Error("set social account token", "platform", platform, "error", err)
		return fmt.Errorf("set social account token: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set social account token: %w", err)
	}
	if affected != 1 {
		return ErrNoRowsAffected
	}

	return nil
}
