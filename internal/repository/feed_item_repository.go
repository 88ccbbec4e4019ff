package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/halknowsaguy/api/internal/models"
)

type FeedItemRepository interface {
	GetByExternalID(ctx context.Context, platform, externalID string) (*models.FeedItem, error)
	Create(ctx context.Context, item *models.FeedItem) (int64, error)
	Count(ctx context.Context) (int64, error)
	ListVisible(ctx context.Context) ([]*models.FeedItem, error)
}

type feedItemRepository struct {
	db *sql.DB
}

func NewFeedItemRepository(db *sql.DB) FeedItemRepository {
	return &feedItemRepository{db: db}
}

func (r *feedItemRepository) GetByExternalID(ctx context.Context, platform, externalID string) (*models.FeedItem, error) {
	query := `
		SELECT id, platform, external_id, content, author_name, author_handle,
			media_urls, original_url, posted_at, is_hidden, created_at
		FROM feed_items
		WHERE platform = $1 AND external_id = $2`

	var item models.FeedItem
	err := r.db.QueryRowContext(ctx, query, platform, externalID).Scan(&item.ID, &item.Platform,
		&item.ExternalID, &item.Content, &item.AuthorName, &item.AuthorHandle, &item.MediaURLs,
		&item.OriginalURL, &item.PostedAt, &item.IsHidden, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Error("get feed item", "platform", platform, "external_id", externalID, "error", err)
		return nil, fmt.Errorf("get feed item: %w", err)
	}

	return &item, nil
}

// Create inserts a new feed item. A (platform, external_id) collision
// returns ErrDuplicate.
func (r *feedItemRepository) Create(ctx context.Context, item *models.FeedItem) (int64, error) {
	query := `
		INSERT INTO feed_items (platform, external_id, content, author_name, author_handle,
			media_urls, original_url, posted_at, is_hidden)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, item.Platform, item.ExternalID, item.Content,
		item.AuthorName, item.AuthorHandle, item.MediaURLs, item.OriginalURL, item.PostedAt,
		item.IsHidden).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		slog.Error("create feed item", "platform", item.Platform, "external_id", item.ExternalID, "error", err)
		return 0, fmt.Errorf("create feed item: %w", err)
	}

	return id, nil
}

func (r *feedItemRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feed_items`).Scan(&count); err != nil {
		slog.Error("count feed items", "error", err)
		return 0, fmt.Errorf("count feed items: %w", err)
	}
	return count, nil
}

func (r *feedItemRepository) ListVisible(ctx context.Context) ([]*models.FeedItem, error) {
	query := `
		SELECT id, platform, external_id, content, author_name, author_handle,
			media_urls, original_url, posted_at, is_hidden, created_at
		FROM feed_items
		WHERE is_hidden = FALSE
		ORDER BY posted_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Error("list feed items", "error", err)
		return nil, fmt.Errorf("list feed items: %w", err)
	}
	defer rows.Close()

	items := []*models.FeedItem{}
	for rows.Next() {
		var item models.FeedItem
		err := rows.Scan(&item.ID, &item.Platform, &item.ExternalID, &item.Content,
			&item.AuthorName, &item.AuthorHandle, &item.MediaURLs, &item.OriginalURL,
			&item.PostedAt, &item.IsHidden, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan feed item: %w", err)
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list feed items: %w", err)
	}

	return items, nil
}
