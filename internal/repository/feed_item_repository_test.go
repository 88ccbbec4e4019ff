package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/halknowsaguy/api/internal/models"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var feedItemColumns = []string{"id", "platform", "external_id", "content", "author_name", "author_handle",
	"media_urls", "original_url", "posted_at", "is_hidden", "created_at"}

func newFeedItem() *models.FeedItem {
	return &models.FeedItem{
		Platform:     "twitter",
		ExternalID:   "1001",
		Content:      "hello",
		AuthorName:   "Hal",
		AuthorHandle: "halknows",
		MediaURLs:    `["https://img/1.jpg"]`,
		OriginalURL:  "https://twitter.com/halknows/status/1001",
		PostedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestFeedItemCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFeedItemRepository(db)
	item := newFeedItem()

	mock.ExpectQuery(`(?s)INSERT INTO feed_items`).
		WithArgs("twitter", "1001", "hello", "Hal", "halknows", `["https://img/1.jpg"]`,
			"https://twitter.com/halknows/status/1001", item.PostedAt, false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))

	id, err := repo.Create(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedItemCreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFeedItemRepository(db)

	mock.ExpectQuery(`INSERT INTO feed_items`).WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Create(context.Background(), newFeedItem())
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestFeedItemCreateFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFeedItemRepository(db)

	mock.ExpectQuery(`INSERT INTO feed_items`).WillReturnError(errors.New("disk full"))

	_, err := repo.Create(context.Background(), newFeedItem())
	assert.ErrorContains(t, err, "disk full")
	assert.NotErrorIs(t, err, ErrDuplicate)
}

func TestFeedItemGetByExternalID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFeedItemRepository(db)
	now := time.Now()

	mock.ExpectQuery(`(?s)FROM feed_items\s+WHERE platform = \$1 AND external_id = \$2`).
		WithArgs("twitter", "1001").
		WillReturnRows(sqlmock.NewRows(feedItemColumns).
			AddRow(int64(1), "twitter", "1001", "hello", "Hal", "halknows", "[]", "u", now, false, now))

	item, err := repo.GetByExternalID(context.Background(), "twitter", "1001")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "1001", item.ExternalID)

	mock.ExpectQuery(`FROM feed_items`).WithArgs("twitter", "404").WillReturnError(sql.ErrNoRows)

	item, err = repo.GetByExternalID(context.Background(), "twitter", "404")
	assert.NoError(t, err)
	assert.Nil(t, item)
}

func TestFeedItemCount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFeedItemRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM feed_items`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(7)))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func TestFeedItemListVisible(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFeedItemRepository(db)
	now := time.Now()

	mock.ExpectQuery(`(?s)WHERE is_hidden = FALSE\s+ORDER BY posted_at DESC`).
		WillReturnRows(sqlmock.NewRows(feedItemColumns).
			AddRow(int64(2), "twitter", "2", "newer", "Hal", "halknows", "[]", "u2", now, false, now).
			AddRow(int64(1), "twitter", "1", "older", "Hal", "halknows", "[]", "u1", now.Add(-time.Hour), false, now))

	items, err := repo.ListVisible(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "newer", items[0].Content)
}
