package service

import (
	"context"
	"errors"
	"testing"

	"github.com/halknowsaguy/api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPublic(t *testing.T) {
	feed, importer := newImportFixture()
	ctx := context.Background()
	_, err := importer.ImportSelected(ctx, fetchedPosts("1", "2"))
	require.NoError(t, err)
	feed.items[models.PlatformTwitter+"/2"].IsHidden = true

	items, err := NewFeedService(feed).ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "1", items[0].ExternalID)
	assert.Equal(t, []string{"https://pbs.twimg.com/media/1.jpg"}, items[0].MediaURLs)
}

func TestListPublicStorageError(t *testing.T) {
	feed := newFakeFeedItemRepo()
	feed.listErr = errors.New("connection refused")

	_, err := NewFeedService(feed).ListPublic(context.Background())
	assert.ErrorIs(t, err, ErrStorage)
}
