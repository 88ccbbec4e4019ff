package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStatusNotConnected(t *testing.T) {
	svc := NewStatusService(newFakeSocialAccountRepo(), newFakeFeedItemRepo())

	status, err := svc.GetStatus(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Twitter.Connected)
	assert.Empty(t, status.Twitter.Username)
	assert.Zero(t, status.Stats.ImportedCount)
}

func TestGetStatusConnected(t *testing.T) {
	accounts := newFakeSocialAccountRepo()
	seedAccount(t, accounts, "access-1", "refresh-1", time.Now().Add(time.Hour))
	feed, importer := newImportFixture()
	_, err := importer.ImportSelected(context.Background(), fetchedPosts("1", "2", "3"))
	require.NoError(t, err)

	status, err := NewStatusService(accounts, feed).GetStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Twitter.Connected)
	assert.Equal(t, "halknowsaguy", status.Twitter.Username)
	assert.Equal(t, int64(3), status.Stats.ImportedCount)
}

func TestGetStatusStorageError(t *testing.T) {
	accounts := newFakeSocialAccountRepo()
	accounts.getErr = errors.New("connection refused")

	_, err := NewStatusService(accounts, newFakeFeedItemRepo()).GetStatus(context.Background())
	assert.ErrorIs(t, err, ErrStorage)
}
