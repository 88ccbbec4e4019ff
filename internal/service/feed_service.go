package service

import (
	"context"

	"github.com/halknowsaguy/api/internal/models"
	"github.com/halknowsaguy/api/internal/repository"
	"github.com/halknowsaguy/api/internal/transfer"
	"github.com/samber/lo"
)

type FeedService interface {
	ListPublic(ctx context.Context) ([]transfer.FeedItemResponse, error)
}

type feedService struct {
	fi repository.FeedItemRepository
}

func NewFeedService(fi repository.FeedItemRepository) FeedService {
	return &feedService{fi: fi}
}

// ListPublic returns visible feed items, newest first.
func (s *feedService) ListPublic(ctx context.Context) ([]transfer.FeedItemResponse, error) {
	items, err := s.fi.ListVisible(ctx)
	if err != nil {
		return nil, storageError("list feed items", err)
	}

	return lo.Map(items, func(item *models.FeedItem, _ int) transfer.FeedItemResponse {
		return transfer.FeedItemResponse{
			ID:           item.ID,
			Platform:     item.Platform,
			ExternalID:   item.ExternalID,
			Content:      item.Content,
			AuthorName:   item.AuthorName,
			AuthorHandle: item.AuthorHandle,
			MediaURLs:    item.DecodeMediaURLs(),
			OriginalURL:  item.OriginalURL,
			PostedAt:     item.PostedAt,
		}
	}), nil
}
