package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/halknowsaguy/api/internal/models"
	"github.com/halknowsaguy/api/internal/repository"
	"github.com/halknowsaguy/api/internal/transfer"
)

type ImportService interface {
	ImportSelected(ctx context.Context, items []transfer.FetchedPost) (int, error)
}

type importService struct {
	fi       repository.FeedItemRepository
	validate *validator.Validate
}

func NewImportService(fi repository.FeedItemRepository, validate *validator.Validate) ImportService {
	return &importService{fi: fi, validate: validate}
}

// ImportSelected stores each post that is not in the feed yet and returns
// how many were created. Items are handled in order with no surrounding
// transaction: a failure leaves earlier items stored, and a retry skips them.
func (s *importService) ImportSelected(ctx context.Context, items []transfer.FetchedPost) (int, error) {
	if items == nil {
		return 0, ErrInvalidInput
	}
	for i := range items {
		if err := s.validate.Struct(items[i]); err != nil {
			return 0, fmt.Errorf("%w: item %d: %v", ErrInvalidInput, i, err)
		}
	}

	created := 0
	for _, item := range items {
		existing, err := s.fi.GetByExternalID(ctx, models.PlatformTwitter, item.ID)
		if err != nil {
			return created, storageError("lookup feed item", err)
		}
		if existing != nil {
			continue
		}

		mediaURLs, err := models.EncodeMediaURLs(item.Media)
		if err != nil {
			return created, fmt.Errorf("%w: item %s media: %v", ErrInvalidInput, item.ID, err)
		}

		_, err = s.fi.Create(ctx, &models.FeedItem{
			Platform:     models.PlatformTwitter,
			ExternalID:   item.ID,
			Content:      item.Text,
			AuthorName:   item.Author.Name,
			AuthorHandle: item.Author.Username,
			MediaURLs:    mediaURLs,
			OriginalURL:  item.OriginalURL,
			PostedAt:     item.CreatedAt,
			IsHidden:     false,
		})
		if errors.Is(err, repository.ErrDuplicate) {
			// A concurrent import got there first.
			continue
		}
		if err != nil {
			return created, storageError("create feed item", err)
		}
		created++
	}

	slog.Info("imported feed items", "selected", len(items), "created", created)
	return created, nil
}
