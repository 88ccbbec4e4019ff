package service

import (
	"context"

	"github.com/halknowsaguy/api/internal/models"
	"github.com/halknowsaguy/api/internal/repository"
	"github.com/halknowsaguy/api/internal/transfer"
)

type StatusService interface {
	GetStatus(ctx context.Context) (*transfer.StatusResponse, error)
}

type statusService struct {
	sa repository.SocialAccountRepository
	fi repository.FeedItemRepository
}

func NewStatusService(sa repository.SocialAccountRepository, fi repository.FeedItemRepository) StatusService {
	return &statusService{sa: sa, fi: fi}
}

func (s *statusService) GetStatus(ctx context.Context) (*transfer.StatusResponse, error) {
	account, err := s.sa.GetByPlatform(ctx, models.PlatformTwitter)
	if err != nil {
		return nil, storageError("load twitter account", err)
	}

	count, err := s.fi.Count(ctx)
	if err != nil {
		return nil, storageError("count feed items", err)
	}

	status := &transfer.StatusResponse{Stats: transfer.ImportStats{ImportedCount: count}}
	if account != nil {
		status.Twitter = transfer.PlatformStatus{Connected: true, Username: account.AccountUsername}
	}
	return status, nil
}
