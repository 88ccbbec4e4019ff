package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/halknowsaguy/api/configs"
	"github.com/halknowsaguy/api/internal/models"
	"github.com/halknowsaguy/api/internal/repository"
	"github.com/halknowsaguy/api/internal/transfer"
	"github.com/samber/lo"
)

const timelinePageSize = 20

type TwitterService interface {
	FetchRecentPosts(ctx context.Context) ([]transfer.FetchedPost, error)
}

type twitterService struct {
	cfg        config.Config
	tokens     TokenService
	sa         repository.SocialAccountRepository
	httpClient *http.Client
}

func NewTwitterService(cfg config.Config, tokens TokenService, sa repository.SocialAccountRepository) TwitterService {
	return &twitterService{
		cfg:        cfg,
		tokens:     tokens,
		sa:         sa,
		httpClient: &http.Client{Timeout: cfg.ProviderTimeout},
	}
}

// FetchRecentPosts returns the latest page of the connected account's
// posts. Nothing is persisted.
func (s *twitterService) FetchRecentPosts(ctx context.Context) ([]transfer.FetchedPost, error) {
	token, err := s.tokens.GetValidAccessToken(ctx)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, ErrNotConnected
	}

	account, err := s.sa.GetByPlatform(ctx, models.PlatformTwitter)
	if err != nil {
		return nil, storageError("load twitter account", err)
	}
	if account == nil || account.AccountID == "" {
		return nil, ErrNotConnected
	}

	var timeline transfer.TwitterTimelineResponse
	if err := getTwitterJSON(ctx, s.httpClient, s.timelineURL(account.AccountID), token.AccessToken, &timeline); err != nil {
		return nil, mapFetchError(err)
	}

	return normalizeTimeline(timeline), nil
}

func (s *twitterService) timelineURL(userID string) string {
	params := url.Values{}
	params.Set("max_results", fmt.Sprintf("%d", timelinePageSize))
	params.Set("tweet.fields", "created_at,entities,text,author_id")
	params.Set("media.fields", "url,preview_image_url,type")
	params.Set("expansions", "attachments.media_keys,author_id")
	params.Set("user.fields", "name,username,profile_image_url")

	return fmt.Sprintf("%s/2/users/%s/tweets?%s", s.cfg.Twitter.APIURL, url.PathEscape(userID), params.Encode())
}

func mapFetchError(err error) error {
	var apiErr *twitterAPIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests {
			slog.Info("twitter rate limit hit", "reset", apiErr.Reset)
			return &RateLimitedError{Reset: apiErr.Reset}
		}
		slog.Error("twitter timeline request failed", "status", apiErr.StatusCode, "message", apiErr.Message)
		return &FetchFailedError{Message: apiErr.Message, Err: err}
	}

	slog.Error("twitter timeline request failed", "error", err)
	return &FetchFailedError{Message: err.Error(), Err: err}
}

// normalizeTimeline converts the provider payload into FetchedPosts.
// Entries without an id or a parseable timestamp are dropped.
func normalizeTimeline(timeline transfer.TwitterTimelineResponse) []transfer.FetchedPost {
	media := lo.SliceToMap(timeline.Includes.Media, func(m transfer.TwitterMedia) (string, transfer.TwitterMedia) {
		return m.MediaKey, m
	})
	users := lo.SliceToMap(timeline.Includes.Users, func(u transfer.TwitterUser) (string, transfer.TwitterUser) {
		return u.ID, u
	})

	posts := lo.FilterMap(timeline.Data, func(tweet transfer.TwitterTweet, _ int) (transfer.FetchedPost, bool) {
		if strings.TrimSpace(tweet.ID) == "" {
			slog.Warn("dropping tweet without id")
			return transfer.FetchedPost{}, false
		}
		createdAt, err := time.Parse(time.RFC3339, tweet.CreatedAt)
		if err != nil {
			slog.Warn("dropping tweet with malformed created_at", "id", tweet.ID, "created_at", tweet.CreatedAt)
			return transfer.FetchedPost{}, false
		}

		author := transfer.FetchedAuthor{Name: "Unknown", Username: "unknown"}
		if u, ok := users[tweet.AuthorID]; ok {
			author = transfer.FetchedAuthor{
				Name:            lo.Ternary(u.Name != "", u.Name, "Unknown"),
				Username:        lo.Ternary(u.Username != "", u.Username, "unknown"),
				ProfileImageURL: u.ProfileImageURL,
			}
		}

		var keys []string
		if tweet.Attachments != nil {
			keys = tweet.Attachments.MediaKeys
		}
		mediaURLs := lo.FilterMap(keys, func(key string, _ int) (string, bool) {
			m, ok := media[key]
			if !ok {
				return "", false
			}
			u := lo.Ternary(m.URL != "", m.URL, m.PreviewImageURL)
			return u, u != ""
		})

		return transfer.FetchedPost{
			ID:          tweet.ID,
			Text:        tweet.Text,
			CreatedAt:   createdAt,
			Media:       mediaURLs,
			Author:      author,
			OriginalURL: fmt.Sprintf("https://twitter.com/%s/status/%s", author.Username, tweet.ID),
		}, true
	})

	return posts
}
