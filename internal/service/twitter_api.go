package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/halknowsaguy/api/internal/transfer"
	jsoniter "github.com/json-iterator/go"
)

const maxErrorBody = 4 << 10

// twitterAPIError is a non-2xx answer from the Twitter API.
type twitterAPIError struct {
	StatusCode int
	Reset      *time.Time
	Message    string
}

func (e *twitterAPIError) Error() string {
	return fmt.Sprintf("twitter api status %d: %s", e.StatusCode, e.Message)
}

// getTwitterJSON performs an authenticated GET and decodes the JSON body
// into target.
func getTwitterJSON(ctx context.Context, client *http.Client, url, accessToken string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform GET request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &twitterAPIError{
			StatusCode: resp.StatusCode,
			Reset:      parseRateLimitReset(resp.Header.Get("x-rate-limit-reset")),
			Message:    twitterErrorMessage(resp.StatusCode, body),
		}
	}

	if err := jsoniter.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode json response: %w", err)
	}

	return nil
}

// parseRateLimitReset reads the epoch-seconds reset header.
func parseRateLimitReset(value string) *time.Time {
	if value == "" {
		return nil
	}
	secs, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || secs <= 0 {
		return nil
	}
	reset := time.Unix(secs, 0)
	return &reset
}

func twitterErrorMessage(status int, body []byte) string {
	var payload transfer.TwitterErrorResponse
	if jsoniter.Unmarshal(body, &payload) == nil {
		switch {
		case payload.Detail != "":
			return payload.Detail
		case len(payload.Errors) > 0 && payload.Errors[0].Message != "":
			return payload.Errors[0].Message
		case payload.Title != "":
			return payload.Title
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return http.StatusText(status)
}
