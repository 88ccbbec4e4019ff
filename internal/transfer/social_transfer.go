package transfer

import "time"

// FetchedPost is a provider post normalized for the operator to review.
// It is never persisted until imported.
type FetchedPost struct {
	ID          string        `json:"id" validate:"required"`
	Text        string        `json:"text"`
	CreatedAt   time.Time     `json:"createdAt" validate:"required"`
	Media       []string      `json:"media"`
	Author      FetchedAuthor `json:"author"`
	OriginalURL string        `json:"originalUrl"`
}

type FetchedAuthor struct {
	Name            string `json:"name"`
	Username        string `json:"username"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

type FetchResponse struct {
	Tweets []FetchedPost `json:"tweets"`
}

type ImportRequest struct {
	Items []FetchedPost `json:"items" validate:"required,dive"`
}

type ImportResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

type PlatformStatus struct {
	Connected bool   `json:"connected"`
	Username  string `json:"username,omitempty"`
}

type ImportStats struct {
	ImportedCount int64 `json:"importedCount"`
}

type StatusResponse struct {
	Twitter PlatformStatus `json:"twitter"`
	Stats   ImportStats    `json:"stats"`
}

// AuthorizationRequest is everything the handler needs to start the
// provider redirect: the URL plus the values it must stash in cookies.
type AuthorizationRequest struct {
	URL        string
	State      string
	StateToken string
}

type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

type FeedItemResponse struct {
	ID           int64     `json:"id"`
	Platform     string    `json:"platform"`
	ExternalID   string    `json:"externalId"`
	Content      string    `json:"content"`
	AuthorName   string    `json:"authorName"`
	AuthorHandle string    `json:"authorHandle"`
	MediaURLs    []string  `json:"mediaUrls"`
	OriginalURL  string    `json:"originalUrl"`
	PostedAt     time.Time `json:"postedAt"`
}
