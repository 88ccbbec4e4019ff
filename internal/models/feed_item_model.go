package models

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

type FeedItem struct {
	ID           int64     `db:"id" json:"id"`
	Platform     string    `db:"platform" json:"platform"`
	ExternalID   string    `db:"external_id" json:"externalId"`
	Content      string    `db:"content" json:"content"`
	AuthorName   string    `db:"author_name" json:"authorName"`
	AuthorHandle string    `db:"author_handle" json:"authorHandle"`
	MediaURLs    string    `db:"media_urls" json:"-"`
	OriginalURL  string    `db:"original_url" json:"originalUrl"`
	PostedAt     time.Time `db:"posted_at" json:"postedAt"`
	IsHidden     bool      `db:"is_hidden" json:"isHidden"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// EncodeMediaURLs serializes an ordered media list for the media_urls column.
func EncodeMediaURLs(urls []string) (string, error) {
	if urls == nil {
		urls = []string{}
	}
	b, err := jsoniter.Marshal(urls)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeMediaURLs is the inverse of EncodeMediaURLs. Empty or corrupt
// columns decode to an empty list.
func (f *FeedItem) DecodeMediaURLs() []string {
	var urls []string
	if f.MediaURLs == "" || jsoniter.Unmarshal([]byte(f.MediaURLs), &urls) != nil || urls == nil {
		return []string{}
	}
	return urls
}
