package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeMediaURLsKeepsOrder(t *testing.T) {
	encoded, err := EncodeMediaURLs([]string{"https://b/2.jpg", "https://a/1.jpg"})
	require.NoError(t, err)
	assert.Equal(t, `["https://b/2.jpg","https://a/1.jpg"]`, encoded)

	item := FeedItem{MediaURLs: encoded}
	assert.Equal(t, []string{"https://b/2.jpg", "https://a/1.jpg"}, item.DecodeMediaURLs())
}

func TestEncodeMediaURLsNil(t *testing.T) {
	encoded, err := EncodeMediaURLs(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", encoded)
}

func TestDecodeMediaURLsCorrupt(t *testing.T) {
	for _, raw := range []string{"", "not json", "null"} {
		item := FeedItem{MediaURLs: raw}
		assert.Equal(t, []string{}, item.DecodeMediaURLs(), raw)
	}
}
