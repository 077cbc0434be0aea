package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
)

func TestExtractTopicID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid roundups URI",
			uri:      "storyfeed://topics/brighton/roundups",
			expected: "brighton",
		},
		{
			name:     "invalid prefix",
			uri:      "file://topics/brighton/roundups",
			expected: "",
		},
		{
			name:     "missing roundups suffix",
			uri:      "storyfeed://topics/brighton",
			expected: "",
		},
		{
			name:     "missing topic",
			uri:      "storyfeed://topics/roundups",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "storyfeed://topics/a/b/roundups",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractTopicID(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleTopicsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns topics", func(t *testing.T) {
		topics := &mockTopicService{topics: []domain.Topic{{
			ID:        "brighton",
			Slug:      "brighton",
			Name:      "Brighton",
			Landmarks: []string{"Palace Pier"},
		}}}
		server := newTestServer(t, &Ports{Feed: &mockFeedService{}, Topics: topics})

		result, err := server.handleTopicsResource(ctx, makeReadResourceRequest("storyfeed://topics"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, `"id": "brighton"`)
		assert.Contains(t, result.Contents[0].Text, "Palace Pier")
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		topics := &mockTopicService{err: errors.New("database error")}
		server := newTestServer(t, &Ports{Feed: &mockFeedService{}, Topics: topics})

		_, err := server.handleTopicsResource(ctx, makeReadResourceRequest("storyfeed://topics"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing topics")
	})
}

func TestServer_handleRoundupsResource(t *testing.T) {
	ctx := context.Background()
	uri := "storyfeed://topics/brighton/roundups"

	t.Run("nil ranking service returns not found", func(t *testing.T) {
		server := newTestServer(t, &Ports{Feed: &mockFeedService{}})

		_, err := server.handleRoundupsResource(ctx, makeReadResourceRequest(uri))

		require.Error(t, err)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server := newTestServer(t, &Ports{Feed: &mockFeedService{}, Ranking: &mockRankingService{}})

		_, err := server.handleRoundupsResource(ctx, makeReadResourceRequest("storyfeed://invalid"))

		require.Error(t, err)
	})

	t.Run("returns roundups", func(t *testing.T) {
		ranking := &mockRankingService{roundups: []domain.Roundup{{
			ID:          "r1",
			Kind:        domain.RoundupWeekly,
			PeriodStart: time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC),
			PeriodEnd:   time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
			StoryIDs:    []string{"s1", "s2"},
		}}}
		server := newTestServer(t, &Ports{Feed: &mockFeedService{}, Ranking: ranking})

		result, err := server.handleRoundupsResource(ctx, makeReadResourceRequest(uri))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		text := result.Contents[0].Text
		assert.Contains(t, text, `"kind": "weekly"`)
		assert.Contains(t, text, `"period_start": "2026-10-12"`)
		assert.Contains(t, text, `"stories": 2`)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		ranking := &mockRankingService{err: errors.New("database error")}
		server := newTestServer(t, &Ports{Feed: &mockFeedService{}, Ranking: ranking})

		_, err := server.handleRoundupsResource(ctx, makeReadResourceRequest(uri))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing roundups")
	})
}
