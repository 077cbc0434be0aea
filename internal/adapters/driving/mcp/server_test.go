package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil feed service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{Topics: &mockTopicService{}})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingFeedService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Feed:   &mockFeedService{},
			Topics: &mockTopicService{},
		})
		require.NoError(t, err)
		assert.NotNil(t, server)
		assert.NotNil(t, server.Handler())
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("empty ports", func(t *testing.T) {
		err := (&Ports{}).Validate()
		assert.ErrorIs(t, err, ErrMissingFeedService)
	})

	t.Run("missing topics", func(t *testing.T) {
		err := (&Ports{Feed: &mockFeedService{}}).Validate()
		assert.ErrorIs(t, err, ErrMissingTopicService)
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Feed:    &mockFeedService{},
			Topics:  &mockTopicService{},
			Ranking: &mockRankingService{},
			Slots:   &mockSlots{},
		}
		assert.NoError(t, ports.Validate())
	})
}
