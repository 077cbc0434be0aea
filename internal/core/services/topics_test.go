package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
)

func TestTopicService_Get(t *testing.T) {
	service := NewTopicService(newMockTopicSource(domain.Topic{ID: "t-1", Slug: "brighton-hove", Name: "Brighton & Hove"}))

	byID, err := service.Get(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, "Brighton & Hove", byID.Name)

	bySlug, err := service.Get(context.Background(), "Brighton-Hove")
	require.NoError(t, err)
	assert.Equal(t, "t-1", bySlug.ID)

	_, err = service.Get(context.Background(), "nowhere")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTopicService_Get_SourceError(t *testing.T) {
	src := newMockTopicSource()
	src.err = errors.New("db locked")

	_, err := NewTopicService(src).Get(context.Background(), "t-1")

	assert.EqualError(t, err, "db locked")
}

func TestTopicService_List(t *testing.T) {
	service := NewTopicService(newMockTopicSource(testTopic()))

	topics, err := service.List(context.Background())

	require.NoError(t, err)
	assert.Len(t, topics, 1)
}
