package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSearcher_CannedChunks(t *testing.T) {
	s := NewSearcher()

	chunks, err := s.Search(context.Background(), "HER2 breast cancer", 5)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "chunk-nccn-001", chunks[0].ID)
	assert.InDelta(t, 0.92, chunks[0].Similarity, 1e-9)
}

func TestNewSearcher_RespectsTopK(t *testing.T) {
	s := NewSearcher()

	chunks, err := s.Search(context.Background(), "query", 1)
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
}

func TestNewFailingSearcher(t *testing.T) {
	cause := errors.New("store down")
	s := NewFailingSearcher(cause)

	_, err := s.Search(context.Background(), "query", 5)
	assert.ErrorIs(t, err, cause)
}
