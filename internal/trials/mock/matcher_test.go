package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/nmurthy/oncopilot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatcher_CannedTrials(t *testing.T) {
	m := NewMatcher()

	matches, err := m.Match(context.Background(), models.TrialQuery{Condition: "breast cancer"})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "NCT05012345", matches[0].NCTID)
	assert.Equal(t, "RECRUITING", matches[0].Status)
}

func TestNewMatcher_RespectsMaxResults(t *testing.T) {
	m := NewMatcher()

	matches, err := m.Match(context.Background(), models.TrialQuery{Condition: "breast cancer", MaxResults: 1})
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestNewFailingMatcher(t *testing.T) {
	cause := errors.New("api down")
	m := NewFailingMatcher(cause)

	_, err := m.Match(context.Background(), models.TrialQuery{})
	assert.ErrorIs(t, err, cause)
}
