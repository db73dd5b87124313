package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniedit/genbridge/internal/model"
)

func TestResolve(t *testing.T) {
	t.Run("no prefix is domestic", func(t *testing.T) {
		info, err := Resolve("abc123secret")
		require.NoError(t, err)
		assert.Equal(t, model.RegionCN, info.Region)
		assert.False(t, info.IsInternational)
		assert.Equal(t, "abc123secret", info.RawToken)
		assert.Equal(t, "cn-north-1", info.AWSRegion)
		assert.Equal(t, "513695", info.AssistantID)
	})

	t.Run("us prefix strips and marks international", func(t *testing.T) {
		info, err := Resolve("us-abc123secret")
		require.NoError(t, err)
		assert.Equal(t, model.RegionUS, info.Region)
		assert.True(t, info.IsInternational)
		assert.Equal(t, "abc123secret", info.RawToken)
		assert.Equal(t, "513641", info.AssistantID)
	})

	t.Run("unknown prefix is not stripped, treated as domestic", func(t *testing.T) {
		info, err := Resolve("fr-abc123secret")
		require.NoError(t, err)
		assert.Equal(t, model.RegionCN, info.Region)
		assert.False(t, info.IsInternational)
		assert.Equal(t, "fr-abc123secret", info.RawToken)
	})

	t.Run("case-insensitive prefix match", func(t *testing.T) {
		info, err := Resolve("HK-abc123secret")
		require.NoError(t, err)
		assert.Equal(t, model.RegionHK, info.Region)
		assert.True(t, info.IsInternational)
	})

	t.Run("empty token is rejected", func(t *testing.T) {
		_, err := Resolve("")
		assert.ErrorIs(t, err, ErrEmptyToken)
	})

	t.Run("prefix with empty remainder is rejected", func(t *testing.T) {
		_, err := Resolve("us-")
		assert.ErrorIs(t, err, ErrEmptyToken)
	})

	t.Run("hyphen in secret without a region prefix stays domestic", func(t *testing.T) {
		info, err := Resolve("my-custom-token")
		require.NoError(t, err)
		assert.Equal(t, model.RegionCN, info.Region)
		assert.Equal(t, "my-custom-token", info.RawToken)
	})
}

func TestAuthorizationHeader(t *testing.T) {
	info, err := Resolve("us-secret")
	require.NoError(t, err)
	assert.Equal(t, "Bearer us-secret", info.AuthorizationHeader("us-"))
}
