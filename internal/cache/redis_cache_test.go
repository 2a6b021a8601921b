package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoopCache(t *testing.T) {
	ctx := context.Background()
	c := NewNoopCache()

	assert.NoError(t, c.Set(ctx, "k", 1, time.Minute))

	var out int
	assert.ErrorIs(t, c.Get(ctx, "k", &out), ErrCacheMiss)
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.DeletePattern(ctx, "k*"))
}

func TestLeaderboardKeys(t *testing.T) {
	assert.Equal(t, "quiz:abc:leaderboard:10", LeaderboardKey("abc", 10))
	assert.Equal(t, "quiz:abc:leaderboard:*", LeaderboardPattern("abc"))
}
