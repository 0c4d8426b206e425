package recommend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exmosaul/queteparece/social/internal/repository/memory"
	"github.com/exmosaul/queteparece/social/pkg/model"
)

func TestSetPreservesOrderAndDedupes(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	require.NoError(t, repo.Put(ctx, &model.User{UID: "alice"}))
	c := New(repo)

	require.NoError(t, c.Set(ctx, "alice", []string{"m3", "m1", "m3", "m2"}))
	list, err := c.List(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"m3", "m1", "m2"}, list)
}

func TestSetCapsAtFour(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	require.NoError(t, repo.Put(ctx, &model.User{UID: "alice"}))
	c := New(repo)

	require.NoError(t, c.Set(ctx, "alice", []string{"m1", "m2", "m3", "m4"}))
	assert.ErrorIs(t, c.Set(ctx, "alice", []string{"m1", "m2", "m3", "m4", "m5"}), ErrTooMany)

	// Duplicates do not count against the cap.
	require.NoError(t, c.Set(ctx, "alice", []string{"m1", "m1", "m2", "m3", "m4"}))
}

func TestUnknownUser(t *testing.T) {
	c := New(memory.New())
	assert.ErrorIs(t, c.Set(context.Background(), "ghost", []string{"m1"}), ErrNotFound)
}
