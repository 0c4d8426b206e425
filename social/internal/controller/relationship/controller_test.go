package relationship

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/exmosaul/queteparece/social/internal/repository/memory"
	"github.com/exmosaul/queteparece/social/pkg/model"
)

func newController(t *testing.T, uids ...string) (*Controller, *memory.Repository) {
	t.Helper()
	repo := memory.New()
	for _, uid := range uids {
		require.NoError(t, repo.Put(context.Background(), &model.User{UID: uid, Username: uid}))
	}
	return New(repo, zap.NewNop()), repo
}

func TestSendRequest(t *testing.T) {
	ctx := context.Background()
	c, repo := newController(t, "alice", "bob")

	require.NoError(t, c.SendRequest(ctx, "alice", "bob"))
	bob, err := repo.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, bob.FriendRequests)

	// Repeat send is a no-op, not a duplicate entry.
	require.NoError(t, c.SendRequest(ctx, "alice", "bob"))
	bob, err = repo.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, bob.FriendRequests)
}

func TestSendRequestToSelf(t *testing.T) {
	c, _ := newController(t, "alice")
	assert.ErrorIs(t, c.SendRequest(context.Background(), "alice", "alice"), ErrSelfRequest)
}

func TestSendRequestUnknownUsers(t *testing.T) {
	ctx := context.Background()
	c, _ := newController(t, "alice")
	assert.ErrorIs(t, c.SendRequest(ctx, "ghost", "alice"), ErrNotFound)
	assert.ErrorIs(t, c.SendRequest(ctx, "alice", "ghost"), ErrNotFound)
}

func TestSendRequestToExistingFriendIsNoop(t *testing.T) {
	ctx := context.Background()
	c, repo := newController(t, "alice", "bob")
	require.NoError(t, c.SendRequest(ctx, "alice", "bob"))
	require.NoError(t, c.Accept(ctx, "bob", "alice"))

	require.NoError(t, c.SendRequest(ctx, "alice", "bob"))
	bob, err := repo.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, bob.FriendRequests)
}

func TestAcceptCreatesSymmetricEdge(t *testing.T) {
	ctx := context.Background()
	c, repo := newController(t, "alice", "bob")
	require.NoError(t, c.SendRequest(ctx, "alice", "bob"))
	require.NoError(t, c.Accept(ctx, "bob", "alice"))

	alice, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	bob, err := repo.Get(ctx, "bob")
	require.NoError(t, err)

	assert.True(t, alice.IsFriend("bob"))
	assert.True(t, bob.IsFriend("alice"))
	assert.Empty(t, bob.FriendRequests)

	status, err := c.Status(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, model.FriendStatusFriends, status)
}

func TestAcceptClearsReciprocalRequest(t *testing.T) {
	ctx := context.Background()
	c, repo := newController(t, "alice", "bob")
	require.NoError(t, c.SendRequest(ctx, "alice", "bob"))
	require.NoError(t, c.SendRequest(ctx, "bob", "alice"))
	require.NoError(t, c.Accept(ctx, "bob", "alice"))

	alice, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, alice.FriendRequests)

	// Status must never be derivable as two states at once.
	status, err := c.Status(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, model.FriendStatusFriends, status)
}

func TestRejectReturnsPairToNone(t *testing.T) {
	ctx := context.Background()
	c, _ := newController(t, "alice", "bob")
	require.NoError(t, c.SendRequest(ctx, "alice", "bob"))
	require.NoError(t, c.Reject(ctx, "bob", "alice"))

	status, err := c.Status(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, model.FriendStatusNone, status)

	// A rejected sender is not blocked from asking again.
	require.NoError(t, c.SendRequest(ctx, "alice", "bob"))
	status, err = c.Status(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, model.FriendStatusRequestSent, status)
}

func TestRejectIsIdempotent(t *testing.T) {
	ctx := context.Background()
	c, _ := newController(t, "alice", "bob")
	require.NoError(t, c.Reject(ctx, "bob", "alice"))
	require.NoError(t, c.Reject(ctx, "bob", "alice"))
}

func TestRemoveFriend(t *testing.T) {
	ctx := context.Background()
	c, repo := newController(t, "alice", "bob")
	require.NoError(t, c.SendRequest(ctx, "alice", "bob"))
	require.NoError(t, c.Accept(ctx, "bob", "alice"))
	require.NoError(t, c.RemoveFriend(ctx, "alice", "bob"))

	alice, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	bob, err := repo.Get(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, alice.IsFriend("bob"))
	assert.False(t, bob.IsFriend("alice"))
}

func TestStatusIsExclusive(t *testing.T) {
	ctx := context.Background()
	c, repo := newController(t, "alice", "bob")

	assertExclusive := func() {
		t.Helper()
		bob, err := repo.Get(ctx, "bob")
		require.NoError(t, err)
		assert.False(t, bob.IsFriend("alice") && bob.HasRequestFrom("alice"),
			"pending request and friend edge coexist for the same pair")
	}

	assertExclusive()
	require.NoError(t, c.SendRequest(ctx, "alice", "bob"))
	assertExclusive()
	require.NoError(t, c.Accept(ctx, "bob", "alice"))
	assertExclusive()
	require.NoError(t, c.RemoveFriend(ctx, "bob", "alice"))
	assertExclusive()
}

func TestConcurrentAcceptsKeepSymmetry(t *testing.T) {
	ctx := context.Background()
	uids := []string{"a", "b", "c", "d", "e"}
	c, repo := newController(t, uids...)
	for _, sender := range uids[1:] {
		require.NoError(t, c.SendRequest(ctx, sender, "a"))
	}

	var wg sync.WaitGroup
	for _, sender := range uids[1:] {
		wg.Add(1)
		go func(sender string) {
			defer wg.Done()
			assert.NoError(t, c.Accept(ctx, "a", sender))
		}(sender)
	}
	wg.Wait()

	a, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, a.FriendRequests)
	for _, sender := range uids[1:] {
		assert.True(t, a.IsFriend(sender))
		other, err := repo.Get(ctx, sender)
		require.NoError(t, err)
		assert.True(t, other.IsFriend("a"))
	}
}

// singleDocRepo has no cross-record transaction support, forcing the
// compensating path. failSecond makes every Update against that uid fail.
type singleDocRepo struct {
	repo       *memory.Repository
	failSecond string
}

func (s *singleDocRepo) Get(ctx context.Context, uid string) (*model.User, error) {
	return s.repo.Get(ctx, uid)
}

func (s *singleDocRepo) Update(ctx context.Context, uid string, fn func(*model.User) error) error {
	if uid == s.failSecond {
		return errors.New("store unavailable")
	}
	return s.repo.Update(ctx, uid, fn)
}

func TestAcceptCompensatesWithoutPairTransactions(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	for _, uid := range []string{"alice", "bob"} {
		require.NoError(t, mem.Put(ctx, &model.User{UID: uid}))
	}
	c := New(&singleDocRepo{repo: mem}, zap.NewNop())

	require.NoError(t, c.SendRequest(ctx, "alice", "bob"))
	require.NoError(t, c.Accept(ctx, "bob", "alice"))

	alice, err := mem.Get(ctx, "alice")
	require.NoError(t, err)
	bob, err := mem.Get(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, alice.IsFriend("bob"))
	assert.True(t, bob.IsFriend("alice"))
}

func TestAcceptSurfacesPartialState(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	for _, uid := range []string{"alice", "bob"} {
		require.NoError(t, mem.Put(ctx, &model.User{UID: uid}))
	}
	c := New(&singleDocRepo{repo: mem, failSecond: "alice"}, zap.NewNop())

	require.NoError(t, c.SendRequest(ctx, "alice", "bob"))
	err := c.Accept(ctx, "bob", "alice")
	assert.ErrorIs(t, err, ErrPartialState)
}
