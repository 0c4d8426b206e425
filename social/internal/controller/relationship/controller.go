package relationship

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/exmosaul/queteparece/social/internal/repository"
	"github.com/exmosaul/queteparece/social/pkg/model"
)

// ErrNotFound is returned when a user involved in an operation does not exist.
var ErrNotFound = errors.New("user not found")

// ErrSelfRequest is returned for a friend request where sender and receiver
// are the same user.
var ErrSelfRequest = errors.New("cannot send a friend request to yourself")

// ErrPartialState is returned when a two-sided friend write committed on one
// side only and retries of the second write exhausted. The friend edge needs
// reconciliation.
var ErrPartialState = errors.New("friend edge partially applied")

const compensationAttempts = 3

type userRepository interface {
	Get(ctx context.Context, uid string) (*model.User, error)
	Update(ctx context.Context, uid string, fn func(*model.User) error) error
}

// pairUpdater is the optional cross-record transaction capability. When the
// repository provides it, two-sided writes are a single atomic unit;
// otherwise the controller falls back to a compensating second write.
type pairUpdater interface {
	UpdatePair(ctx context.Context, uidA, uidB string, fn func(a, b *model.User) error) error
}

// Controller owns the friend-relationship state machine: requests,
// acceptance, removal and the derived status view. A friend edge is mirrored
// membership in both users' friends sets and is never observable one-sided
// beyond the bounded compensation window.
type Controller struct {
	repo   userRepository
	logger *zap.Logger
}

// New creates a relationship controller.
func New(repo userRepository, logger *zap.Logger) *Controller {
	return &Controller{repo: repo, logger: logger}
}

// SendRequest records a pending friend request from sender on the receiver's
// document. Sending again, or sending to an existing friend, is a no-op.
func (c *Controller) SendRequest(ctx context.Context, senderID, receiverID string) error {
	if senderID == receiverID {
		return ErrSelfRequest
	}
	if _, err := c.repo.Get(ctx, senderID); err != nil {
		return wrapNotFound(err)
	}
	err := c.repo.Update(ctx, receiverID, func(receiver *model.User) error {
		if receiver.IsFriend(senderID) {
			return nil
		}
		receiver.AddRequest(senderID)
		return nil
	})
	return wrapNotFound(err)
}

// Accept turns a pending request into a friend edge: both friends sets gain
// the other uid and the pending request entries for the pair are cleared, as
// one atomic unit when the repository supports pair updates.
func (c *Controller) Accept(ctx context.Context, receiverID, senderID string) error {
	if receiverID == senderID {
		return ErrSelfRequest
	}
	apply := func(receiver, sender *model.User) error {
		receiver.AddFriend(senderID)
		sender.AddFriend(receiverID)
		receiver.RemoveRequest(senderID)
		// A reciprocal pending request would coexist with the new edge;
		// clear it too.
		sender.RemoveRequest(receiverID)
		return nil
	}
	if pu, ok := c.repo.(pairUpdater); ok {
		return wrapNotFound(pu.UpdatePair(ctx, receiverID, senderID, apply))
	}
	return c.compensate(ctx, receiverID, senderID,
		func(receiver *model.User) error {
			receiver.AddFriend(senderID)
			receiver.RemoveRequest(senderID)
			return nil
		},
		func(sender *model.User) error {
			sender.AddFriend(receiverID)
			sender.RemoveRequest(receiverID)
			return nil
		})
}

// Reject drops a pending request from the receiver's document. Idempotent.
func (c *Controller) Reject(ctx context.Context, receiverID, senderID string) error {
	err := c.repo.Update(ctx, receiverID, func(receiver *model.User) error {
		receiver.RemoveRequest(senderID)
		return nil
	})
	return wrapNotFound(err)
}

// RemoveFriend deletes the edge from both sides, with the same atomicity as
// Accept.
func (c *Controller) RemoveFriend(ctx context.Context, uid, friendID string) error {
	apply := func(a, b *model.User) error {
		a.RemoveFriend(friendID)
		b.RemoveFriend(uid)
		return nil
	}
	if pu, ok := c.repo.(pairUpdater); ok {
		return wrapNotFound(pu.UpdatePair(ctx, uid, friendID, apply))
	}
	return c.compensate(ctx, uid, friendID,
		func(a *model.User) error {
			a.RemoveFriend(friendID)
			return nil
		},
		func(b *model.User) error {
			b.RemoveFriend(uid)
			return nil
		})
}

// compensate is the two-phase fallback for repositories without cross-record
// transactions: commit the first write, then retry the second until it lands
// or surfaces ErrPartialState for the caller to reconcile.
func (c *Controller) compensate(ctx context.Context, firstID, secondID string, first, second func(*model.User) error) error {
	if err := c.repo.Update(ctx, firstID, first); err != nil {
		return wrapNotFound(err)
	}
	var err error
	for attempt := 0; attempt < compensationAttempts; attempt++ {
		if err = c.repo.Update(ctx, secondID, second); err == nil {
			return nil
		}
	}
	c.logger.Error("second friend write failed, edge needs reconciliation",
		zap.String("applied", firstID), zap.String("pending", secondID), zap.Error(err))
	return fmt.Errorf("write to %s failed after %d attempts: %w", secondID, compensationAttempts, ErrPartialState)
}

// Status derives the relationship of viewer towards target from the target's
// document. Exactly one of NONE, REQUEST_SENT, FRIENDS.
func (c *Controller) Status(ctx context.Context, viewerID, targetID string) (model.FriendStatus, error) {
	target, err := c.repo.Get(ctx, targetID)
	if err != nil {
		return model.FriendStatusNone, wrapNotFound(err)
	}
	switch {
	case target.IsFriend(viewerID):
		return model.FriendStatusFriends, nil
	case target.HasRequestFrom(viewerID):
		return model.FriendStatusRequestSent, nil
	default:
		return model.FriendStatusNone, nil
	}
}

// Friends returns the uids in the user's friends set.
func (c *Controller) Friends(ctx context.Context, uid string) ([]string, error) {
	u, err := c.repo.Get(ctx, uid)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return u.Friends, nil
}

// Requests returns the pending incoming friend-request sender uids.
func (c *Controller) Requests(ctx context.Context, uid string) ([]string, error) {
	u, err := c.repo.Get(ctx, uid)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return u.FriendRequests, nil
}

func wrapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
