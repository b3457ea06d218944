package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/friendcircle/internal/apperror"
	"github.com/sakif/friendcircle/internal/model"
	"github.com/sakif/friendcircle/internal/repository"
)

// FriendService is the relationship engine. It enforces the domain rules
// around the friendship relation — no self-edges, no duplicate edges, both
// identities must exist — and delegates the symmetric storage of the edge to
// the pair-keyed friendship repository, where a single row represents both
// directions at once. There is no second denormalized write that could be
// lost halfway, so the symmetry invariant cannot be broken by a crash
// between updates.
type FriendService struct {
	users   repository.UserRepository
	friends repository.FriendshipRepository
	logger  *slog.Logger
}

// NewFriendService creates a FriendService.
func NewFriendService(
	users repository.UserRepository,
	friends repository.FriendshipRepository,
	logger *slog.Logger,
) *FriendService {
	return &FriendService{
		users:   users,
		friends: friends,
		logger:  logger,
	}
}

// ListFriends returns the profiles of every friend of userID, in a stable
// order. The user itself must exist; an unknown ID is NotFound rather than
// an empty list, so a stale token cannot masquerade as an empty account.
func (s *FriendService) ListFriends(ctx context.Context, userID string) ([]model.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("service/friend: loading user %s: %w", userID, err)
	}
	friends, err := s.friends.ListFriends(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/friend: listing friends of %s: %w", userID, err)
	}
	return friends, nil
}

// SearchCandidates returns users whose username case-insensitively contains
// query, excluding userID itself and everyone already in its friend set.
// An empty query matches all eligible users.
func (s *FriendService) SearchCandidates(ctx context.Context, userID, query string) ([]model.User, error) {
	users, err := s.users.Search(ctx, userID, query)
	if err != nil {
		return nil, fmt.Errorf("service/friend: searching candidates for %s: %w", userID, err)
	}
	return users, nil
}

// ListStrangers returns every user that is neither userID nor one of its
// friends — the browsing view for finding new friends.
func (s *FriendService) ListStrangers(ctx context.Context, userID string) ([]model.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("service/friend: loading user %s: %w", userID, err)
	}
	users, err := s.users.ListStrangers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/friend: listing strangers for %s: %w", userID, err)
	}
	return users, nil
}

// AddFriend creates the friendship between requester and target.
//
// Rules, checked in order:
//   - requesterID == targetID       → validation failure (self-reference)
//   - either identity missing       → NotFound
//   - edge already present          → Conflict (already friends)
//
// The insert itself is a set-insert on the unordered pair: if a concurrent
// request beats us to the same edge between the AreFriends check and the
// insert, the insert degrades to a no-op success and the edge exists exactly
// once. Only a sequential re-add is reported as a conflict.
func (s *FriendService) AddFriend(ctx context.Context, requesterID, targetID string) error {
	if requesterID == targetID {
		return apperror.ValidationFailed("friendId", "cannot add yourself as a friend")
	}

	if _, err := s.users.GetByID(ctx, requesterID); err != nil {
		return fmt.Errorf("service/friend: loading requester %s: %w", requesterID, err)
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return fmt.Errorf("service/friend: loading target %s: %w", targetID, err)
	}

	already, err := s.friends.AreFriends(ctx, requesterID, targetID)
	if err != nil {
		return fmt.Errorf("service/friend: checking friendship: %w", err)
	}
	if already {
		return apperror.Conflict("users are already friends")
	}

	if err := s.friends.Add(ctx, requesterID, targetID); err != nil {
		return fmt.Errorf("service/friend: adding friendship: %w", err)
	}

	s.logger.Info("friendship added",
		slog.String("requesterID", requesterID),
		slog.String("targetID", targetID),
	)
	return nil
}

// RemoveFriend deletes the friendship between requester and target. Both
// identities must exist; the edge itself need not — removing an absent edge
// is a no-op success, matching the symmetry invariant (gone on one side
// means gone on both).
func (s *FriendService) RemoveFriend(ctx context.Context, requesterID, targetID string) error {
	if requesterID == "" {
		return apperror.Unauthorized("acting identity missing")
	}

	if _, err := s.users.GetByID(ctx, requesterID); err != nil {
		return fmt.Errorf("service/friend: loading requester %s: %w", requesterID, err)
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.NotFound("user", targetID)
		}
		return fmt.Errorf("service/friend: loading target %s: %w", targetID, err)
	}

	if err := s.friends.Remove(ctx, requesterID, targetID); err != nil {
		return fmt.Errorf("service/friend: removing friendship: %w", err)
	}

	s.logger.Info("friendship removed",
		slog.String("requesterID", requesterID),
		slog.String("targetID", targetID),
	)
	return nil
}
