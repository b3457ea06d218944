package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/friendcircle/internal/apperror"
	"github.com/sakif/friendcircle/internal/model"
	"github.com/sakif/friendcircle/internal/repository/sqlite"
)

// newTestFriendService wires a FriendService against a fresh in-memory
// store and returns a helper for seeding users.
func newTestFriendService(t *testing.T) (*FriendService, func(username string) *model.User) {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err, "creating test database")
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := NewFriendService(db, db, logger)

	seed := func(username string) *model.User {
		user := &model.User{
			Username:     username,
			Email:        username + "@example.com",
			PasswordHash: "$2a$04$qqqqqqqqqqqqqqqqqqqqqOqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq",
			DateOfBirth:  time.Date(1992, 8, 9, 0, 0, 0, 0, time.UTC),
			Gender:       model.GenderOther,
		}
		require.NoError(t, db.Create(context.Background(), user), "seeding user %s", username)
		return user
	}
	return svc, seed
}

func friendUsernames(t *testing.T, svc *FriendService, userID string) map[string]bool {
	t.Helper()
	friends, err := svc.ListFriends(context.Background(), userID)
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range friends {
		names[f.Username] = true
	}
	return names
}

// =========================================================================
// ADD TESTS
// =========================================================================

func TestAddFriend_Symmetry(t *testing.T) {
	svc, seed := newTestFriendService(t)
	alice := seed("alice")
	bob := seed("bob")

	require.NoError(t, svc.AddFriend(context.Background(), alice.ID, bob.ID))

	// One add call, edge visible from both sides.
	assert.True(t, friendUsernames(t, svc, alice.ID)["bob"], "bob should be in alice's friends")
	assert.True(t, friendUsernames(t, svc, bob.ID)["alice"], "alice should be in bob's friends")
}

func TestAddFriend_SelfReference(t *testing.T) {
	svc, seed := newTestFriendService(t)
	alice := seed("alice")

	err := svc.AddFriend(context.Background(), alice.ID, alice.ID)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Empty(t, friendUsernames(t, svc, alice.ID))
}

func TestAddFriend_AlreadyFriends(t *testing.T) {
	svc, seed := newTestFriendService(t)
	alice := seed("alice")
	bob := seed("bob")

	require.NoError(t, svc.AddFriend(context.Background(), alice.ID, bob.ID))

	// Second add — from either side — is a conflict, and no duplicate edge
	// appears.
	err := svc.AddFriend(context.Background(), alice.ID, bob.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	err = svc.AddFriend(context.Background(), bob.ID, alice.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	friends, err := svc.ListFriends(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Len(t, friends, 1)
}

func TestAddFriend_UnknownIdentities(t *testing.T) {
	svc, seed := newTestFriendService(t)
	alice := seed("alice")

	err := svc.AddFriend(context.Background(), alice.ID, "no-such-id")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = svc.AddFriend(context.Background(), "no-such-id", alice.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

// =========================================================================
// REMOVE TESTS
// =========================================================================

func TestRemoveFriend_BothSidesCleared(t *testing.T) {
	svc, seed := newTestFriendService(t)
	alice := seed("alice")
	bob := seed("bob")

	require.NoError(t, svc.AddFriend(context.Background(), alice.ID, bob.ID))
	// Removal initiated by the other side of the pair than the add.
	require.NoError(t, svc.RemoveFriend(context.Background(), bob.ID, alice.ID))

	assert.Empty(t, friendUsernames(t, svc, alice.ID))
	assert.Empty(t, friendUsernames(t, svc, bob.ID))
}

func TestRemoveFriend_AbsentEdgeIsNoop(t *testing.T) {
	svc, seed := newTestFriendService(t)
	alice := seed("alice")
	bob := seed("bob")

	err := svc.RemoveFriend(context.Background(), alice.ID, bob.ID)
	assert.NoError(t, err, "removing a non-existent edge is an idempotent no-op")
}

func TestRemoveFriend_UnknownTarget(t *testing.T) {
	svc, seed := newTestFriendService(t)
	alice := seed("alice")

	err := svc.RemoveFriend(context.Background(), alice.ID, "no-such-id")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestRemoveFriend_MissingRequester(t *testing.T) {
	svc, seed := newTestFriendService(t)
	bob := seed("bob")

	err := svc.RemoveFriend(context.Background(), "", bob.ID)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

// =========================================================================
// SYMMETRY PROPERTY
// =========================================================================

// After an arbitrary sequence of adds and removes that completes without
// reported failure, every surviving edge is visible from both sides and no
// user is its own friend.
func TestFriendship_SymmetryAfterMixedSequence(t *testing.T) {
	svc, seed := newTestFriendService(t)
	users := []*model.User{seed("u0"), seed("u1"), seed("u2"), seed("u3")}

	ops := []struct {
		add  bool
		a, b int
	}{
		{true, 0, 1},
		{true, 1, 2},
		{true, 2, 3},
		{false, 1, 0},
		{true, 0, 3},
		{false, 2, 1},
		{true, 1, 3},
	}
	for _, op := range ops {
		if op.add {
			require.NoError(t, svc.AddFriend(context.Background(), users[op.a].ID, users[op.b].ID))
		} else {
			require.NoError(t, svc.RemoveFriend(context.Background(), users[op.a].ID, users[op.b].ID))
		}
	}

	sets := make([]map[string]bool, len(users))
	for i, u := range users {
		sets[i] = friendUsernames(t, svc, u.ID)
		assert.False(t, sets[i][u.Username], "%s must not be its own friend", u.Username)
	}
	for i := range users {
		for j := range users {
			if i == j {
				continue
			}
			assert.Equal(t, sets[i][users[j].Username], sets[j][users[i].Username],
				"edge (%s, %s) must be symmetric", users[i].Username, users[j].Username)
		}
	}
}

// =========================================================================
// SEARCH / STRANGERS
// =========================================================================

func TestSearchCandidates(t *testing.T) {
	svc, seed := newTestFriendService(t)
	alice := seed("alice")
	seed("bobby")
	bob2 := seed("bobcat")
	seed("carol")

	require.NoError(t, svc.AddFriend(context.Background(), alice.ID, bob2.ID))

	got, err := svc.SearchCandidates(context.Background(), alice.ID, "BOB")
	require.NoError(t, err)

	// bobcat is already a friend, carol doesn't match, alice is the viewer.
	require.Len(t, got, 1)
	assert.Equal(t, "bobby", got[0].Username)
}

func TestListStrangers(t *testing.T) {
	svc, seed := newTestFriendService(t)
	alice := seed("alice")
	bob := seed("bob")
	seed("carol")

	require.NoError(t, svc.AddFriend(context.Background(), alice.ID, bob.ID))

	got, err := svc.ListStrangers(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "carol", got[0].Username)
}

// =========================================================================
// END-TO-END SCENARIO
// =========================================================================

func TestFriendship_Scenario(t *testing.T) {
	svc, seed := newTestFriendService(t)
	alice := seed("alice")
	bob := seed("bob")

	require.NoError(t, svc.AddFriend(context.Background(), alice.ID, bob.ID))
	assert.True(t, friendUsernames(t, svc, alice.ID)["bob"])
	assert.True(t, friendUsernames(t, svc, bob.ID)["alice"])

	require.NoError(t, svc.RemoveFriend(context.Background(), bob.ID, alice.ID))
	assert.False(t, friendUsernames(t, svc, alice.ID)["bob"])
	assert.False(t, friendUsernames(t, svc, bob.ID)["alice"])
}
