// Package repository declares the persistence interfaces consumed by the
// service layer. Concrete implementations live in subpackages (sqlite).
package repository

import (
	"context"

	"github.com/sakif/friendcircle/internal/model"
)

// UserRepository is the credential store: identity records keyed by an opaque
// ID, with globally unique usernames and emails.
//
// Lookups return apperror.NotFound when no record matches; callers translate
// absence into the domain failure appropriate for their operation.
type UserRepository interface {
	// Create inserts a new identity. The password must arrive already hashed.
	// Returns apperror.Conflict when the username or email is taken.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// Search returns users whose username case-insensitively contains query,
	// excluding viewerID and everyone already in its friend set. An empty
	// query matches all eligible users.
	Search(ctx context.Context, viewerID, query string) ([]model.User, error)
	// ListStrangers returns every user except viewerID and its friends.
	ListStrangers(ctx context.Context, viewerID string) ([]model.User, error)
}

// FriendshipRepository maintains the undirected friendship relation. An edge
// is a single row keyed by the unordered pair, so symmetry, uniqueness, and
// no-self-edge are properties of the store, not of individual writes.
type FriendshipRepository interface {
	// Add records the edge (a,b). Inserting an edge that already exists is a
	// no-op success (set-insert semantics, safe under concurrent retries).
	Add(ctx context.Context, a, b string) error
	// Remove deletes the edge (a,b). Removing an absent edge is a no-op.
	Remove(ctx context.Context, a, b string) error
	AreFriends(ctx context.Context, a, b string) (bool, error)
	// ListFriends returns the friend profiles of id in a stable order.
	ListFriends(ctx context.Context, id string) ([]model.User, error)
}
