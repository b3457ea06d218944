package sqlite

import (
	"context"
	"fmt"

	"github.com/sakif/friendcircle/internal/model"
	"github.com/sakif/friendcircle/internal/repository"
)

// compile-time check that *DB implements repository.FriendshipRepository
var _ repository.FriendshipRepository = (*DB)(nil)

// orderPair maps an unordered pair of IDs onto the canonical (lo, hi)
// representation the friendships table is keyed by.
func orderPair(a, b string) (lo, hi string) {
	if a < b {
		return a, b
	}
	return b, a
}

// Add records the friendship between a and b as a single pair row.
//
// INSERT OR IGNORE gives set-insert semantics: if two requests race to create
// the same edge, both succeed and exactly one row exists afterwards. The
// caller decides whether a pre-existing edge is an error (AddFriend reports
// AlreadyFriends on a sequential re-add); at this layer re-insertion is a
// no-op, which is what makes retries safe.
func (db *DB) Add(ctx context.Context, a, b string) error {
	lo, hi := orderPair(a, b)
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO friendships (user_lo, user_hi) VALUES (?, ?)`,
		lo, hi,
	)
	if err != nil {
		return fmt.Errorf("sqlite: adding friendship (%s, %s): %w", lo, hi, mapErr(err))
	}
	return nil
}

// Remove deletes the edge between a and b. Removing an edge that does not
// exist is a no-op: the end state (no edge, on both sides) is what matters.
func (db *DB) Remove(ctx context.Context, a, b string) error {
	lo, hi := orderPair(a, b)
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM friendships WHERE user_lo = ? AND user_hi = ?`,
		lo, hi,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing friendship (%s, %s): %w", lo, hi, mapErr(err))
	}
	return nil
}

// AreFriends reports whether the edge (a, b) exists. Symmetric by
// construction: the arguments can arrive in either order.
func (db *DB) AreFriends(ctx context.Context, a, b string) (bool, error) {
	lo, hi := orderPair(a, b)
	var exists int
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM friendships WHERE user_lo = ? AND user_hi = ?)`,
		lo, hi,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking friendship (%s, %s): %w", lo, hi, mapErr(err))
	}
	return exists == 1, nil
}

// ListFriends returns the full profiles of every friend of id, ordered by
// when the friendship was created (ties broken by user ID so the order is
// stable per call).
func (db *DB) ListFriends(ctx context.Context, id string) ([]model.User, error) {
	return db.queryUsers(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE id IN (
			SELECT user_hi FROM friendships WHERE user_lo = ?1
			UNION
			SELECT user_lo FROM friendships WHERE user_hi = ?1
		 )
		 ORDER BY (
			SELECT f.created_at FROM friendships f
			WHERE (f.user_lo = ?1 AND f.user_hi = users.id)
			   OR (f.user_hi = ?1 AND f.user_lo = users.id)
		 ), id`,
		id,
	)
}
