package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/friendcircle/internal/apperror"
	"github.com/sakif/friendcircle/internal/model"
	"github.com/sakif/friendcircle/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// userColumns is the SELECT list every user query shares; scanUser must
// match its order.
const userColumns = `id, username, email, password_hash, date_of_birth,
	gender, location, bio, hobbies, profession, avatar_url, created_at`

// Create inserts a new identity record. The caller provides the password
// already hashed; this layer never sees plaintext.
//
// The ID (xid: 20 chars, URL-safe, time-sortable) and CreatedAt are assigned
// here and written back through the pointer. A UNIQUE violation on username
// or email comes back as apperror.Conflict — the store does not pre-check,
// it lets the constraint decide so two concurrent signups cannot both win.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now()

	hobbies, err := json.Marshal(user.Hobbies)
	if err != nil {
		return fmt.Errorf("sqlite: encoding hobbies: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, date_of_birth,
			gender, location, bio, hobbies, profession, avatar_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.DateOfBirth,
		string(user.Gender),
		user.Location,
		user.Bio,
		string(hobbies),
		user.Profession,
		user.AvatarURL,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("username or email already taken")
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Username, mapErr(err))
	}

	return nil
}

// GetByID retrieves a user by its internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, mapErr(err))
	}
	return user, nil
}

// GetByUsername retrieves a user by its unique username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)

	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user by username %s: %w", username, mapErr(err))
	}
	return user, nil
}

// Search returns users whose username contains query (case-insensitive),
// excluding the viewer and everyone already in the viewer's friend set.
// An empty query matches all eligible users.
func (db *DB) Search(ctx context.Context, viewerID, query string) ([]model.User, error) {
	return db.queryUsers(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE id != ?1
		   AND (?2 = '' OR instr(lower(username), lower(?2)) > 0)
		   AND id NOT IN (
			SELECT user_hi FROM friendships WHERE user_lo = ?1
			UNION
			SELECT user_lo FROM friendships WHERE user_hi = ?1
		   )
		 ORDER BY username`,
		viewerID, query,
	)
}

// ListStrangers returns every user except the viewer and the viewer's
// friends — the candidate pool for new friendships.
func (db *DB) ListStrangers(ctx context.Context, viewerID string) ([]model.User, error) {
	return db.Search(ctx, viewerID, "")
}

func (db *DB) queryUsers(ctx context.Context, query string, args ...any) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying users: %w", mapErr(err))
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", mapErr(err))
	}

	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*model.User, error) {
	var (
		u       model.User
		gender  string
		hobbies string
	)
	err := s.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.DateOfBirth,
		&gender,
		&u.Location,
		&u.Bio,
		&hobbies,
		&u.Profession,
		&u.AvatarURL,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.Gender = model.Gender(gender)
	if err := json.Unmarshal([]byte(hobbies), &u.Hobbies); err != nil {
		return nil, fmt.Errorf("decoding hobbies for user %s: %w", u.ID, err)
	}
	return &u, nil
}
