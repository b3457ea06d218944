package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/friendcircle/internal/apperror"
	"github.com/sakif/friendcircle/internal/model"
)

// newTestDB creates an in-memory SQLite database that disappears when the
// test finishes. Each call gets a fresh, isolated database.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser inserts a user with sensible defaults and fails the test on
// error. The password hash is a placeholder — these tests never log in.
func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$2a$10$fakefakefakefakefakefakefakefakefakefakefakefakefakef",
		DateOfBirth:  time.Date(1995, 6, 15, 0, 0, 0, 0, time.UTC),
		Gender:       model.GenderOther,
		Location:     "Dhaka",
		Hobbies:      []string{"chess", "hiking"},
	}
	if err := db.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user %q: %v", username, err)
	}
	return user
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hashed",
		DateOfBirth:  time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC),
		Gender:       model.GenderFemale,
		Bio:          "hello",
		Hobbies:      []string{"painting"},
		Profession:   "engineer",
	}

	if err := db.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.ID == "" {
		t.Error("Create() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Create() did not set user.CreatedAt")
	}
}

func TestUserCreate_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")

	dup := &model.User{
		Username:     "alice",
		Email:        "different@example.com", // other fields differ — still a conflict
		PasswordHash: "hashed",
		DateOfBirth:  time.Date(1988, 3, 4, 0, 0, 0, 0, time.UTC),
		Gender:       model.GenderMale,
	}
	err := db.Create(context.Background(), dup)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Create() with duplicate username error = %v, want ErrConflict", err)
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")

	dup := &model.User{
		Username:     "allie",
		Email:        "alice@example.com",
		PasswordHash: "hashed",
		DateOfBirth:  time.Date(1988, 3, 4, 0, 0, 0, 0, time.UTC),
		Gender:       model.GenderFemale,
	}
	err := db.Create(context.Background(), dup)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Create() with duplicate email error = %v, want ErrConflict", err)
	}
}

// =========================================================================
// LOOKUP TESTS
// =========================================================================

func TestGetByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "alice")

	got, err := db.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("GetByID() username = %q, want %q", got.Username, "alice")
	}
	if len(got.Hobbies) != 2 || got.Hobbies[0] != "chess" {
		t.Errorf("GetByID() hobbies = %v, want [chess hiking]", got.Hobbies)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "no-such-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestGetByUsername(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "bob")

	got, err := db.GetByUsername(context.Background(), "bob")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByUsername() ID = %q, want %q", got.ID, created.ID)
	}
}

func TestGetByUsername_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByUsername(context.Background(), "ghost")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetByUsername() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// SEARCH TESTS
// =========================================================================

func TestSearch_CaseInsensitiveContains(t *testing.T) {
	db := newTestDB(t)
	viewer := createTestUser(t, db, "viewer")
	createTestUser(t, db, "Alice")
	createTestUser(t, db, "maliceX")
	createTestUser(t, db, "bob")

	got, err := db.Search(context.Background(), viewer.ID, "ALIC")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Search() returned %d users, want 2: %+v", len(got), got)
	}
}

func TestSearch_ExcludesViewerAndFriends(t *testing.T) {
	db := newTestDB(t)
	viewer := createTestUser(t, db, "viewer")
	friend := createTestUser(t, db, "friend")
	createTestUser(t, db, "stranger")

	if err := db.Add(context.Background(), viewer.ID, friend.ID); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	got, err := db.Search(context.Background(), viewer.ID, "")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 1 || got[0].Username != "stranger" {
		t.Fatalf("Search() = %+v, want only stranger", got)
	}
}

func TestSearch_EmptyQueryMatchesAllEligible(t *testing.T) {
	db := newTestDB(t)
	viewer := createTestUser(t, db, "viewer")
	createTestUser(t, db, "alice")
	createTestUser(t, db, "bob")

	got, err := db.Search(context.Background(), viewer.ID, "")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Search() with empty query returned %d users, want 2", len(got))
	}
}

func TestListStrangers(t *testing.T) {
	db := newTestDB(t)
	viewer := createTestUser(t, db, "viewer")
	friend := createTestUser(t, db, "friend")
	createTestUser(t, db, "stranger")

	if err := db.Add(context.Background(), viewer.ID, friend.ID); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	got, err := db.ListStrangers(context.Background(), viewer.ID)
	if err != nil {
		t.Fatalf("ListStrangers() error = %v", err)
	}
	if len(got) != 1 || got[0].Username != "stranger" {
		t.Fatalf("ListStrangers() = %+v, want only stranger", got)
	}
}
