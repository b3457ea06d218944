// Package model defines the data structures used throughout the application.
package model

import (
	"fmt"
	"time"
)

// Gender is the profile gender enum carried over from signup.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ParseGender normalizes and validates a gender value from user input.
func ParseGender(s string) (Gender, error) {
	switch Gender(s) {
	case GenderMale, GenderFemale, GenderOther:
		return Gender(s), nil
	}
	return "", fmt.Errorf("unknown gender %q", s)
}

// User represents a registered identity.
//
// Credentials (Username, Email, PasswordHash) are set once at signup and are
// immutable afterwards. The friendship relation is NOT stored on the user
// record — it lives in its own pair-keyed table (see repository/sqlite) so
// that symmetry and no-duplicate-edge hold structurally instead of being
// re-established on every write.
//
// PasswordHash is tagged `json:"-"`: the bcrypt hash must never appear in a
// response body.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DateOfBirth  time.Time `json:"dateOfBirth"`
	Gender       Gender    `json:"gender"`
	Location     string    `json:"location,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	Hobbies      []string  `json:"hobbies,omitempty"`
	Profession   string    `json:"profession,omitempty"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
