package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor (2^10 iterations). bcrypt generates
// a random per-password salt and embeds it in the output, so equal passwords
// still produce distinct hashes and no separate salt column is needed.
const defaultCost = 10

// dummyHash is a valid bcrypt hash of a random string nobody knows. Login
// compares against it when the username does not exist, so the unknown-user
// path costs the same as a wrong-password comparison and account existence
// cannot be probed through response timing.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// PasswordService provides bcrypt hashing and verification. The cost is a
// field so tests can drop it to the minimum instead of paying ~100ms per
// hash.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the production cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with a custom (usually
// minimum) cost. Not for production use.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes the given plaintext password. The result is self-contained
// (salt and cost included) and is the only form the password is ever stored
// in.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		// bcrypt silently truncates beyond 72 bytes; reject instead.
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks plaintext against a stored hash. Returns nil on match.
// The comparison is constant-time inside bcrypt.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: invalid password")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}

// VerifyDummy burns one bcrypt comparison against the dummy hash. It always
// reports failure; callers use it to equalize timing on the unknown-user
// login path.
func (p *PasswordService) VerifyDummy(plaintext string) error {
	bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(plaintext))
	return errors.New("auth: invalid password")
}
