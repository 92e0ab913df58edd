package password

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const hashCost = 12

// Hash returns the bcrypt hash stored for admin credentials.
func Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify checks whether a password matches the stored bcrypt hash.
func Verify(password, encoded string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
}

// IsHashed reports whether the stored value is a bcrypt hash. Rows seeded
// before hashing was introduced hold the raw password and are upgraded on
// first successful login.
func IsHashed(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}
