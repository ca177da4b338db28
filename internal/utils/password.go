package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a given password using bcrypt with cost 10.
// Hashing must only ever run on a freshly supplied plaintext; callers are
// responsible for never re-hashing a stored hash on unrelated updates.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	return string(bytes), err
}

// CheckPasswordHash compares a plain password with its hashed version.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
