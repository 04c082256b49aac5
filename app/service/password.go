package service

import "golang.org/x/crypto/bcrypt"

// HashPassword produces a salted one-way hash of the plaintext. Two calls on
// the same input yield different output.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plaintext matches the stored hash. A
// malformed stored hash counts as a mismatch.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
