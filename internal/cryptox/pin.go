// Package cryptox wraps the one-way hashing primitives used for PINs.
package cryptox

import "golang.org/x/crypto/bcrypt"

// HashPin hashes a 4-digit PIN with bcrypt at the default cost.
func HashPin(pin string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
}

// CheckPin reports whether pin matches hash. bcrypt's comparison is
// constant-time with respect to the candidate.
func CheckPin(hash []byte, pin string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(pin)) == nil
}
