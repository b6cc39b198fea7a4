package model

// Hasher provides one-way salted password hashing and verification.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Compare(plaintext, digest string) bool
}
