package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// APIKey authenticates callers of the HTTP API. Only the SHA-256 hash is
// stored; the key itself is returned once, at creation.
type APIKey struct {
	ID         string     `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	KeyHash    string     `json:"-" db:"key_hash"`
	Prefix     string     `json:"prefix" db:"prefix"` // first few characters, for identification
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
}

// MintAPIKey draws a fresh key secret and returns it with its stored
// hash and display prefix. The secret leaves the process exactly once,
// in the create response.
func MintAPIKey() (secret, hash, prefix string, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", "", err
	}
	secret = "wsc_" + hex.EncodeToString(raw)
	return secret, HashAPIKey(secret), secret[:12], nil
}

// HashAPIKey derives the stored lookup hash for a key secret. Plain
// SHA-256: secrets are high-entropy, and the hash doubles as an index
// column, so salting or stretching would buy nothing.
func HashAPIKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// CreateAPIKeyRequest is the request body for creating an API key.
type CreateAPIKeyRequest struct {
	Name string `json:"name"`
}

// CreateAPIKeyResponse carries the one-time plaintext key.
type CreateAPIKeyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Key       string    `json:"key"`
	Prefix    string    `json:"prefix"`
	CreatedAt time.Time `json:"created_at"`
}
