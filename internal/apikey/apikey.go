// Package apikey validates and mints API keys. Only SHA-256 digests of
// keys are ever stored.
package apikey

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Prefix marks production keys.
const Prefix = "sk_live_"

// KeyStore looks keys up by digest.
type KeyStore interface {
	LookupKey(ctx context.Context, hash string) (bool, error)
}

type Validator struct {
	keys KeyStore
	log  zerolog.Logger
}

func NewValidator(keys KeyStore, log zerolog.Logger) *Validator {
	return &Validator{keys: keys, log: log}
}

// ValidateAPIKey reports whether key is well formed and known. Store errors
// count as invalid.
func (v *Validator) ValidateAPIKey(ctx context.Context, key string) bool {
	key = strings.TrimSpace(key)
	if !strings.HasPrefix(key, Prefix) || len(key) == len(Prefix) {
		return false
	}
	ok, err := v.keys.LookupKey(ctx, Hash(key))
	if err != nil {
		v.log.Error().Err(err).Msg("api key lookup failed")
		return false
	}
	return ok
}

// Hash returns the hex SHA-256 digest of key.
func Hash(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Generate mints a new random key.
func Generate() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return Prefix + hex.EncodeToString(b), nil
}
