// Package vault manages the key file that seals payment fields at rest.
package vault

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	cryptohelper "fundingintake/internal/shared/crypto"
)

// Exists checks if the key file exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Generate creates and stores a new random key. It refuses to overwrite an
// existing key, since records sealed with it would become unreadable.
func Generate(path string) ([]byte, error) {
	if Exists(path) {
		return nil, fmt.Errorf("vault key already exists at %s", path)
	}
	key := make([]byte, cryptohelper.KeyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	if err := Save(path, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Save writes key to disk base64 encoded with 0600 perms.
func Save(path string, key []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	b64 := base64.StdEncoding.EncodeToString(key)
	return os.WriteFile(path, []byte(b64), 0o600)
}

// Load reads the key from disk.
func Load(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(b)))
	if err != nil {
		return nil, fmt.Errorf("decode vault key: %w", err)
	}
	if len(key) != cryptohelper.KeyLength {
		return nil, errors.New("invalid key length")
	}
	return key, nil
}

// LoadOrGenerate loads the key at path, generating it on first use. The
// second return value reports whether a new key was created.
func LoadOrGenerate(path string) ([]byte, bool, error) {
	key, err := Load(path)
	if err == nil {
		return key, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, err
	}
	key, err = Generate(path)
	if err != nil {
		return nil, false, err
	}
	return key, true, nil
}
