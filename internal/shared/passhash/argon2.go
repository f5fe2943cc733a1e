package passhash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Parameters tuned for interactive logins.
const (
	memory      uint32 = 64 * 1024
	iterations  uint32 = 3
	parallelism uint8  = 2
	saltLength  uint32 = 16
	hashLength  uint32 = 32
)

// HashPassword returns a PHC formatted Argon2id hash string for the provided password.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, hashLength)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, memory, iterations, parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash)), nil
}

// VerifyPassword compares a plaintext password with a PHC formatted Argon2id hash.
func VerifyPassword(encoded, password string) (bool, error) {
	if encoded == "" {
		return false, errors.New("empty hash")
	}
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, errors.New("invalid hash format")
	}
	var m, t uint32
	var p uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
		return false, fmt.Errorf("invalid hash parameters: %w", err)
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, err
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, err
	}
	got := argon2.IDKey([]byte(password), salt, t, m, p, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// Credential is a configured login: an email and the Argon2id hash of its
// password. The plaintext password is never kept.
type Credential struct {
	Email string
	Hash  string
}

// Configured reports whether both parts of the credential are present.
func (c Credential) Configured() bool {
	return c.Email != "" && c.Hash != ""
}

// Matches reports whether email and password match the credential exactly.
// The email is compared byte for byte in constant time.
func (c Credential) Matches(email, password string) bool {
	if !c.Configured() || email == "" || password == "" {
		return false
	}
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(c.Email)) == 1
	ok, err := VerifyPassword(c.Hash, password)
	return emailOK && err == nil && ok
}
