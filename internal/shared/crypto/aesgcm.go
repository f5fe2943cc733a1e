package cryptohelper

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
)

// KeyLength is the AES-256 key size.
const KeyLength = 32

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// Sealer encrypts small blobs with AES-256-GCM. Output is nonce||ciphertext;
// aad binds the blob to its context and must be the same on Open.
type Sealer struct {
	aead cipher.AEAD
}

func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != KeyLength {
		return nil, fmt.Errorf("invalid key length %d, want %d", len(key), KeyLength)
	}
	blk, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(blk)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: gcm}, nil
}

func (s *Sealer) Seal(plaintext, aad []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return s.aead.Seal(nonce, nonce, plaintext, aad), nil
}

func (s *Sealer) Open(ciphertext, aad []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(ciphertext) < n {
		return nil, ErrCiphertextTooShort
	}
	return s.aead.Open(nil, ciphertext[:n], ciphertext[n:], aad)
}
