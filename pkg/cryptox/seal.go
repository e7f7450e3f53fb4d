// Package cryptox seals the persisted refresh token so it is never written
// to disk in the clear. Sealing uses AES-256-GCM under a machine-local
// master key file.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Sealer performs authenticated encryption with a key derived from local
// key material. The sealed format is [nonce][ciphertext][auth tag].
type Sealer struct {
	key []byte
}

// NewSealer loads the master key from path, creating it with fresh random
// material on first use. The raw file contents are hashed with SHA-256 to
// derive the AES-256 key, so any key material length is acceptable.
func NewSealer(path string) (*Sealer, error) {
	material, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		material, err = generateKeyFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("cryptox: load master key: %w", err)
	}

	sum := sha256.Sum256(material)
	return &Sealer{key: sum[:]}, nil
}

func generateKeyFile(path string) ([]byte, error) {
	material := make([]byte, 32)
	if _, err := rand.Read(material); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, material, 0o600); err != nil {
		return nil, err
	}
	return material, nil
}

// Seal encrypts and authenticates plaintext with a random nonce.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	gcm, err := s.gcm()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("cryptox: generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts data produced by Seal, verifying the authentication tag.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	gcm, err := s.gcm()
	if err != nil {
		return nil, err
	}

	if len(sealed) < gcm.NonceSize() {
		return nil, fmt.Errorf("cryptox: sealed data too short")
	}

	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("cryptox: open: %w", err)
	}
	return plaintext, nil
}

func (s *Sealer) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, fmt.Errorf("cryptox: create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
