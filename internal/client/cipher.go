package client

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Cipher applies transparent field-level encryption to titles before
// transmission and reverses it after fetch. The ordering engine never sees
// the wire form; everything else about a task travels in the clear.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// NoopCipher passes titles through unchanged. Used when no encryption key is
// configured.
type NoopCipher struct{}

func (NoopCipher) Encrypt(s string) (string, error) { return s, nil }
func (NoopCipher) Decrypt(s string) (string, error) { return s, nil }

// AESCipher encrypts titles with AES-256-GCM. The wire form is
// base64(nonce || ciphertext). Decrypt returns inputs it cannot decode
// unchanged, so rows written before encryption was enabled keep working.
type AESCipher struct {
	aead cipher.AEAD
}

// NewAESCipher derives a 256-bit key from the passphrase.
func NewAESCipher(passphrase string) (*AESCipher, error) {
	key := sha256.Sum256([]byte(passphrase))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("client.NewAESCipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("client.NewAESCipher: %w", err)
	}
	return &AESCipher{aead: aead}, nil
}

func (c *AESCipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("client.AESCipher.Encrypt: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *AESCipher) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil || len(raw) <= c.aead.NonceSize() {
		// Not our wire form; assume legacy plaintext.
		return ciphertext, nil
	}
	nonce, sealed := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return ciphertext, nil
	}
	return string(plain), nil
}
