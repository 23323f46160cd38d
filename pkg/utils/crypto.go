package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	cipherSaltLength = 16
	cipherKeyLength  = 32
	cipherIterations = 100_000
)

var ErrDecryptionFailed = errors.New("decryption failed")

func deriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, cipherIterations, cipherKeyLength, sha256.New)
}

// EncryptWithPassword encrypts plaintext with AES-256-GCM under a key derived
// from the password via PBKDF2. Output is base64(salt || nonce || ciphertext).
func EncryptWithPassword(plaintext, password string) (string, error) {
	salt := make([]byte, cipherSaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)

	out := make([]byte, 0, len(salt)+len(nonce)+len(sealed))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, sealed...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// DecryptWithPassword reverses EncryptWithPassword. A wrong password, a
// truncated envelope, or tampered ciphertext all return ErrDecryptionFailed.
func DecryptWithPassword(ciphertext, password string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	if len(data) < cipherSaltLength {
		return "", ErrDecryptionFailed
	}

	salt, rest := data[:cipherSaltLength], data[cipherSaltLength:]

	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(rest) < gcm.NonceSize() {
		return "", ErrDecryptionFailed
	}
	nonce, sealed := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}
