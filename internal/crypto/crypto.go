// Package crypto seals menu blobs for remote storage and derives keys.
//
// A sealed blob is a 16-byte header (4-byte magic/version tag followed by a
// 12-byte random nonce) and the AES-256-GCM ciphertext including its tag.
// The magic is checked before any cryptographic work so foreign or corrupt
// blobs fail fast with ErrInvalidHeader.
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

const (
	// KeyLen is the AES-256 key length in bytes.
	KeyLen = 32
	// nonceLen is the GCM nonce length in bytes.
	nonceLen = 12
	// HeaderLen is magic plus nonce.
	HeaderLen = len(BlobMagic) + nonceLen
	// SaltLen is the Argon2id salt length in bytes.
	SaltLen = 16
	// hkdfInfo binds secret-derived keys to their use.
	hkdfInfo = "menuboard-cloud-blob"

	// Argon2id parameters.
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// BlobMagic tags version 1 of the sealed cloud blob.
const BlobMagic = "MNB1"

var (
	// ErrInvalidHeader means the blob does not start with the expected magic.
	ErrInvalidHeader = errors.New("invalid blob header")
	// ErrShortBlob means the blob is too short to hold a header and tag.
	ErrShortBlob = errors.New("blob too short")
)

// Encrypt encrypts plaintext using AES-256-GCM with a fresh random nonce.
// Returns nonce || ciphertext.
func Encrypt(key, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("random nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt decrypts nonce || ciphertext produced by Encrypt.
func Decrypt(key, data []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(data) < nonceLen+gcm.Overhead() {
		return nil, ErrShortBlob
	}

	plaintext, err := gcm.Open(nil, data[:nonceLen], data[nonceLen:], nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}

// Seal encrypts plaintext into a tagged blob: magic || nonce || ciphertext.
func Seal(key, plaintext []byte) ([]byte, error) {
	return SealWithMagic(BlobMagic, key, plaintext)
}

// Open verifies the blob magic and decrypts it.
func Open(key, blob []byte) ([]byte, error) {
	return OpenWithMagic(BlobMagic, key, blob)
}

// SealWithMagic is Seal with a caller-chosen 4-byte tag.
func SealWithMagic(magic string, key, plaintext []byte) ([]byte, error) {
	if len(magic) != len(BlobMagic) {
		return nil, fmt.Errorf("magic must be %d bytes", len(BlobMagic))
	}
	body, err := Encrypt(key, plaintext)
	if err != nil {
		return nil, err
	}
	return append([]byte(magic), body...), nil
}

// OpenWithMagic checks the tag before decrypting.
func OpenWithMagic(magic string, key, blob []byte) ([]byte, error) {
	if !HasMagic(magic, blob) {
		return nil, ErrInvalidHeader
	}
	return Decrypt(key, blob[len(magic):])
}

// HasMagic reports whether blob starts with magic.
func HasMagic(magic string, blob []byte) bool {
	return len(blob) >= len(magic) && bytes.Equal(blob[:len(magic)], []byte(magic))
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeyLen {
		return nil, fmt.Errorf("key must be %d bytes", KeyLen)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w", err)
	}
	return gcm, nil
}

// KeyFromSecret turns the configured pre-shared secret into an AES key.
// 64 hex characters are taken as the raw key; any other secret is expanded
// with HKDF-SHA256.
func KeyFromSecret(secret string) ([]byte, error) {
	if secret == "" {
		return nil, errors.New("empty secret")
	}
	if len(secret) == 2*KeyLen {
		if raw, err := hex.DecodeString(secret); err == nil {
			return raw, nil
		}
	}

	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo))
	key := make([]byte, KeyLen)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}
	return key, nil
}

// DeriveKeyFromPassphrase derives a 256-bit key from a passphrase using
// Argon2id with a fresh random salt.
func DeriveKeyFromPassphrase(passphrase string) (key, salt []byte, err error) {
	salt = make([]byte, SaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, nil, fmt.Errorf("random salt: %w", err)
	}
	key = argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, KeyLen)
	return key, salt, nil
}

// DeriveKeyFromPassphraseWithSalt re-derives a key from a stored salt.
func DeriveKeyFromPassphraseWithSalt(passphrase string, salt []byte) ([]byte, error) {
	if len(salt) != SaltLen {
		return nil, fmt.Errorf("salt must be %d bytes", SaltLen)
	}
	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, KeyLen), nil
}

// GenerateKey returns a random 256-bit key, hex encoded, suitable for the
// cloud secret setting.
func GenerateKey() (string, error) {
	key := make([]byte, KeyLen)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("random key: %w", err)
	}
	return hex.EncodeToString(key), nil
}
