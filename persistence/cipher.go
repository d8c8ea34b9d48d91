package persistence

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// PBKDF2Iterations is the number of iterations for key derivation (NIST recommendation)
	PBKDF2Iterations = 100000
	// EncryptionVersion is the current sealed profile format version
	EncryptionVersion = 1
	// SaltSize is the size of the salt for PBKDF2
	SaltSize = 32
)

// sealedMagic prefixes every sealed profile so plaintext profiles can be told apart.
var sealedMagic = []byte("ECHOBOT\x00")

// Cipher seals profile blobs with AES-256-GCM under a passphrase-derived key.
// Format: [magic:8][version:2][salt:32][nonce:12][ciphertext+tag:N]
//
// The derived key is cached per salt, so repeated saves of the same profile
// pay the PBKDF2 cost once.
type Cipher struct {
	passphrase []byte
	salt       []byte
	key        []byte
}

// NewCipher creates a Cipher for the given passphrase.
func NewCipher(passphrase []byte) (*Cipher, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("passphrase cannot be empty")
	}
	p := make([]byte, len(passphrase))
	copy(p, passphrase)
	return &Cipher{passphrase: p}, nil
}

// IsSealed reports whether data carries the sealed profile header.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, sealedMagic)
}

// deriveKey returns the key for salt, reusing the cached key when the salt matches.
func (c *Cipher) deriveKey(salt []byte) []byte {
	if c.key != nil && bytes.Equal(c.salt, salt) {
		return c.key
	}
	c.salt = append(c.salt[:0], salt...)
	c.key = pbkdf2.Key(c.passphrase, salt, PBKDF2Iterations, 32, sha256.New)
	return c.key
}

// Seal encrypts plaintext. The salt of the last opened profile is kept so
// the same file keeps the same salt across rewrites; a fresh salt is drawn
// otherwise.
func (c *Cipher) Seal(plaintext []byte) ([]byte, error) {
	salt := c.salt
	if len(salt) != SaltSize {
		salt = make([]byte, SaltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return nil, fmt.Errorf("failed to generate salt: %w", err)
		}
	}

	gcm, err := newGCM(c.deriveKey(salt))
	if err != nil {
		return nil, err
	}

	// Generate unique nonce (critical for GCM security)
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	header := make([]byte, 0, len(sealedMagic)+2+SaltSize+len(nonce))
	header = append(header, sealedMagic...)
	header = binary.BigEndian.AppendUint16(header, EncryptionVersion)
	header = append(header, salt...)
	header = append(header, nonce...)

	// The header is authenticated as additional data.
	return gcm.Seal(header, nonce, plaintext, header), nil
}

// Open decrypts a sealed profile.
func (c *Cipher) Open(data []byte) ([]byte, error) {
	if !IsSealed(data) {
		return nil, fmt.Errorf("%w: missing header", ErrDecrypt)
	}
	rest := data[len(sealedMagic):]
	if len(rest) < 2+SaltSize {
		return nil, fmt.Errorf("%w: truncated header", ErrDecrypt)
	}

	version := binary.BigEndian.Uint16(rest[0:2])
	if version != EncryptionVersion {
		return nil, fmt.Errorf("%w: %d (expected %d)", ErrUnsupportedVersion, version, EncryptionVersion)
	}
	salt := rest[2 : 2+SaltSize]

	gcm, err := newGCM(c.deriveKey(salt))
	if err != nil {
		return nil, err
	}

	headerLen := len(sealedMagic) + 2 + SaltSize + gcm.NonceSize()
	if len(data) < headerLen+gcm.Overhead() {
		return nil, fmt.Errorf("%w: file too short (%d bytes)", ErrDecrypt, len(data))
	}
	header := data[:headerLen]
	nonce := data[headerLen-gcm.NonceSize() : headerLen]

	plaintext, err := gcm.Open(nil, nonce, data[headerLen:], header)
	if err != nil {
		return nil, fmt.Errorf("%w (wrong passphrase or corrupted data): %v", ErrDecrypt, err)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
