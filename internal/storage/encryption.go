package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/argon2"
)

// encryptionHeader marks encrypted backup files.
const encryptionHeader = "DECKENC1"

// Argon2id parameters (RFC 9106 second recommended option).
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // KiB
	argon2Threads = 4
	keyLength     = 32 // AES-256
	saltLength    = 16
)

var (
	// ErrPasswordRequired is returned when encrypting or decrypting without a password.
	ErrPasswordRequired = errors.New("password required")

	// ErrDecryptFailed is returned for a wrong password or tampered data.
	ErrDecryptFailed = errors.New("decryption failed: wrong password or corrupted data")
)

func deriveKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, keyLength)
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// EncryptData seals plaintext with AES-256-GCM under an Argon2id key.
// The result is salt || nonce || ciphertext.
func EncryptData(plaintext []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, ErrPasswordRequired
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, len(salt)+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// DecryptData opens data produced by EncryptData.
func DecryptData(data []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if len(data) < saltLength {
		return nil, ErrDecryptFailed
	}

	gcm, err := newGCM(password, data[:saltLength])
	if err != nil {
		return nil, err
	}

	data = data[saltLength:]
	if len(data) < gcm.NonceSize()+gcm.Overhead() {
		return nil, ErrDecryptFailed
	}

	plaintext, err := gcm.Open(nil, data[:gcm.NonceSize()], data[gcm.NonceSize():], nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}

// encryptFile writes an encrypted copy of src to dst.
func encryptFile(src, dst, password string) error {
	plaintext, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}

	sealed, err := EncryptData(plaintext, password)
	if err != nil {
		return err
	}

	return os.WriteFile(dst, append([]byte(encryptionHeader), sealed...), 0o600)
}

// decryptFile writes the decrypted contents of src to dst.
func decryptFile(src, dst, password string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	if len(data) < len(encryptionHeader) || string(data[:len(encryptionHeader)]) != encryptionHeader {
		return fmt.Errorf("%s is not an encrypted backup", src)
	}

	plaintext, err := DecryptData(data[len(encryptionHeader):], password)
	if err != nil {
		return err
	}

	return os.WriteFile(dst, plaintext, 0o600)
}

// IsEncrypted reports whether the file at path starts with the encryption header.
func IsEncrypted(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()

	header := make([]byte, len(encryptionHeader))
	if _, err := io.ReadFull(f, header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, err
	}
	return string(header) == encryptionHeader, nil
}
