package backup

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// EncryptedExt marks a snapshot file as AES-256-GCM encrypted by the
	// backup writer. The extension sits outside the compression extension:
	// accounts.csv.gz.enc is encrypted gzip.
	EncryptedExt = ".enc"

	keyIterations = 100000
	saltSize      = 16
)

// EncryptionConfig holds decryption settings for encrypted snapshots.
// The planner only ever decrypts; encryption belongs to the backup writer.
type EncryptionConfig struct {
	Passphrase string `mapstructure:"passphrase" yaml:"passphrase"`
}

// Enabled reports whether a passphrase is configured.
func (ec *EncryptionConfig) Enabled() bool {
	return ec != nil && ec.Passphrase != ""
}

// DeriveKey derives the AES-256 key from the passphrase and a per-file salt
// using PBKDF2-SHA256, matching the backup writer's scheme.
func (ec *EncryptionConfig) DeriveKey(salt []byte) []byte {
	return pbkdf2.Key([]byte(ec.Passphrase), salt, keyIterations, 32, sha256.New)
}

// Decrypt decrypts an encrypted snapshot payload. Layout: 16-byte salt,
// GCM nonce, ciphertext.
func (ec *EncryptionConfig) Decrypt(data []byte) ([]byte, error) {
	if !ec.Enabled() {
		return nil, NewEncryptionError("snapshot is encrypted but no passphrase is configured", nil)
	}
	if len(data) < saltSize {
		return nil, NewEncryptionError("encrypted snapshot is truncated", nil)
	}

	salt, payload := data[:saltSize], data[saltSize:]
	key := ec.DeriveKey(salt)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, NewEncryptionError("failed to create AES cipher", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, NewEncryptionError("failed to create GCM cipher", err)
	}

	if len(payload) < gcm.NonceSize() {
		return nil, NewEncryptionError("encrypted snapshot is truncated", nil)
	}
	nonce, ciphertext := payload[:gcm.NonceSize()], payload[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, NewEncryptionError("snapshot decryption failed: wrong passphrase or corrupted file", err)
	}
	return plaintext, nil
}
