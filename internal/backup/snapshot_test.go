package backup

import (
	"bytes"
	"compress/gzip"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func gzipData(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zstdData(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func lz4Data(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// encryptData mirrors the backup writer's scheme: 16-byte salt, then the
// GCM nonce, then the ciphertext.
func encryptData(t *testing.T, passphrase string, plaintext []byte) []byte {
	t.Helper()

	salt := make([]byte, saltSize)
	_, err := rand.Read(salt)
	require.NoError(t, err)

	ec := &EncryptionConfig{Passphrase: passphrase}
	block, err := aes.NewCipher(ec.DeriveKey(salt))
	require.NoError(t, err)
	gcm, err := cipher.NewGCM(block)
	require.NoError(t, err)

	nonce := make([]byte, gcm.NonceSize())
	_, err = rand.Read(nonce)
	require.NoError(t, err)

	out := append([]byte{}, salt...)
	out = append(out, nonce...)
	return append(out, gcm.Seal(nil, nonce, plaintext, nil)...)
}

func TestSnapshotReader_ReadHeader_PlainCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "accounts.csv", []byte("Id,Name,Industry\n001xx1,Acme,Tech\n"))

	columns, err := NewSnapshotReader(nil).ReadHeader(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Id", "Name", "Industry"}, columns)
}

func TestSnapshotReader_ReadHeader_StripsBOM(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "accounts.csv", []byte("\uFEFFId,Name\n001xx1,Acme\n"))

	columns, err := NewSnapshotReader(nil).ReadHeader(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Id", "Name"}, columns)
}

func TestSnapshotReader_ReadHeader_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "accounts.csv", nil)

	_, err := NewSnapshotReader(nil).ReadHeader(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestSnapshotReader_ReadHeader_MissingFile(t *testing.T) {
	_, err := NewSnapshotReader(nil).ReadHeader(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "not found")
}

func TestSnapshotReader_ReadHeader_Compressed(t *testing.T) {
	header := []byte("Id,Name\n001xx1,Acme\n")

	tests := []struct {
		name     string
		fileName string
		payload  func(*testing.T, []byte) []byte
	}{
		{"gzip", "accounts.csv.gz", gzipData},
		{"zstd", "accounts.csv.zst", zstdData},
		{"lz4", "accounts.csv.lz4", lz4Data},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, tt.fileName, tt.payload(t, header))

			columns, err := NewSnapshotReader(nil).ReadHeader(path)
			require.NoError(t, err)
			assert.Equal(t, []string{"Id", "Name"}, columns)
		})
	}
}

func TestSnapshotReader_ReadHeader_Encrypted(t *testing.T) {
	dir := t.TempDir()
	payload := encryptData(t, "secret", []byte("Id,Name\n001xx1,Acme\n"))
	path := writeFile(t, dir, "accounts.csv.enc", payload)

	reader := NewSnapshotReader(&EncryptionConfig{Passphrase: "secret"})
	columns, err := reader.ReadHeader(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Id", "Name"}, columns)
}

func TestSnapshotReader_ReadHeader_EncryptedCompressed(t *testing.T) {
	dir := t.TempDir()
	compressed := gzipData(t, []byte("Id,Name\n001xx1,Acme\n"))
	path := writeFile(t, dir, "accounts.csv.gz.enc", encryptData(t, "secret", compressed))

	reader := NewSnapshotReader(&EncryptionConfig{Passphrase: "secret"})
	columns, err := reader.ReadHeader(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Id", "Name"}, columns)
}

func TestSnapshotReader_ReadHeader_WrongPassphrase(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "accounts.csv.enc", encryptData(t, "secret", []byte("Id\n")))

	reader := NewSnapshotReader(&EncryptionConfig{Passphrase: "wrong"})
	_, err := reader.ReadHeader(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "wrong passphrase")
}

func TestSnapshotReader_ReadHeader_EncryptedWithoutPassphrase(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "accounts.csv.enc", encryptData(t, "secret", []byte("Id\n")))

	_, err := NewSnapshotReader(nil).ReadHeader(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "no passphrase")
}

func TestSnapshotReader_HasIdentifierColumn(t *testing.T) {
	dir := t.TempDir()
	reader := NewSnapshotReader(nil)

	withID := writeFile(t, dir, "with-id.csv", []byte("Name,id,Industry\n"))
	has, err := reader.HasIdentifierColumn(withID)
	require.NoError(t, err)
	assert.True(t, has)

	withoutID := writeFile(t, dir, "without-id.csv", []byte("Name,Industry\n"))
	has, err = reader.HasIdentifierColumn(withoutID)
	require.NoError(t, err)
	assert.False(t, has)
}
