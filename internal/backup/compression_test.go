package backup

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressionForFile(t *testing.T) {
	tests := []struct {
		path     string
		expected CompressionType
	}{
		{"accounts.csv", CompressionTypeNone},
		{"accounts.csv.gz", CompressionTypeGzip},
		{"accounts.csv.GZIP", CompressionTypeGzip},
		{"accounts.csv.lz4", CompressionTypeLZ4},
		{"accounts.csv.zst", CompressionTypeZstd},
		{"accounts.csv.zstd", CompressionTypeZstd},
		{"", CompressionTypeNone},
		{"accounts", CompressionTypeNone},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, CompressionForFile(tt.path))
		})
	}
}

func TestDecompressionReader_RoundTrip(t *testing.T) {
	payload := []byte("Id,Name\n001xx1,Acme\n001xx2,Globex\n")

	tests := []struct {
		name      string
		algorithm CompressionType
		compress  func(*testing.T, []byte) []byte
	}{
		{"gzip", CompressionTypeGzip, gzipData},
		{"zstd", CompressionTypeZstd, zstdData},
		{"lz4", CompressionTypeLZ4, lz4Data},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compressed := tt.compress(t, payload)

			r, err := DecompressionReader(bytes.NewReader(compressed), tt.algorithm)
			require.NoError(t, err)

			out, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, payload, out)
		})
	}
}

func TestDecompressionReader_None(t *testing.T) {
	payload := []byte("Id\n")

	r, err := DecompressionReader(bytes.NewReader(payload), CompressionTypeNone)
	require.NoError(t, err)

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestDecompressionReader_UnknownAlgorithm(t *testing.T) {
	_, err := DecompressionReader(bytes.NewReader(nil), CompressionType("brotli"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported compression algorithm")
}

func TestDecompress_CorruptGzip(t *testing.T) {
	_, err := Decompress([]byte("definitely not gzip"), CompressionTypeGzip)
	require.Error(t, err)

	var backupErr *BackupError
	require.ErrorAs(t, err, &backupErr)
	assert.Equal(t, BackupErrorTypeCompression, backupErr.Type)
}

func TestDecompress_None(t *testing.T) {
	payload := []byte("Id\n")
	out, err := Decompress(payload, CompressionTypeNone)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}
