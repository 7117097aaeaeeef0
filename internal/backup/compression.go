package backup

import (
	"bytes"
	"compress/gzip"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType identifies the compression algorithm of a snapshot file.
type CompressionType string

const (
	CompressionTypeNone CompressionType = "none"
	CompressionTypeGzip CompressionType = "gzip"
	CompressionTypeLZ4  CompressionType = "lz4"
	CompressionTypeZstd CompressionType = "zstd"
)

// CompressionForFile derives the compression algorithm from a snapshot
// file name. Backup writers append the algorithm extension to the CSV name.
func CompressionForFile(path string) CompressionType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CompressionTypeGzip
	case ".lz4":
		return CompressionTypeLZ4
	case ".zst", ".zstd":
		return CompressionTypeZstd
	default:
		return CompressionTypeNone
	}
}

// DecompressionReader wraps a snapshot stream with the decompressor for the
// given algorithm. The caller owns closing the underlying reader.
func DecompressionReader(r io.Reader, algorithm CompressionType) (io.Reader, error) {
	switch algorithm {
	case CompressionTypeNone:
		return r, nil
	case CompressionTypeGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, NewCompressionError("failed to open gzip snapshot stream", err)
		}
		return gz, nil
	case CompressionTypeLZ4:
		return lz4.NewReader(r), nil
	case CompressionTypeZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, NewCompressionError("failed to open zstd snapshot stream", err)
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, NewCompressionError("unsupported compression algorithm: "+string(algorithm), nil)
	}
}

// Decompress decompresses a whole snapshot payload in memory. Used for
// encrypted snapshots where the ciphertext must be read fully first.
func Decompress(data []byte, algorithm CompressionType) ([]byte, error) {
	if algorithm == CompressionTypeNone {
		return data, nil
	}
	r, err := DecompressionReader(bytes.NewReader(data), algorithm)
	if err != nil {
		return nil, err
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, NewCompressionError("failed to decompress snapshot data", err)
	}
	return out, nil
}
