package backup

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"strings"
)

// SnapshotReader reads row-oriented backup snapshot files. Snapshots are
// CSV with a header row of field names, optionally compressed and
// optionally encrypted by the backup writer.
type SnapshotReader struct {
	encryption *EncryptionConfig
}

// NewSnapshotReader creates a new SnapshotReader instance.
func NewSnapshotReader(encryption *EncryptionConfig) *SnapshotReader {
	return &SnapshotReader{encryption: encryption}
}

// ReadHeader returns the column names of a snapshot file. Only the header
// row is decoded; the planner never materializes snapshot rows.
func (sr *SnapshotReader) ReadHeader(path string) ([]string, error) {
	r, closeFn, err := sr.open(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, NewSnapshotError("snapshot file is empty", nil).WithContext("path", path)
	}
	if err != nil {
		return nil, NewSnapshotError("failed to read snapshot header", err).WithContext("path", path)
	}

	columns := make([]string, 0, len(header))
	for _, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\uFEFF"))
		if col != "" {
			columns = append(columns, col)
		}
	}
	if len(columns) == 0 {
		return nil, NewSnapshotError("snapshot header has no columns", nil).WithContext("path", path)
	}
	return columns, nil
}

// HasIdentifierColumn reports whether the snapshot header carries the
// system record identifier column.
func (sr *SnapshotReader) HasIdentifierColumn(path string) (bool, error) {
	columns, err := sr.ReadHeader(path)
	if err != nil {
		return false, err
	}
	for _, col := range columns {
		if strings.EqualFold(col, "Id") {
			return true, nil
		}
	}
	return false, nil
}

// open resolves encryption and compression layers for a snapshot file.
func (sr *SnapshotReader) open(path string) (io.Reader, func(), error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, NewNotFoundError("snapshot file not found", err).WithContext("path", path)
		}
		return nil, nil, NewSnapshotError("failed to open snapshot file", err).WithContext("path", path)
	}

	dataPath := path
	if strings.HasSuffix(strings.ToLower(path), EncryptedExt) {
		// Encrypted snapshots must be read fully before the header is
		// available; GCM authenticates the whole payload.
		ciphertext, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, nil, NewSnapshotError("failed to read encrypted snapshot", err).WithContext("path", path)
		}
		plaintext, err := sr.encryption.Decrypt(ciphertext)
		if err != nil {
			return nil, nil, err
		}
		dataPath = strings.TrimSuffix(path, EncryptedExt)
		decompressed, err := Decompress(plaintext, CompressionForFile(dataPath))
		if err != nil {
			return nil, nil, err
		}
		return bytes.NewReader(decompressed), func() {}, nil
	}

	reader, err := DecompressionReader(file, CompressionForFile(dataPath))
	if err != nil {
		file.Close()
		return nil, nil, err
	}
	return reader, func() { file.Close() }, nil
}
