// Package fileid derives stable record IDs from the file a record was imported from.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strconv"
)

// Source returns the canonical source string for path: absolute and cleaned.
func Source(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("absolute path: %w", err)
	}
	return filepath.Clean(abs), nil
}

// RecordID returns the ID of the ordinal-th record of category imported
// from source. The same inputs always yield the same ID, so re-importing a
// file replaces its records instead of duplicating them.
func RecordID(source, category string, ordinal int) string {
	h := sha256.New()
	h.Write([]byte(filepath.Clean(source)))
	h.Write([]byte{0})
	h.Write([]byte(category))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(ordinal)))
	sum := h.Sum(nil)
	return category + "-" + hex.EncodeToString(sum[:12])
}
