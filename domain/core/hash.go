package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// DatasetFingerprint identifies an observation set by content, so a run
// manifest can be tied back to the exact data it was computed from.
type DatasetFingerprint Hash

func (h DatasetFingerprint) String() string { return Hash(h).String() }

// ComputeDatasetFingerprint hashes the ordered observation rows. Rows must be
// rendered deterministically by the caller (fixed column order, fixed formats).
func ComputeDatasetFingerprint(rows []string) DatasetFingerprint {
	var data strings.Builder
	for i, row := range rows {
		data.WriteString(fmt.Sprintf("%d|%s\n", i, row))
	}
	return DatasetFingerprint(NewHash([]byte(data.String())))
}
