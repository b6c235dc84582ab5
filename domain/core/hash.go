package core

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
)

// Hash represents a hex-encoded digest
type Hash string

// NewHash creates a new SHA-256 hash from data
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

// HashFile streams a file through SHA-256
func HashFile(path string) (Hash, error) {
	return digestFile(path, sha256.New())
}

// MD5File streams a file through MD5. Only used for input manifests,
// where md5 is the established checksum column.
func MD5File(path string) (Hash, error) {
	return digestFile(path, md5.New())
}

func digestFile(path string, h hash.Hash) (Hash, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for hashing: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, 1<<16)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return Hash(hex.EncodeToString(h.Sum(nil))), nil
}
