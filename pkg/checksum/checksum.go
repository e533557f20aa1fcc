// Package checksum computes content digests of artifact files for
// tamper detection.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/tablewarden/tablewarden/pkg/errors"
)

// None is the sentinel digest for a file that does not exist.
const None = ""

// File returns the hex-encoded SHA-256 digest of the file's contents.
// A non-existent file yields None, not an error; other read failures
// wrap as IO errors.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return None, nil
		}
		return None, errors.WrapIO("read", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return None, errors.WrapIO("read", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Bytes returns the hex-encoded SHA-256 digest of a byte slice.
func Bytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
