package checksum

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
)

// blockSize is the read size used when streaming input through the digest.
// Large files are never held in memory as a single unit.
const blockSize = 4096

// Sum computes the content digest of everything readable from r.
// The digest is the document's dedup key: identical bytes always produce
// the identical digest. MD5 is a content fingerprint here, not a security
// boundary.
func Sum(r io.Reader) (string, error) {
	h := md5.New()
	buf := make([]byte, blockSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read content: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SumBytes computes the digest of an in-memory document.
func SumBytes(data []byte) string {
	sum, _ := Sum(bytes.NewReader(data))
	return sum
}
