package util

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// HashingReader accumulates a sha256 and byte count of everything read
// through it.
type HashingReader struct {
	r    io.Reader
	h    hash.Hash
	size int64
}

// NewHashingReader wraps r.
func NewHashingReader(r io.Reader) *HashingReader {
	return &HashingReader{r: r, h: sha256.New()}
}

func (r *HashingReader) Read(p []byte) (n int, err error) {
	n, err = r.r.Read(p)
	if n > 0 {
		r.h.Write(p[:n])
		r.size += int64(n)
	}
	return
}

// SHA256 returns the hex sha256 of the bytes read so far.
func (r *HashingReader) SHA256() string {
	return hex.EncodeToString(r.h.Sum(nil))
}

// Size returns the number of bytes read so far.
func (r *HashingReader) Size() int64 { return r.size }
