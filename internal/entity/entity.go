// Package entity derives the server-side view of one stat snapshot of one
// file (metadata, ETag, content type), evaluates conditional request
// headers against it, and frames single-range and multipart/byteranges
// responses.
package entity

import (
	"encoding/base64"
	"io/fs"
	"mime"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Entity is the borrowed, per-request view of one file, derived entirely
// from a single stat snapshot. Subsequent filesystem changes are ignored
// for the lifetime of the request that built it.
type Entity struct {
	Path        string
	Length      int64
	ModTime     time.Time
	ETag        string
	ContentType string
}

// New derives an Entity from path and a fresh fs.FileInfo for it. All
// fields come from info; callers must re-stat to see later changes.
func New(path string, info fs.FileInfo) *Entity {
	return &Entity{
		Path:        path,
		Length:      info.Size(),
		ModTime:     info.ModTime(),
		ETag:        computeETag(info),
		ContentType: contentType(path),
	}
}

// computeETag derives a strong ETag from (size, file-id, mtime) using a
// non-cryptographic hash, base64url-encoded without padding inside double
// quotes. Identical inputs always produce identical tags; any change to
// size, file-id or mtime changes the tag with overwhelming probability.
// This is presentation-only: collisions are tolerated as a cache-semantics
// concern, never a correctness one, since content hashing is an explicit
// non-goal.
func computeETag(info fs.FileInfo) string {
	h := xxhash.New()
	var buf [24]byte
	putUint64(buf[0:8], uint64(info.Size()))
	putUint64(buf[8:16], fileID(info))
	mtime := info.ModTime()
	putUint64(buf[16:24], uint64(mtime.UnixNano()))
	_, _ = h.Write(buf[:])

	var sum [8]byte
	putUint64(sum[:], h.Sum64())
	return `"` + base64.RawURLEncoding.EncodeToString(sum[:]) + `"`
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// contentType derives a MIME type from the filename extension, falling
// back to application/octet-stream for anything the static extension
// table doesn't recognize.
func contentType(path string) string {
	ext := filepath.Ext(path)
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
