//go:build unix

package entity

import (
	"io/fs"
	"syscall"
)

// fileID extracts an OS-provided uniqueness marker for the file backing
// info, used as one of the three ETag inputs. On Unix this is the inode
// number, which is stable across renames and (together with mtime and
// size) distinguishes a file from an unrelated one that happens to share
// its path.
func fileID(info fs.FileInfo) uint64 {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return uint64(st.Ino)
	}
	return 0
}
