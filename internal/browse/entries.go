// Package browse implements directory enumeration and HTML rendering for
// directory-listing responses: buffered, sorted, with lazily streamed
// output.
package browse

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// EntryType classifies one directory entry for grouping purposes. Entries
// are emitted Symlinks, then Directories, then Files, then Others; within
// a group, by humane order.
type EntryType int

const (
	TypeSymlink EntryType = iota
	TypeDir
	TypeFile
	TypeOther
)

// Entry is one resolved directory entry: name, size, modification time
// (after symlink resolution, when possible) and its classification. If
// the original entry was a symlink whose target could not be stat'd, Type
// is TypeSymlink and ModTime/Size are zero. IsDir reflects the resolved
// target's directory-ness independently of Type, so a symlink pointing
// at a directory still gets a directory-style link.
type Entry struct {
	Name    string
	Size    int64
	ModTime time.Time
	Type    EntryType
	IsDir   bool
}

// BufferLimit is the number of entries eagerly read and sorted; entries
// beyond this are emitted afterward in OS order, unsorted, per spec §4.7.
const BufferLimit = 4096

// Load reads up to BufferLimit entries from dirPath, classifying and
// sorting them, plus any remaining entries in OS order. Symlink targets
// are resolved concurrently (bounded by GOMAXPROCS) via an errgroup,
// since resolving up to 4096 targets serially would otherwise dominate
// the time to first byte of a large listing.
func Load(ctx context.Context, dirPath string) (buffered []Entry, overflow []Entry, err error) {
	f, err := os.Open(dirPath)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, nil, err
	}

	head := names
	var tail []string
	if len(head) > BufferLimit {
		head, tail = names[:BufferLimit], names[BufferLimit:]
	}

	buffered = make([]Entry, len(head))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(max(runtime.GOMAXPROCS(0), 1))
	for i, name := range head {
		i, name := i, name
		group.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			buffered[i] = classify(dirPath, name)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	sort.SliceStable(buffered, func(i, j int) bool {
		if buffered[i].Type != buffered[j].Type {
			return buffered[i].Type < buffered[j].Type
		}
		return lessHumane(buffered[i].Name, buffered[j].Name)
	})

	overflow = make([]Entry, len(tail))
	for i, name := range tail {
		overflow[i] = classify(dirPath, name)
	}

	return buffered, overflow, nil
}

func classify(dirPath, name string) Entry {
	full := filepath.Join(dirPath, name)

	lst, err := os.Lstat(full)
	if err != nil {
		return Entry{Name: name, Type: TypeOther}
	}

	if lst.Mode()&os.ModeSymlink != 0 {
		target, err := os.Stat(full)
		if err != nil {
			return Entry{Name: name, Type: TypeSymlink}
		}
		return Entry{Name: name, Size: target.Size(), ModTime: target.ModTime(), Type: TypeSymlink, IsDir: target.IsDir()}
	}

	if lst.IsDir() {
		return Entry{Name: name, ModTime: lst.ModTime(), Type: TypeDir, IsDir: true}
	}
	if lst.Mode().IsRegular() {
		return Entry{Name: name, Size: lst.Size(), ModTime: lst.ModTime(), Type: TypeFile}
	}
	return Entry{Name: name, ModTime: lst.ModTime(), Type: TypeOther}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
