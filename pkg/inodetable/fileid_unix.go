//go:build unix

package inodetable

import (
	"os"
	"syscall"

	"github.com/pkg/errors"
)

// fileID returns the unique file identifier (device + inode) and link count
// from a FileInfo obtained during the walk.
func fileID(fi os.FileInfo) (FileID, uint64, error) {
	stat, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return FileID{}, 0, errors.New("unsupported stat type")
	}

	return FileID{
		Device: uint64(stat.Dev),
		Inode:  uint64(stat.Ino),
	}, uint64(stat.Nlink), nil
}
