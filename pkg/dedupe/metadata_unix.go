//go:build unix

package dedupe

import (
	"os"
	"syscall"
	"time"

	"github.com/pkg/errors"
)

// fileMetadata captures the per-path attributes that would otherwise be lost
// when a path is replaced by a hard link.
type fileMetadata struct {
	mode  os.FileMode
	uid   int
	gid   int
	atime time.Time
	mtime time.Time
}

func captureMetadata(path string) (fileMetadata, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return fileMetadata{}, err
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileMetadata{}, errors.New("unsupported stat type")
	}

	atime, mtime := statTimes(stat)

	return fileMetadata{
		mode:  info.Mode(),
		uid:   int(stat.Uid),
		gid:   int(stat.Gid),
		atime: atime,
		mtime: mtime,
	}, nil
}

// restoreMetadata re-applies the captured attributes to the relinked path.
// They land on the shared inode, which is the point of the preservation
// policy. Ownership restore failing without privileges is reported but not
// fatal.
func (e *Executor) restoreMetadata(path string, meta fileMetadata) error {
	if err := os.Chmod(path, meta.mode); err != nil {
		return errors.Wrapf(err, "chmod: %q", path)
	}

	if err := os.Chown(path, meta.uid, meta.gid); err != nil {
		if errors.Is(err, os.ErrPermission) {
			e.log.Warnf("Cannot restore ownership without privileges: %q", path)
		} else {
			return errors.Wrapf(err, "chown: %q", path)
		}
	}

	if err := os.Chtimes(path, meta.atime, meta.mtime); err != nil {
		return errors.Wrapf(err, "chtimes: %q", path)
	}

	return nil
}
