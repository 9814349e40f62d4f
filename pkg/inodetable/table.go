package inodetable

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/pkg/errors"

	"github.com/hardlinkr/hardlinkr/pkg/expression"
	"github.com/hardlinkr/hardlinkr/pkg/logger"
	"github.com/hardlinkr/hardlinkr/pkg/paths"
)

// ErrDeviceMismatch indicates a root argument resides on a different storage
// device than the one established by the first root. Hard links cannot span
// devices, so this is a fatal configuration error.
var ErrDeviceMismatch = errors.New("root resides on a different device")

func New(opts Options) *Table {
	return &Table{
		inodes: make(map[FileID]*Inode),
		opts:   opts,
		log:    logger.GetLogger("inodetable"),
	}
}

// Discover walks the tree rooted at root and records every regular file of
// nonzero size, keyed by inode. Symbolic links are never followed.
// Subdirectories on a different device than the table's established device
// are pruned from traversal; the root itself being on a different device is
// fatal. Rank is assigned by the caller, lower rank meaning higher canonical
// priority.
func (t *Table) Discover(root string, rank int) error {
	rootInfo, err := os.Lstat(root)
	if err != nil {
		return errors.Wrapf(err, "stat root: %q", root)
	}
	if !rootInfo.IsDir() {
		return errors.Errorf("root is not a directory: %q", root)
	}

	rootID, _, err := fileID(rootInfo)
	if err != nil {
		return errors.Wrapf(err, "file id of root: %q", root)
	}

	if !t.deviceSet {
		t.device = rootID.Device
		t.deviceSet = true
	} else if rootID.Device != t.device {
		return errors.Wrapf(ErrDeviceMismatch, "root %q is on device %d, expected %d",
			root, rootID.Device, t.device)
	}

	// single worker and sorted entries: traversal stays sequential and
	// ref order deterministic
	conf := fastwalk.Config{
		NumWorkers: 1,
		Sort:       fastwalk.SortLexical,
	}

	walkErr := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "walk: %q", path)
		}

		if d.Type()&fs.ModeSymlink != 0 {
			t.log.Tracef("Skipping symlink: %q", path)
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return errors.Wrapf(err, "stat: %q", path)
		}

		id, nlink, err := fileID(info)
		if err != nil {
			return errors.Wrapf(err, "file id: %q", path)
		}

		if d.IsDir() {
			if id.Device != t.device {
				t.log.Debugf("Pruning cross-device directory: %q", path)
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() || info.Size() == 0 {
			t.log.Tracef("Skipping non-regular or empty file: %q", path)
			return nil
		}

		// a file sitting directly on a foreign device (bind mount)
		if id.Device != t.device {
			t.log.Debugf("Skipping cross-device file: %q", path)
			return nil
		}

		if paths.IsIgnored(path, t.opts.IgnorePatterns) {
			t.log.Debugf("File matches a path in the ignore list, skipping: %q", path)
			return nil
		}

		if skip, err := t.filteredOut(path, info); err != nil {
			return err
		} else if skip {
			return nil
		}

		t.record(id, nlink, info, rank, path)
		return nil
	})
	if walkErr != nil {
		return walkErr
	}

	t.log.Debugf("Discovered root %q with rank %d: %d inodes total", root, rank, len(t.inodes))
	return nil
}

// filteredOut evaluates the include/exclude filter expressions for a file.
func (t *Table) filteredOut(path string, info os.FileInfo) (bool, error) {
	if len(t.opts.Include) == 0 && len(t.opts.Exclude) == 0 {
		return false, nil
	}

	env := &expression.File{
		Name:     info.Name(),
		Path:     path,
		Dir:      filepath.Dir(path),
		Ext:      filepath.Ext(info.Name()),
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		AgeHours: time.Since(info.ModTime()).Hours(),
	}

	if len(t.opts.Include) > 0 {
		match, err := expression.CheckFileSingleMatch(env, t.opts.Include)
		if err != nil {
			return false, errors.Wrapf(err, "evaluate include filter: %q", path)
		}
		if !match {
			t.log.Tracef("File matches no include filter, skipping: %q", path)
			return true, nil
		}
	}

	match, reason, err := expression.CheckFileSingleMatchWithReason(env, t.opts.Exclude)
	if err != nil {
		return false, errors.Wrapf(err, "evaluate exclude filter: %q", path)
	}
	if match {
		t.log.Tracef("File matches exclude filter %q, skipping: %q", reason, path)
		return true, nil
	}

	return false, nil
}

func (t *Table) record(id FileID, nlink uint64, info os.FileInfo, rank int, path string) {
	ino, exists := t.inodes[id]
	if !exists {
		// size and mtime are recorded on first sight and never overwritten
		ino = &Inode{
			ID:      id,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Nlink:   nlink,
		}
		t.inodes[id] = ino
	}

	for _, ref := range ino.Refs {
		if ref.Path == path {
			return
		}
	}

	ino.Refs = append(ino.Refs, Ref{Rank: rank, Path: path})
}

// Inodes returns all recorded inodes ordered by FileID.
func (t *Table) Inodes() []*Inode {
	inodes := make([]*Inode, 0, len(t.inodes))
	for _, ino := range t.inodes {
		inodes = append(inodes, ino)
	}

	sort.Slice(inodes, func(i, j int) bool {
		return inodes[i].ID.Less(inodes[j].ID)
	})

	return inodes
}

// Length returns the number of recorded inodes.
func (t *Table) Length() int {
	return len(t.inodes)
}
