package inodetable

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/sirupsen/logrus"

	"github.com/hardlinkr/hardlinkr/pkg/expression"
)

// FileID represents a unique file identifier (device ID + inode number).
type FileID struct {
	Device uint64 // Device ID
	Inode  uint64 // Inode number
}

// String returns a string representation of the FileID.
func (f FileID) String() string {
	return fmt.Sprintf("%d:%d", f.Device, f.Inode)
}

// Equal checks if two FileIDs are equal.
func (f FileID) Equal(other FileID) bool {
	return f.Device == other.Device && f.Inode == other.Inode
}

// Less orders FileIDs by device, then inode number.
func (f FileID) Less(other FileID) bool {
	if f.Device != other.Device {
		return f.Device < other.Device
	}
	return f.Inode < other.Inode
}

// Ref is one discovered path referencing an inode, tagged with the scan
// rank of the root argument it was found under.
type Ref struct {
	Rank int
	Path string
}

// Inode records what discovery learned about one physical file. Size and
// ModTime are set on first sight and never overwritten; Refs grows by one
// per qualifying path, so pre-existing hard links collapse into one record.
type Inode struct {
	ID      FileID
	Size    int64
	ModTime time.Time
	Nlink   uint64
	Refs    []Ref
}

// LinkedOutsideRoots reports whether the inode has hard links that were not
// discovered under any scanned root.
func (i *Inode) LinkedOutsideRoots() bool {
	return i.Nlink > uint64(len(i.Refs))
}

// Options configures discovery-time filtering.
type Options struct {
	// IgnorePatterns are matched against full paths; matching files are
	// skipped.
	IgnorePatterns []*regexp2.Regexp
	// Include / Exclude are filter expressions over the file environment.
	// A file is recorded when it matches any include expression (or there
	// are none) and no exclude expression.
	Include []expression.CompiledExpression
	Exclude []expression.CompiledExpression
}

// Table maps inode identifiers to their records. All recorded inodes belong
// to the device established by the first Discover call.
type Table struct {
	device    uint64
	deviceSet bool
	inodes    map[FileID]*Inode
	opts      Options
	log       *logrus.Entry
}
