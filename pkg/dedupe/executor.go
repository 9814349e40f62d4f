package dedupe

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hardlinkr/hardlinkr/pkg/inodetable"
	"github.com/hardlinkr/hardlinkr/pkg/logger"
	"github.com/hardlinkr/hardlinkr/pkg/paths"
)

// Executor consolidates confirmed classes: by relinking on disk, by emitting
// an equivalent shell script, or by reporting diagnostics. It only accepts
// *Confirmed, so it can never act on an unverified class.
type Executor struct {
	DryRun bool

	relinked  uint64
	reclaimed uint64
	log       *logrus.Entry
}

func NewExecutor(dryRun bool) *Executor {
	return &Executor{
		DryRun: dryRun,
		log:    logger.GetLogger("executor"),
	}
}

// redundantMembers returns the member inodes whose paths are to be replaced,
// i.e. every member except the one the canonical path belongs to. Paths
// already sharing the canonical inode need no action.
func redundantMembers(class *Confirmed, canonical string) []*inodetable.Inode {
	var out []*inodetable.Inode
	for _, member := range class.Members {
		owns := false
		for _, ref := range member.Refs {
			if ref.Path == canonical {
				owns = true
				break
			}
		}
		if !owns {
			out = append(out, member)
		}
	}
	return out
}

// ApplyHardLink replaces every redundant path of the class with a hard link
// to canonical, restoring the replaced path's mode, ownership and timestamps
// afterwards. The remove+link pair is not atomic; exclusive access to the
// affected subtree is assumed for the duration of a mutating run.
func (e *Executor) ApplyHardLink(class *Confirmed, canonical string) error {
	for _, member := range redundantMembers(class, canonical) {
		if member.LinkedOutsideRoots() {
			e.log.Warnf("Inode %s has hard links outside the scanned roots, its content will remain pinned elsewhere", member.ID)
		}

		for _, ref := range member.Refs {
			e.log.Infof("Linking %q -> %q", ref.Path, canonical)

			if e.DryRun {
				e.log.Warn("Dry-run enabled, skipping relink...")
				continue
			}

			meta, err := captureMetadata(ref.Path)
			if err != nil {
				return errors.Wrapf(err, "capture metadata: %q", ref.Path)
			}

			if err := os.Remove(ref.Path); err != nil {
				return errors.Wrapf(err, "remove: %q", ref.Path)
			}

			if err := os.Link(canonical, ref.Path); err != nil {
				return errors.Wrapf(err, "link %q -> %q", ref.Path, canonical)
			}

			if err := e.restoreMetadata(ref.Path, meta); err != nil {
				return err
			}

			e.relinked++
		}

		if !member.LinkedOutsideRoots() && !e.DryRun {
			// every link of this inode was replaced, so its blocks are freed
			e.reclaimed += uint64(member.Size)
		}
	}

	return nil
}

// EmitScript writes one `cp -la --remove-destination` line per redundant
// path to w, both paths shell-quoted. Performs no filesystem mutation.
func (e *Executor) EmitScript(w io.Writer, class *Confirmed, canonical string) error {
	quoted := paths.ShellQuote(canonical)

	for _, member := range redundantMembers(class, canonical) {
		for _, ref := range member.Refs {
			line := fmt.Sprintf("cp -la --remove-destination %s %s\n", quoted, paths.ShellQuote(ref.Path))
			if _, err := io.WriteString(w, line); err != nil {
				return errors.Wrap(err, "write script line")
			}
		}
	}

	return nil
}

// EmitInfo writes one diagnostic line for the class to w: size, every member
// inode with its known paths, and the canonical path.
func (e *Executor) EmitInfo(w io.Writer, class *Confirmed, canonical string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "size=%d inodes=%d canonical=%s", class.Size, len(class.Members), canonical)

	for _, member := range class.Members {
		refPaths := make([]string, len(member.Refs))
		for i, ref := range member.Refs {
			refPaths[i] = ref.Path
		}
		fmt.Fprintf(&b, " %s=[%s]", member.ID, strings.Join(refPaths, " "))
	}

	if _, err := fmt.Fprintln(w, b.String()); err != nil {
		return errors.Wrap(err, "write info line")
	}

	return nil
}

// Relinked returns the number of paths replaced with hard links so far.
func (e *Executor) Relinked() uint64 {
	return e.relinked
}

// Reclaimed returns the bytes freed by relinking so far.
func (e *Executor) Reclaimed() uint64 {
	return e.reclaimed
}
