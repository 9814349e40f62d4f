package dedupe

import (
	"sort"
	"time"

	"github.com/hardlinkr/hardlinkr/pkg/paths"
)

// SelectCanonical picks the path to use as the hard-link source for a
// confirmed class. Ordering: rank ascending, then modification time
// descending (the most recently modified copy is treated as authoritative),
// then path depth ascending, then path ascending as a pure determinism
// fallback. A pure function of class membership and rank/mtime/path data.
func SelectCanonical(class *Confirmed) string {
	type entry struct {
		rank  int
		mtime time.Time
		depth int
		path  string
	}

	var entries []entry
	for _, member := range class.Members {
		for _, ref := range member.Refs {
			entries = append(entries, entry{
				rank:  ref.Rank,
				mtime: member.ModTime,
				depth: paths.Depth(ref.Path),
				path:  ref.Path,
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		if !a.mtime.Equal(b.mtime) {
			return a.mtime.After(b.mtime)
		}
		if a.depth != b.depth {
			return a.depth < b.depth
		}
		return a.path < b.path
	})

	return entries[0].path
}
