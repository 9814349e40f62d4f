package dedupe

import (
	"sort"

	"github.com/hardlinkr/hardlinkr/pkg/inodetable"
)

// PartitionBySize groups all recorded inodes by size and returns only the
// groups with at least two members, ordered by size. Singleton groups carry
// no duplication signal and are dropped.
func PartitionBySize(t *inodetable.Table) []*Candidate {
	bySize := make(map[int64][]*inodetable.Inode)
	for _, ino := range t.Inodes() {
		bySize[ino.Size] = append(bySize[ino.Size], ino)
	}

	candidates := make([]*Candidate, 0, len(bySize))
	for size, members := range bySize {
		if len(members) < 2 {
			continue
		}
		candidates = append(candidates, &Candidate{Size: size, Members: members})
	}

	// Inodes() is ordered, so members already are; order the classes too
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Size < candidates[j].Size
	})

	return candidates
}
