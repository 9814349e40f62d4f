package dedupe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hardlinkr/hardlinkr/pkg/inodetable"
)

func canonicalClass(members ...*inodetable.Inode) *Confirmed {
	return &Confirmed{Size: 4, Members: members}
}

func inodeWithRefs(id uint64, mtime time.Time, refs ...inodetable.Ref) *inodetable.Inode {
	return &inodetable.Inode{
		ID:      inodetable.FileID{Device: 1, Inode: id},
		Size:    4,
		ModTime: mtime,
		Nlink:   uint64(len(refs)),
		Refs:    refs,
	}
}

func TestSelectCanonical_RankWins(t *testing.T) {
	now := time.Now()

	class := canonicalClass(
		inodeWithRefs(1, now.Add(time.Hour), inodetable.Ref{Rank: 1, Path: "b/newer"}),
		inodeWithRefs(2, now, inodetable.Ref{Rank: 0, Path: "a/deep/older"}),
	)

	// lower rank beats newer mtime and shallower depth
	assert.Equal(t, "a/deep/older", SelectCanonical(class))
}

func TestSelectCanonical_NewestMtimeWinsWithinRank(t *testing.T) {
	now := time.Now()

	class := canonicalClass(
		inodeWithRefs(1, now, inodetable.Ref{Rank: 0, Path: "a/x"}),
		inodeWithRefs(2, now.Add(time.Minute), inodetable.Ref{Rank: 0, Path: "a/sub/y"}),
	)

	assert.Equal(t, "a/sub/y", SelectCanonical(class))
}

func TestSelectCanonical_ShallowestDepthBreaksTies(t *testing.T) {
	now := time.Now()

	class := canonicalClass(
		inodeWithRefs(1, now, inodetable.Ref{Rank: 0, Path: "a/b/x"}),
		inodeWithRefs(2, now, inodetable.Ref{Rank: 0, Path: "a/y"}),
	)

	assert.Equal(t, "a/y", SelectCanonical(class))
}

func TestSelectCanonical_Deterministic(t *testing.T) {
	now := time.Now()

	first := inodeWithRefs(1, now, inodetable.Ref{Rank: 0, Path: "a/x"})
	second := inodeWithRefs(2, now, inodetable.Ref{Rank: 0, Path: "a/y"})

	forward := SelectCanonical(canonicalClass(first, second))
	reversed := SelectCanonical(canonicalClass(second, first))

	assert.Equal(t, forward, reversed)
	assert.Equal(t, "a/x", forward)
}

func TestSelectCanonical_ConsidersEveryRefOfAMember(t *testing.T) {
	now := time.Now()

	class := canonicalClass(
		inodeWithRefs(1, now,
			inodetable.Ref{Rank: 1, Path: "b/deep/copy"},
			inodetable.Ref{Rank: 0, Path: "a/copy"},
		),
		inodeWithRefs(2, now, inodetable.Ref{Rank: 1, Path: "b/other"}),
	)

	assert.Equal(t, "a/copy", SelectCanonical(class))
}
