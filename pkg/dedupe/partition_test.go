package dedupe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hardlinkr/hardlinkr/pkg/inodetable"
)

func discoverTree(t *testing.T, root string) *inodetable.Table {
	t.Helper()

	table := inodetable.New(inodetable.Options{})
	require.NoError(t, table.Discover(root, 0))
	return table
}

func TestPartitionBySize(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "a"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "b"), []byte("world"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "c"), []byte("longer content"), 0o644))

	candidates := PartitionBySize(discoverTree(t, tmp))

	require.Len(t, candidates, 1)
	assert.Equal(t, int64(5), candidates[0].Size)
	require.Len(t, candidates[0].Members, 2)
	for _, member := range candidates[0].Members {
		assert.Equal(t, int64(5), member.Size)
	}
}

func TestPartitionBySize_NoDuplicateSizes(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "a"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "b"), []byte("xy"), 0o644))

	assert.Empty(t, PartitionBySize(discoverTree(t, tmp)))
}

func TestPartitionBySize_PreexistingHardLinksAreOneInode(t *testing.T) {
	tmp := t.TempDir()
	original := filepath.Join(tmp, "original")
	require.NoError(t, os.WriteFile(original, []byte("content"), 0o644))
	require.NoError(t, os.Link(original, filepath.Join(tmp, "linked")))

	// both paths resolve to one inode: a singleton group, no candidates
	assert.Empty(t, PartitionBySize(discoverTree(t, tmp)))
}

func TestPartitionBySize_OrderedBySize(t *testing.T) {
	tmp := t.TempDir()
	for _, f := range []struct{ name, content string }{
		{"a1", "aaaa"}, {"a2", "aaaa"},
		{"b1", "bb"}, {"b2", "bb"},
	} {
		require.NoError(t, os.WriteFile(filepath.Join(tmp, f.name), []byte(f.content), 0o644))
	}

	candidates := PartitionBySize(discoverTree(t, tmp))

	require.Len(t, candidates, 2)
	assert.Equal(t, int64(2), candidates[0].Size)
	assert.Equal(t, int64(4), candidates[1].Size)
}
