package inodetable

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hardlinkr/hardlinkr/pkg/expression"
	"github.com/hardlinkr/hardlinkr/pkg/regex"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiscover_RecordsRegularFiles(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "a", "x"), "hello")
	writeFile(t, filepath.Join(tmp, "a", "b", "y"), "world!!")
	writeFile(t, filepath.Join(tmp, "empty"), "")

	table := New(Options{})
	require.NoError(t, table.Discover(tmp, 0))

	// zero-length file skipped
	require.Equal(t, 2, table.Length())

	for _, ino := range table.Inodes() {
		require.Len(t, ino.Refs, 1)
		assert.Equal(t, 0, ino.Refs[0].Rank)

		info, err := os.Stat(ino.Refs[0].Path)
		require.NoError(t, err)
		assert.Equal(t, info.Size(), ino.Size)
		assert.True(t, info.ModTime().Equal(ino.ModTime))
	}
}

func TestDiscover_HardlinkedPathsShareRecord(t *testing.T) {
	tmp := t.TempDir()
	original := filepath.Join(tmp, "original")
	linked := filepath.Join(tmp, "linked")
	writeFile(t, original, "content")
	require.NoError(t, os.Link(original, linked))

	table := New(Options{})
	require.NoError(t, table.Discover(tmp, 0))

	require.Equal(t, 1, table.Length())

	ino := table.Inodes()[0]
	require.Len(t, ino.Refs, 2)
	assert.False(t, ino.LinkedOutsideRoots())
}

func TestDiscover_SkipsSymlinks(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "target")
	writeFile(t, target, "content")
	require.NoError(t, os.Symlink(target, filepath.Join(tmp, "alias")))

	table := New(Options{})
	require.NoError(t, table.Discover(tmp, 0))

	require.Equal(t, 1, table.Length())
	require.Len(t, table.Inodes()[0].Refs, 1)
	assert.Equal(t, target, table.Inodes()[0].Refs[0].Path)
}

func TestDiscover_RankPerRoot(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "first", "x"), "aaaa")
	writeFile(t, filepath.Join(tmp, "second", "y"), "bbbb")

	table := New(Options{})
	require.NoError(t, table.Discover(filepath.Join(tmp, "first"), 0))
	require.NoError(t, table.Discover(filepath.Join(tmp, "second"), 1))

	ranks := make(map[string]int)
	for _, ino := range table.Inodes() {
		for _, ref := range ino.Refs {
			ranks[filepath.Base(ref.Path)] = ref.Rank
		}
	}

	assert.Equal(t, map[string]int{"x": 0, "y": 1}, ranks)
}

func TestDiscover_ModTimeImmutableOnRediscovery(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "file")
	writeFile(t, path, "content")

	table := New(Options{})
	require.NoError(t, table.Discover(tmp, 0))
	firstSeen := table.Inodes()[0].ModTime

	// touch the file and rediscover; the record must keep the first
	// observed mtime and not duplicate the ref
	require.NoError(t, os.Chtimes(path, time.Now(), time.Now().Add(time.Hour)))
	require.NoError(t, table.Discover(tmp, 1))

	require.Equal(t, 1, table.Length())
	ino := table.Inodes()[0]
	assert.True(t, firstSeen.Equal(ino.ModTime))
	assert.Len(t, ino.Refs, 1)
}

func TestDiscover_RootErrors(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "file"), "content")

	table := New(Options{})
	assert.Error(t, table.Discover(filepath.Join(tmp, "missing"), 0))
	assert.Error(t, table.Discover(filepath.Join(tmp, "file"), 0))
}

func TestDiscover_IgnorePatterns(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "keep.dat"), "content")
	writeFile(t, filepath.Join(tmp, "skip.partial"), "content")

	patterns, err := regex.CompileAll([]string{`\.partial$`})
	require.NoError(t, err)

	table := New(Options{IgnorePatterns: patterns})
	require.NoError(t, table.Discover(tmp, 0))

	require.Equal(t, 1, table.Length())
	assert.Equal(t, filepath.Join(tmp, "keep.dat"), table.Inodes()[0].Refs[0].Path)
}

func TestDiscover_FilterExpressions(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "movie.mkv"), "aaaa")
	writeFile(t, filepath.Join(tmp, "notes.txt"), "bbbb")
	writeFile(t, filepath.Join(tmp, "movie.sample.mkv"), "cc")

	include, err := expression.Compile([]string{`Ext == ".mkv"`})
	require.NoError(t, err)
	exclude, err := expression.Compile([]string{`Size < 3`})
	require.NoError(t, err)

	table := New(Options{Include: include, Exclude: exclude})
	require.NoError(t, table.Discover(tmp, 0))

	require.Equal(t, 1, table.Length())
	assert.Equal(t, filepath.Join(tmp, "movie.mkv"), table.Inodes()[0].Refs[0].Path)
}
