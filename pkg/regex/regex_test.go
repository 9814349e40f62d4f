package regex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_CachesPatterns(t *testing.T) {
	first, err := Compile(`\.iso$`)
	require.NoError(t, err)

	second, err := Compile(`\.iso$`)
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestCompileAll_InvalidPattern(t *testing.T) {
	_, err := CompileAll([]string{`valid`, `(unclosed`})
	assert.Error(t, err)
}

func TestMatchAny(t *testing.T) {
	patterns, err := CompileAll([]string{`^backup/`, `\.BAK$`})
	require.NoError(t, err)

	assert.True(t, MatchAny(patterns, "backup/data.db"))
	// patterns are case-insensitive
	assert.True(t, MatchAny(patterns, "notes.bak"))
	assert.False(t, MatchAny(patterns, "data/backup.db2"))
	assert.False(t, MatchAny(nil, "anything"))
}
