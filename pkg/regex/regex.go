package regex

import (
	"sync"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/pkg/errors"
)

const matchTimeout = 5 * time.Second

var cache sync.Map

// Compile compiles pattern case-insensitively, caching the result for reuse
// across walk callbacks.
func Compile(pattern string) (*regexp2.Regexp, error) {
	if v, ok := cache.Load(pattern); ok {
		return v.(*regexp2.Regexp), nil
	}

	re, err := regexp2.Compile(pattern, regexp2.IgnoreCase)
	if err != nil {
		return nil, errors.Wrapf(err, "compile pattern: %q", pattern)
	}
	re.MatchTimeout = matchTimeout

	cache.Store(pattern, re)
	return re, nil
}

// CompileAll compiles every pattern, failing on the first invalid one.
func CompileAll(patterns []string) ([]*regexp2.Regexp, error) {
	compiled := make([]*regexp2.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := Compile(p)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// MatchAny reports whether s matches any of the compiled patterns.
// Pattern evaluation errors (timeouts) count as no match.
func MatchAny(res []*regexp2.Regexp, s string) bool {
	for _, re := range res {
		if ok, err := re.MatchString(s); err == nil && ok {
			return true
		}
	}
	return false
}
