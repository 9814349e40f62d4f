//go:build darwin

package dedupe

import (
	"syscall"
	"time"
)

func statTimes(stat *syscall.Stat_t) (atime time.Time, mtime time.Time) {
	return time.Unix(stat.Atimespec.Unix()), time.Unix(stat.Mtimespec.Unix())
}
