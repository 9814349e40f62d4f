//go:build linux || freebsd

package dedupe

import (
	"syscall"
	"time"
)

func statTimes(stat *syscall.Stat_t) (atime time.Time, mtime time.Time) {
	return time.Unix(stat.Atim.Unix()), time.Unix(stat.Mtim.Unix())
}
