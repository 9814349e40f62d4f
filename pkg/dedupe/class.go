package dedupe

import (
	"github.com/hardlinkr/hardlinkr/pkg/inodetable"
)

// Candidate is an equivalence class of inodes believed, but not yet proven,
// to hold identical content. All members share the same recorded size.
type Candidate struct {
	Size    int64
	Members []*inodetable.Inode
}

// Confirmed is an equivalence class whose members have been verified
// byte-identical across their entire length. It is a distinct type from
// Candidate so executor operations cannot be invoked on a pending class.
type Confirmed struct {
	Size    int64
	Members []*inodetable.Inode
}

// Paths returns every known path of every member inode.
func (c *Confirmed) Paths() []string {
	var out []string
	for _, member := range c.Members {
		for _, ref := range member.Refs {
			out = append(out, ref.Path)
		}
	}
	return out
}
