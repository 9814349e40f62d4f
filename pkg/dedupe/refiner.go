package dedupe

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"

	"github.com/hardlinkr/hardlinkr/pkg/inodetable"
	"github.com/hardlinkr/hardlinkr/pkg/logger"
)

// DefaultBlockSize is the comparison block size used when none is
// configured.
const DefaultBlockSize int64 = 1 << 20

// Refiner turns candidate classes into confirmed classes by progressive
// block-wise comparison: per block index, each pending class is partitioned
// by exact byte equality of that block, singleton sub-groups are dropped,
// and sub-groups covered to full file length are confirmed. Files that
// diverge early are only read up to the diverging block.
//
// The stream is finite, single-pass and non-restartable: once Next returns
// a nil class the refiner is exhausted and must not be reused.
type Refiner struct {
	blockSize int64
	pending   []*Candidate
	confirmed []*Confirmed
	index     int64
	limiter   ratelimit.Limiter
	bytesRead uint64
	log       *logrus.Entry
}

type RefinerOption func(*Refiner)

// WithReadRate paces block reads to at most perSecond per second. Zero or
// negative leaves reads unpaced.
func WithReadRate(perSecond int) RefinerOption {
	return func(r *Refiner) {
		if perSecond > 0 {
			r.limiter = ratelimit.New(perSecond)
		}
	}
}

func NewRefiner(candidates []*Candidate, blockSize int64, opts ...RefinerOption) *Refiner {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	r := &Refiner{
		blockSize: blockSize,
		pending:   candidates,
		log:       logger.GetLogger("refiner"),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Next returns the next confirmed class, or (nil, nil) once the stream is
// exhausted. Any read failure is fatal and ends the stream.
func (r *Refiner) Next() (*Confirmed, error) {
	for {
		if len(r.confirmed) > 0 {
			class := r.confirmed[0]
			r.confirmed = r.confirmed[1:]
			return class, nil
		}

		if len(r.pending) == 0 {
			return nil, nil
		}

		if err := r.advance(); err != nil {
			r.pending = nil
			return nil, err
		}
	}
}

// BytesRead returns the total content bytes compared so far.
func (r *Refiner) BytesRead() uint64 {
	return r.bytesRead
}

// advance runs one block iteration across every pending class.
func (r *Refiner) advance() error {
	offset := r.index * r.blockSize
	end := offset + r.blockSize

	var carried []*Candidate

	for _, class := range r.pending {
		groups, err := r.splitByBlock(class, offset)
		if err != nil {
			return err
		}

		for _, group := range groups {
			if len(group.Members) < 2 {
				// no longer a duplicate of anything
				continue
			}

			if group.Size <= end {
				// compared end to end with no divergence
				r.confirmed = append(r.confirmed, &Confirmed{
					Size:    group.Size,
					Members: group.Members,
				})
				continue
			}

			carried = append(carried, group)
		}
	}

	r.log.Tracef("Block %d: %d classes carried, %d confirmed", r.index, len(carried), len(r.confirmed))

	r.pending = carried
	r.index++
	return nil
}

// splitByBlock partitions a class by byte equality of the block at offset,
// preserving the first-seen member order of the resulting sub-groups.
func (r *Refiner) splitByBlock(class *Candidate, offset int64) ([]*Candidate, error) {
	want := class.Size - offset
	if want > r.blockSize {
		want = r.blockSize
	}

	var (
		groups []*Candidate
		blocks [][]byte
	)

	for _, member := range class.Members {
		block, err := r.readBlock(member, offset, want)
		if err != nil {
			return nil, err
		}

		placed := false
		for i := range blocks {
			if bytes.Equal(blocks[i], block) {
				groups[i].Members = append(groups[i].Members, member)
				placed = true
				break
			}
		}

		if !placed {
			groups = append(groups, &Candidate{Size: class.Size, Members: []*inodetable.Inode{member}})
			blocks = append(blocks, block)
		}
	}

	return groups, nil
}

// readBlock reads want bytes at offset from one representative path of the
// inode; all paths of an inode share physical content. The handle is closed
// before returning, read failure or not.
func (r *Refiner) readBlock(ino *inodetable.Inode, offset int64, want int64) ([]byte, error) {
	if r.limiter != nil {
		r.limiter.Take()
	}

	path := ino.Refs[0].Path

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open: %q", path)
	}
	defer f.Close()

	buf := make([]byte, want)
	n, err := f.ReadAt(buf, offset)
	if int64(n) < want {
		return nil, errors.Wrapf(err, "read %d bytes at offset %d: %q", want, offset, path)
	}

	r.bytesRead += uint64(want)
	return buf, nil
}
