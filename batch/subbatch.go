package batch

import (
	"sync"

	"github.com/gralign/bwamem/record"
)

// SubBatchBuffer accumulates per-mate sub-batches keyed by batchIndex and
// releases a ReadPair once both mates for a given index have arrived
// (spec.md §5 "streaming pair sub-batch buffering": "maintains per-mate
// per-sub-batch buffers keyed by batchIndex and releases a paired sub-batch
// only when both mates have arrived").
//
// Grounded on bampair/shard_info.go's keyed-lookup bookkeeping, generalized
// from shard-boundary tracking to per-template mate arrival tracking.
type SubBatchBuffer struct {
	mu      sync.Mutex
	pending map[int]record.ReadInput
	mateNum map[int]int
}

// NewSubBatchBuffer returns an empty buffer.
func NewSubBatchBuffer() *SubBatchBuffer {
	return &SubBatchBuffer{
		pending: make(map[int]record.ReadInput),
		mateNum: make(map[int]int),
	}
}

// Add registers one mate (1 or 2) of the template at batchIndex. It returns
// the completed ReadPair and ok=true once both mates have arrived; otherwise
// it buffers read and returns ok=false.
func (b *SubBatchBuffer) Add(batchIndex, mateNum int, read record.ReadInput) (ReadPair, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	other, exists := b.pending[batchIndex]
	if !exists {
		b.pending[batchIndex] = read
		b.mateNum[batchIndex] = mateNum
		return ReadPair{}, false
	}

	firstMateNum := b.mateNum[batchIndex]
	delete(b.pending, batchIndex)
	delete(b.mateNum, batchIndex)

	pair := ReadPair{BatchIndex: batchIndex}
	if firstMateNum == 1 {
		pair.Mate1, pair.Mate2 = other, &read
	} else {
		pair.Mate1, pair.Mate2 = read, &other
	}
	return pair, true
}

// Pending reports how many templates are still waiting on their other mate
// — used at end-of-stream to flag unpaired stragglers.
func (b *SubBatchBuffer) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Drain returns the single-mate ReadPairs for every template still waiting
// on its other mate (end-of-stream: the mate never arrived), clearing the
// buffer. These templates are aligned as unpaired reads.
func (b *SubBatchBuffer) Drain() []ReadPair {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]ReadPair, 0, len(b.pending))
	for idx, read := range b.pending {
		out = append(out, ReadPair{BatchIndex: idx, Mate1: read})
	}
	b.pending = make(map[int]record.ReadInput)
	b.mateNum = make(map[int]int)
	return out
}
