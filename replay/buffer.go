// Package replay implements a bounded experience replay buffer: a FIFO
// of fixed capacity with uniform random sampling without replacement,
// adapted from GoLearn's buffer/expreplay.Selectors (uniformSelector,
// fifoSelector eviction).
package replay

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Experience is a single (s, a, r, s', done) transition plus the legal
// actions available in s', required by Double-DQN target computation.
type Experience struct {
	State            *mat.VecDense
	Action           int
	Reward           float64
	NextState        *mat.VecDense
	Done             bool
	LegalNextActions map[int]bool
}

// Buffer is a bounded FIFO of Experiences with uniform random sampling.
// It is not safe for concurrent use; the self-play loop drains
// per-worker local lists into one Buffer after the game phase joins,
// so only the single training-phase goroutine touches it.
type Buffer struct {
	capacity int
	items    []Experience
	next     int // index to overwrite once items is full
	full     bool
	rng      *rand.Rand
}

// New returns an empty Buffer with the given capacity, sampling from
// rng (ordinarily the "replay" sub-stream from seedmgr.Manager).
func New(capacity int, rng *rand.Rand) *Buffer {
	if capacity <= 0 {
		panic("replay: capacity must be positive")
	}
	return &Buffer{
		capacity: capacity,
		items:    make([]Experience, capacity),
		rng:      rng,
	}
}

// Push appends an experience, evicting the oldest entry if the buffer
// is full. Amortized O(1).
func (b *Buffer) Push(e Experience) {
	b.items[b.next] = e
	b.next = (b.next + 1) % b.capacity
	if b.next == 0 {
		b.full = true
	}
}

// Size returns the number of experiences currently held.
func (b *Buffer) Size() int {
	if b.full {
		return b.capacity
	}
	return b.next
}

// Clear empties the buffer.
func (b *Buffer) Clear() {
	b.next = 0
	b.full = false
}

// Reseed replaces the buffer's sampling RNG. The self-play loop calls
// this once per cycle with a stream re-derived from the master seed
// and the cycle number, rather than carrying one *rand.Rand across the
// buffer's whole lifetime: a resumed run can then reproduce cycle K's
// sampling order exactly, without needing to serialize rand.Rand's own
// internal state into a checkpoint.
func (b *Buffer) Reseed(rng *rand.Rand) {
	b.rng = rng
}

// Items returns every experience currently held, oldest first. Used to
// persist the buffer's contents across a checkpoint.
func (b *Buffer) Items() []Experience {
	size := b.Size()
	out := make([]Experience, size)
	for i := range out {
		out[i] = b.items[b.physicalIndex(i)]
	}
	return out
}

// LoadItems replaces the buffer's contents with items, oldest first,
// as returned by a prior Items call. Capacity is unchanged; items
// beyond capacity evict the oldest ones, the same as repeated Push
// calls would.
func (b *Buffer) LoadItems(items []Experience) {
	b.Clear()
	for _, e := range items {
		b.Push(e)
	}
}

// Sample draws k distinct experiences uniformly at random without
// replacement. Fails with IsInsufficientSamples(err) == true if
// k > Size().
func (b *Buffer) Sample(k int) ([]Experience, error) {
	size := b.Size()
	if k > size {
		return nil, &Error{Op: "sample", Err: errInsufficientSamples}
	}

	// Fisher-Yates partial shuffle over a fresh index slice, matching
	// the uniform-without-replacement contract without mutating the
	// buffer's own storage order (insertion order is preserved for
	// eviction).
	indices := make([]int, size)
	for i := range indices {
		indices[i] = i
	}
	out := make([]Experience, k)
	for i := 0; i < k; i++ {
		j := i + b.rng.Intn(size-i)
		indices[i], indices[j] = indices[j], indices[i]
		out[i] = b.items[b.physicalIndex(indices[i])]
	}
	return out, nil
}

// physicalIndex maps a logical position (0 = oldest) to its index in
// the wraparound backing array.
func (b *Buffer) physicalIndex(logical int) int {
	if !b.full {
		return logical
	}
	return (b.next + logical) % b.capacity
}
