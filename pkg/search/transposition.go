package search

import (
	"context"
	"fmt"
	"math/bits"

	"github.com/lavantien/caroengine/pkg/board"
	"github.com/lavantien/caroengine/pkg/eval"
	"github.com/seekerror/logw"
	"go.uber.org/atomic"
)

// Bound represents the bound of a -- possibly inexact -- search score,
// grounded on the teacher's own Bound type but extended with
// UpperBound, which the teacher's chess search never needed but this
// engine's fail-low handling does.
type Bound uint8

const (
	ExactBound Bound = iota
	LowerBound
	UpperBound
)

func (b Bound) String() string {
	switch b {
	case ExactBound:
		return "Exact"
	case LowerBound:
		return "Lower"
	case UpperBound:
		return "Upper"
	default:
		return "?"
	}
}

// Entry is a decoded transposition-table record.
type Entry struct {
	Bound      Bound
	Depth      int
	Score      eval.Score
	Move       board.Position
	Generation uint8
}

const bucketSize = 4

// slot is one lock-free, XOR-encoded table cell: the key word is never
// stored directly, only XORed with the payload, so that a reader who
// observes the two words torn across an in-flight writer reconstructs a
// key that (overwhelmingly likely) fails to match the lookup hash and
// is correctly treated as empty, rather than reading a payload that
// belongs to a different key.
type slot struct {
	keyXORpayload atomic.Uint64
	payload       atomic.Uint64
}

func (s *slot) load(hash board.Hash) (Entry, bool) {
	kx := s.keyXORpayload.Load()
	pl := s.payload.Load()
	if kx^pl != uint64(hash) {
		return Entry{}, false
	}
	if pl == 0 {
		return Entry{}, false
	}
	return unpack(pl), true
}

// store writes payload before the XOR-encoded key word, so that any
// reader observing the new key word is guaranteed (by program order on
// each individually-atomic word, per the Go memory model) to observe a
// payload at least as new as the one folded into that key word.
func (s *slot) store(hash board.Hash, e Entry) {
	pl := pack(e)
	s.payload.Store(pl)
	s.keyXORpayload.Store(uint64(hash) ^ pl)
}

// Packed layout deviates from a literal 16-bit score field: mate scores
// (± ~1,000,000) do not fit 16 bits, so the full int32 Score is packed
// instead. The word-pair XOR atomicity contract is unaffected, since it
// only depends on there being exactly one payload word, not its width.
func pack(e Entry) uint64 {
	score := uint64(uint32(int32(e.Score)))
	mx := uint64(e.Move.X) & 0xF
	my := uint64(e.Move.Y) & 0xF
	bnd := uint64(e.Bound) & 0x3
	depth := uint64(uint8(e.Depth))
	gen := uint64(e.Generation)
	return score | mx<<32 | my<<36 | bnd<<40 | depth<<42 | gen<<50
}

func unpack(pl uint64) Entry {
	return Entry{
		Score: eval.Score(int32(uint32(pl))),
		Move: board.Position{
			X: int8((pl >> 32) & 0xF),
			Y: int8((pl >> 36) & 0xF),
		},
		Bound:      Bound((pl >> 40) & 0x3),
		Depth:      int((pl >> 42) & 0xFF),
		Generation: uint8((pl >> 50) & 0xFF),
	}
}

// TranspositionTable is a fixed-size, lock-free transposition table
// shared by every search worker. Must be thread-safe for concurrent
// Lookup/Store from any number of goroutines.
type TranspositionTable interface {
	Lookup(hash board.Hash) (Entry, bool)
	Store(hash board.Hash, e Entry)
	NewGeneration() uint8
	Size() uint64
	Used() float64
}

// TranspositionTableFactory builds a TranspositionTable sized to
// roughly size bytes, for engine-level options like "hash MB" to
// construct the table lazily without pkg/engine depending on Table's
// concrete layout.
type TranspositionTableFactory func(ctx context.Context, size uint64) TranspositionTable

// Table is the production TranspositionTable: an array of fixed-size
// buckets, each independently lock-free via the XOR protocol above.
// Grounded on the teacher's single-pointer-per-slot table
// (pkg/search/transposition.go), generalized from one CAS'd pointer per
// slot to the XOR-encoded word-pair protocol and from single-slot
// addressing to small buckets, per the bucketed, generation-aware
// design this engine requires.
type Table struct {
	buckets    []slot
	bucketMask uint64
	generation atomic.Uint32
	used       atomic.Uint64
}

// NewTable allocates a table sized to roughly sizeBytes, rounded up
// to a power-of-two number of buckets of bucketSize slots each.
func NewTable(ctx context.Context, sizeBytes uint64) *Table {
	const slotBytes = 16
	n := sizeBytes / (slotBytes * bucketSize)
	if n == 0 {
		n = 1
	}
	numBuckets := uint64(1) << bits.Len64(n-1)
	if numBuckets == 0 {
		numBuckets = 1
	}

	logw.Infof(ctx, "Allocating %vMB TT with %v buckets x %v slots", sizeBytes>>20, numBuckets, bucketSize)

	return &Table{
		buckets:    make([]slot, numBuckets*bucketSize),
		bucketMask: numBuckets - 1,
	}
}

func (t *Table) bucket(hash board.Hash) []slot {
	idx := (uint64(hash) & t.bucketMask) * bucketSize
	return t.buckets[idx : idx+bucketSize]
}

func (t *Table) Lookup(hash board.Hash) (Entry, bool) {
	for i := range t.bucket(hash) {
		if e, ok := t.bucket(hash)[i].load(hash); ok {
			return e, true
		}
	}
	return Entry{}, false
}

// Store writes e into the bucket slot selected by replacement policy:
// prefer an empty slot; else the slot with the oldest generation; else
// the slot with the shallowest depth. Candidate slots are decoded via
// their own payload word directly (not slot.load, which only succeeds
// when the stored key matches hash) since the normal case here is a
// bucket slot occupied by some *other* position's entry entirely.
func (t *Table) Store(hash board.Hash, e Entry) {
	bucket := t.bucket(hash)

	var victim *slot
	var victimGen uint8 = 255
	victimDepth := 1 << 30

	for i := range bucket {
		s := &bucket[i]
		pl := s.payload.Load()
		if pl == 0 {
			victim = s
			break
		}
		cur := unpack(pl)
		if victim == nil || cur.Generation < victimGen ||
			(cur.Generation == victimGen && cur.Depth < victimDepth) {
			victim, victimGen, victimDepth = s, cur.Generation, cur.Depth
		}
	}
	if victim == nil {
		victim = &bucket[0]
	}

	if victim.payload.Load() == 0 {
		t.used.Add(1)
	}
	victim.store(hash, e)
}

// NewGeneration bumps the global generation counter, called before
// each root search so younger entries can displace older, deeper ones.
func (t *Table) NewGeneration() uint8 {
	return uint8(t.generation.Add(1))
}

func (t *Table) Size() uint64 {
	return uint64(len(t.buckets)) * 16
}

func (t *Table) Used() float64 {
	return float64(t.used.Load()) / float64(len(t.buckets))
}

func (t *Table) String() string {
	return fmt.Sprintf("TT[%v @ %v%%]", t.Size(), int(100*t.Used()))
}

// NoTranspositionTable is a Nop implementation, useful for tests that
// want to exercise search logic without TT-dependent pruning.
type NoTranspositionTable struct{}

func (NoTranspositionTable) Lookup(board.Hash) (Entry, bool) { return Entry{}, false }
func (NoTranspositionTable) Store(board.Hash, Entry)         {}
func (NoTranspositionTable) NewGeneration() uint8            { return 0 }
func (NoTranspositionTable) Size() uint64                    { return 0 }
func (NoTranspositionTable) Used() float64                   { return 0 }
