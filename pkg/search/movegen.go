package search

import (
	"container/heap"

	"github.com/lavantien/caroengine/pkg/board"
	"github.com/lavantien/caroengine/pkg/threat"
)

// Candidates produces the ordered candidate list for a node to move:
// the transposition-table move first (if any), then immediate wins,
// then forced blocks, then forcing attacker moves, then killers, then
// the remaining neighborhood sorted by history minus butterfly.
// Grounded on the teacher's board.NewMoveList heap-based priority queue
// (board/movelist.go) and its First/SortByPriority ordering idiom
// (search/exploration.go), generalized from chess MVV-LVA priorities to
// this engine's six-tier threat-driven ordering.
func Candidates(b board.Board, toMove board.Player, ttMove board.Position, ctx *Context, ply int) []board.Position {
	occupied := b.Occupied()
	if occupied.IsEmpty() {
		return []board.Position{board.Center()}
	}

	ranked := make(map[board.Position]int)
	var order []board.Position
	rank := 0
	add := func(p board.Position) {
		if !p.IsValid() || b.Cell(p) != board.None {
			return
		}
		if _, seen := ranked[p]; seen {
			return
		}
		ranked[p] = rank
		order = append(order, p)
		rank++
	}

	if ttMove.IsValid() {
		add(ttMove)
	}

	own := threat.Detect(b, toMove)
	opp := threat.Detect(b, toMove.Opponent())

	for _, t := range own {
		if t.Kind >= threat.BrokenFour {
			for _, g := range t.Gain {
				add(g)
			}
		}
	}
	for _, t := range opp {
		if t.Kind >= threat.BrokenFour {
			for _, g := range t.Gain {
				add(g)
			}
		}
	}
	for _, t := range own {
		if t.Kind == threat.StraightThree || t.Kind == threat.BrokenThree {
			for _, g := range t.Gain {
				add(g)
			}
		}
	}

	if ctx != nil {
		for _, k := range ctx.Killers.At(ply) {
			if k.IsValid() {
				add(k)
			}
		}
	}

	radius := DefaultRadius
	if ctx != nil && ctx.Radius > 0 {
		radius = ctx.Radius
	}
	var rest []board.Position
	for _, p := range board.Neighborhood(occupied, radius) {
		if _, seen := ranked[p]; seen {
			continue
		}
		rest = append(rest, p)
	}

	pq := NewPriorityQueue(rest, func(p board.Position) int64 { return score(ctx, p) })
	for {
		p, ok := pq.Next()
		if !ok {
			break
		}
		order = append(order, p)
	}

	return order
}

func score(ctx *Context, p board.Position) int64 {
	if ctx == nil {
		return 0
	}
	return ctx.History.Score(p) - ctx.Butterfly.Score(p)
}

// PriorityQueue is a heap-ordered move list, mirroring the teacher's
// board.MoveList exactly, generalized from board.Move to board.Position.
type PriorityQueue struct {
	h moveHeap
}

// NewPriorityQueue builds a PriorityQueue over moves, highest-priority
// first, ties broken by original order.
func NewPriorityQueue(moves []board.Position, priority func(board.Position) int64) *PriorityQueue {
	h := make(moveHeap, len(moves))
	for i, m := range moves {
		h[i] = moveElm{pos: m, val: priority(m), seq: i}
	}
	heap.Init(&h)
	return &PriorityQueue{h: h}
}

func (q *PriorityQueue) Next() (board.Position, bool) {
	if q.h.Len() == 0 {
		return board.Invalid, false
	}
	e := heap.Pop(&q.h).(moveElm)
	return e.pos, true
}

func (q *PriorityQueue) Len() int {
	return q.h.Len()
}

type moveElm struct {
	pos board.Position
	val int64
	seq int
}

type moveHeap []moveElm

func (h moveHeap) Len() int { return len(h) }
func (h moveHeap) Less(i, j int) bool {
	if h[i].val != h[j].val {
		return h[i].val > h[j].val
	}
	return h[i].seq < h[j].seq
}
func (h moveHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *moveHeap) Push(x interface{}) {
	*h = append(*h, x.(moveElm))
}
func (h *moveHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
