// Package ponder implements the pondering state machine: searching on
// the opponent's clock against a predicted reply, with hit/miss
// resolution and accumulated-time merging. Grounded on the teacher's
// searchctl package (pkg/search/searchctl/iterative.go's mutex-owned
// handle plus background-goroutine-with-callback shape), generalized
// from a single depth-loop handle to the five-state graph this engine's
// opponent-move resolution requires.
package ponder

import (
	"context"
	"sync"
	"time"

	"github.com/lavantien/caroengine/pkg/board"
	"github.com/lavantien/caroengine/pkg/eval"
	"github.com/lavantien/caroengine/pkg/parallel"
	"github.com/lavantien/caroengine/pkg/search"
	"go.uber.org/atomic"
)

// State is one of the five documented ponder states.
type State uint8

const (
	Idle State = iota
	Pondering
	PonderHit
	PonderMiss
	Cancelled
)

func (s State) String() string {
	switch s {
	case Pondering:
		return "Pondering"
	case PonderHit:
		return "PonderHit"
	case PonderMiss:
		return "PonderMiss"
	case Cancelled:
		return "Cancelled"
	default:
		return "Idle"
	}
}

// Result is published on every opponent-move resolution and on Stop.
type Result struct {
	PonderHit bool
	BestMove  board.Position
	Depth     int
	Score     eval.Score
	Nodes     uint64
	TimeSpent time.Duration
}

// Stats accumulates lifetime ponderer statistics.
type Stats struct {
	Hits            int
	Misses          int
	TotalPonderTime time.Duration
}

// handleWaitBudget bounds how long HandleOpponentMove waits for the
// background search to produce a result before resolving regardless.
const handleWaitBudget = 50 * time.Millisecond

// stopWaitBudget bounds Stop's wait for the background worker to exit.
const stopWaitBudget = 500 * time.Millisecond

// Ponderer is a single mutex-owned state machine plus one atomic stop
// flag, per this engine's re-architecture of "mixed volatile flags and
// locks" into one disciplined owner: state and is-pondering are never
// read outside the mutex, and the mutex is never held across the
// background search itself.
type Ponderer struct {
	Pool parallel.Pool

	mu    sync.Mutex
	state State
	stats Stats

	predicted board.Position
	ponderFor board.Player
	started   time.Time

	cancel  context.CancelFunc
	stop    *atomic.Bool
	done    chan struct{}
	current search.PV
}

// New builds an idle Ponderer over the given search pool.
func New(pool parallel.Pool) *Ponderer {
	return &Ponderer{Pool: pool, state: Idle}
}

// State returns the current state under the ponderer's mutex.
func (p *Ponderer) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// IsPondering reports whether the ponderer is actively searching.
func (p *Ponderer) IsPondering() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == Pondering
}

// Stats returns a copy of the lifetime statistics.
func (p *Ponderer) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Start begins pondering against b (the position after the opponent's
// actual preceding move) on behalf of ponderFor, predicting that the
// opponent (the side to move in b) will play predicted. Calls in any
// state other than Idle (including re-entrant calls while Pondering) are
// ignored, not errored; Reset returns the ponderer to Idle.
func (p *Ponderer) Start(b board.Board, opponentToMove board.Player, predicted board.Position, ponderFor board.Player, opt search.Options) {
	p.mu.Lock()
	if p.state != Idle {
		p.mu.Unlock()
		return
	}

	pondered := b
	if predicted.IsValid() {
		if next, err := b.Place(predicted, opponentToMove); err == nil {
			pondered = next
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.state = Pondering
	p.predicted = predicted
	p.ponderFor = ponderFor
	p.started = time.Now()
	p.cancel = cancel
	p.stop = atomic.NewBool(false)
	p.done = make(chan struct{})
	p.current = search.PV{}
	done := p.done
	p.mu.Unlock()

	go func() {
		defer close(done)
		pv := p.Pool.Search(ctx, pondered, ponderFor, opt)
		p.mu.Lock()
		p.current = pv
		p.mu.Unlock()
	}()
}

// HandleOpponentMove resolves the pondered prediction against the
// opponent's actual move. It waits briefly for the background search
// to produce a result, then transitions to PonderHit (keeping the
// search and reporting elapsed wall-clock as time to merge with the
// subsequent main search) or PonderMiss (stopping the search).
func (p *Ponderer) HandleOpponentMove(actual board.Position) (State, Result) {
	p.mu.Lock()
	if p.state != Pondering {
		st := p.state
		p.mu.Unlock()
		return st, Result{}
	}
	done := p.done
	predicted := p.predicted
	started := p.started
	p.mu.Unlock()

	select {
	case <-done:
	case <-time.After(handleWaitBudget):
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	hit := predicted.IsValid() && predicted.Equals(actual)
	elapsed := time.Since(started)

	if hit {
		p.state = PonderHit
		p.stats.Hits++
	} else {
		p.stop.Store(true)
		p.cancel()
		p.state = PonderMiss
		p.stats.Misses++
	}
	p.stats.TotalPonderTime += elapsed

	res := Result{
		PonderHit: hit,
		BestMove:  firstOrInvalid(p.current.Moves),
		Depth:     p.current.Depth,
		Score:     p.current.Score,
		Nodes:     p.current.Nodes,
		TimeSpent: elapsed,
	}
	return p.state, res
}

// Stop cancels an in-flight ponder, waits boundedly for the worker to
// exit, and returns the best result found so far. Calling Stop when not
// Pondering also moves the state to Cancelled and reports the last known
// result.
func (p *Ponderer) Stop() Result {
	p.mu.Lock()
	if p.state != Pondering {
		st := p.current
		p.state = Cancelled
		p.mu.Unlock()
		return Result{BestMove: firstOrInvalid(st.Moves), Depth: st.Depth, Score: st.Score, Nodes: st.Nodes}
	}
	p.stop.Store(true)
	p.cancel()
	done := p.done
	p.state = Cancelled
	p.mu.Unlock()

	select {
	case <-done:
	case <-time.After(stopWaitBudget):
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return Result{BestMove: firstOrInvalid(p.current.Moves), Depth: p.current.Depth, Score: p.current.Score, Nodes: p.current.Nodes}
}

// Reset returns the ponderer to Idle, clearing context. Always called
// at game boundaries, from any state.
func (p *Ponderer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = Idle
	p.predicted = board.Invalid
	p.current = search.PV{}
}

func firstOrInvalid(moves []board.Position) board.Position {
	if len(moves) == 0 {
		return board.Invalid
	}
	return moves[0]
}
