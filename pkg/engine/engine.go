// Package engine is the single library entry point a driver (console,
// HTTP server, tournament runner) is expected to call: it owns the
// current position, the shared transposition table, the Lazy-SMP pool,
// the ponderer and the time manager, serialized behind one mutex.
// Grounded on the teacher's pkg/engine/engine.go: functional Options,
// mutex-guarded facade, Reset/Move/Analyze/Halt shape, generalized from
// a single-search chess engine to a Caro engine with pondering and
// adaptive time control built in.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lavantien/caroengine/pkg/board"
	"github.com/lavantien/caroengine/pkg/book"
	"github.com/lavantien/caroengine/pkg/eval"
	"github.com/lavantien/caroengine/pkg/parallel"
	"github.com/lavantien/caroengine/pkg/ponder"
	"github.com/lavantien/caroengine/pkg/search"
	"github.com/lavantien/caroengine/pkg/timectrl"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
)

var version = build.NewVersion(0, 1, 0)

// Options are default runtime options. Overridden by per-call search
// options if provided, mirroring the teacher's engine.Options.
type Options struct {
	// Depth is the search depth limit. Zero means no limit.
	Depth int
	// Hash is the transposition table size in MB. Zero disables the
	// table (NoTranspositionTable).
	Hash uint
	// Noise adds evaluation jitter of this amplitude to break ties
	// differently across workers/runs.
	Noise uint
	// Threads is the Lazy-SMP worker count. Zero means one.
	Threads int
	// Difficulty drives the time manager's base aggressiveness.
	Difficulty timectrl.Difficulty
	// InitialTime and Increment are this game's clock settings.
	InitialTime time.Duration
	Increment   time.Duration
}

func (o Options) String() string {
	return fmt.Sprintf("{depth=%v, hash=%v, noise=%v, threads=%v, difficulty=%v}",
		o.Depth, o.Hash, o.Noise, o.Threads, o.Difficulty)
}

// Engine encapsulates Caro game-playing logic: position, search,
// pondering and time management.
type Engine struct {
	name, author string

	factory search.TranspositionTableFactory
	zt      *board.ZobristTable
	seed    int64
	opts    Options
	book    book.Book

	mu       sync.Mutex
	b        board.Board
	toMove   board.Player
	moveNo   int
	tt       search.TranspositionTable
	noise    eval.Evaluator
	tm       *timectrl.Manager
	ponderer *ponder.Ponderer
	active   bool
	lastPV   search.PV
}

// Option is an engine creation option.
type Option func(*Engine)

// WithTable configures the transposition table factory used when
// Options.Hash is non-zero.
func WithTable(factory search.TranspositionTableFactory) Option {
	return func(e *Engine) { e.factory = factory }
}

// WithOptions sets default runtime options.
func WithOptions(opts Options) Option {
	return func(e *Engine) { e.opts = opts }
}

// WithZobrist configures the engine to use the given random seed
// instead of the default seed of zero.
func WithZobrist(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// WithBook configures an opening book the engine probes once at the
// root before search. Defaults to book.None{}.
func WithBook(b book.Book) Option {
	return func(e *Engine) { e.book = b }
}

// New builds an Engine with an empty board and resets its game state.
func New(ctx context.Context, name, author string, opts ...Option) *Engine {
	e := &Engine{
		name:    name,
		author:  author,
		factory: defaultTableFactory,
		book:    book.None{},
	}
	for _, fn := range opts {
		fn(e)
	}
	e.zt = board.NewZobristTable(e.seed)

	e.Reset(ctx)

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

func defaultTableFactory(ctx context.Context, size uint64) search.TranspositionTable {
	return search.NewTable(ctx, size)
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author.
func (e *Engine) Author() string {
	return e.author
}

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts
}

func (e *Engine) SetDepth(depth int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.Depth = depth
}

func (e *Engine) SetHash(sizeMB uint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.Hash = sizeMB
	if sizeMB == 0 {
		e.tt = search.NoTranspositionTable{}
	} else {
		e.tt = e.factory(context.Background(), uint64(sizeMB)<<20)
	}
}

func (e *Engine) SetNoise(amplitude uint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.Noise = amplitude
	e.noise = e.buildNoise()
}

func (e *Engine) SetThreads(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.Threads = n
}

// Board returns a copy of the current position.
func (e *Engine) Board() board.Board {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.b.Clone()
}

// ToMove returns the side to move in the current position.
func (e *Engine) ToMove() board.Player {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.toMove
}

// Reset clears the engine to an empty board with Red to move, a fresh
// transposition table and ponderer, and a time manager reset for a new
// game with the current clock settings.
func (e *Engine) Reset(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Reset: depth=%v hash=%vMB noise=%v", e.opts.Depth, e.opts.Hash, e.opts.Noise)

	e.haltIfActiveLocked(ctx)

	e.b = board.New(e.zt)
	e.toMove = board.Red
	e.moveNo = 0
	e.lastPV = search.PV{}

	e.tt = search.NoTranspositionTable{}
	if e.opts.Hash > 0 {
		e.tt = e.factory(ctx, uint64(e.opts.Hash)<<20)
	}
	e.noise = e.buildNoise()

	e.tm = timectrl.New(e.opts.InitialTime, e.opts.Increment, e.opts.Difficulty)
	e.ponderer = ponder.New(e.pool())

	logw.Infof(ctx, "New board: %v", e.b)
}

func (e *Engine) buildNoise() eval.Evaluator {
	base := eval.Evaluator(eval.NewThreat())
	if e.opts.Noise == 0 {
		return base
	}
	return eval.NewNoise(base, int32(e.opts.Noise), e.seed)
}

func (e *Engine) pool() parallel.Pool {
	threads := e.opts.Threads
	if threads <= 0 {
		threads = 1
	}
	return parallel.Pool{TT: e.tt, Eval: e.noise, Threads: threads}
}

// Place plays move for p, usually an opponent move. p must equal the
// current side to move.
func (e *Engine) Place(ctx context.Context, pos board.Position, p board.Player) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p != e.toMove {
		return fmt.Errorf("out of turn: expected %v, got %v", e.toMove, p)
	}

	e.haltIfActiveLocked(ctx)

	next, err := e.b.Place(pos, p)
	if err != nil {
		return err
	}

	logw.Infof(ctx, "Place %v %v", p, pos)
	e.b = next
	e.toMove = p.Opponent()
	e.moveNo++
	return nil
}

// Result is the outcome of a completed Search call.
type Result struct {
	search.PV
	TimeSpent  time.Duration
	IsTimeout  bool
	FromBook   bool
	Allocation timectrl.TimeAllocation
}

// Search runs a move search in the current position under the time
// manager's allocation for the remaining clock, or opt's explicit
// depth/deadlines if opt is non-zero. Probes the opening book first;
// a book hit skips search entirely.
func (e *Engine) Search(ctx context.Context, remaining time.Duration, opt search.Options) (Result, error) {
	e.mu.Lock()
	if e.active {
		e.mu.Unlock()
		return Result{}, fmt.Errorf("search already active")
	}
	b, toMove, moveNo := e.b, e.toMove, e.moveNo
	pool := e.pool()
	tm := e.tm
	bk := e.book
	depth := e.opts.Depth
	e.active = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.active = false
		e.mu.Unlock()
	}()

	if m, ok := bk.Probe(b, toMove); ok {
		logw.Infof(ctx, "Book hit: %v", m.Move)
		pv := search.PV{Moves: []board.Position{m.Move}, Depth: 0}
		e.recordResult(pv)
		return Result{PV: pv, FromBook: true}, nil
	}

	candidates := search.Candidates(b, toMove, board.Invalid, search.NewContext(search.NoTranspositionTable{}, e.noise), 0)
	alloc := tm.Allocate(remaining, moveNo, len(candidates), b, toMove)

	if opt.MaxDepth == 0 {
		opt.MaxDepth = depth
	}
	start := time.Now()
	if opt.SoftDeadline.IsZero() {
		opt.SoftDeadline = start.Add(alloc.Soft)
	}
	if opt.HardDeadline.IsZero() {
		opt.HardDeadline = start.Add(alloc.Hard)
	}

	pv := pool.Search(ctx, b, toMove, opt)
	elapsed := time.Since(start)
	timedOut := elapsed >= alloc.Hard

	tm.ReportUsed(elapsed, alloc.Hard, timedOut)
	e.recordResult(pv)

	logw.Infof(ctx, "Search %v: %v, elapsed=%v", b, pv, elapsed)
	return Result{PV: pv, TimeSpent: elapsed, IsTimeout: timedOut, Allocation: alloc}, nil
}

func (e *Engine) recordResult(pv search.PV) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastPV = pv
}

// Halt reports the best result of the most recently completed search; it
// does not interrupt a search in flight. Caro search is synchronous (see pkg/parallel), so
// by the time Search returns there is nothing left to halt; Halt exists
// for symmetry with drivers built around an async "stop and report"
// command (e.g. a console or UCI-style protocol).
func (e *Engine) Halt(ctx context.Context) (search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Halt")
	return e.lastPV, nil
}

func (e *Engine) haltIfActiveLocked(ctx context.Context) {
	if e.ponderer != nil && e.ponderer.IsPondering() {
		res := e.ponderer.Stop()
		logw.Infof(ctx, "Ponder halted: %v", res)
	}
}

// StartPondering begins a background search against a predicted
// opponent reply, to be resolved by HandleOpponentMove once the
// opponent's actual move is known.
func (e *Engine) StartPondering(ctx context.Context, predicted board.Position, maxMs time.Duration) {
	e.mu.Lock()
	b, opponentToMove, ponderFor := e.b, e.toMove, e.toMove.Opponent()
	opt := search.Options{MaxDepth: e.opts.Depth, HardDeadline: time.Now().Add(maxMs)}
	p := e.ponderer
	e.mu.Unlock()

	p.Start(b, opponentToMove, predicted, ponderFor, opt)
}

// HandleOpponentMove resolves an in-flight ponder against the
// opponent's actual move and reports hit/miss plus the best result
// found. Also advances the engine's own position by actual.
func (e *Engine) HandleOpponentMove(ctx context.Context, actual board.Position) (ponder.State, ponder.Result, error) {
	e.mu.Lock()
	p := e.ponderer
	e.mu.Unlock()

	state, res := p.HandleOpponentMove(actual)
	if err := e.Place(ctx, actual, e.ToMove()); err != nil {
		return state, res, err
	}
	return state, res, nil
}

// StopPondering cancels an in-flight ponder and returns its best result.
func (e *Engine) StopPondering(ctx context.Context) ponder.Result {
	e.mu.Lock()
	p := e.ponderer
	e.mu.Unlock()
	return p.Stop()
}

// IsPondering reports whether a background ponder is active.
func (e *Engine) IsPondering() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ponderer.IsPondering()
}

// PonderStats returns lifetime ponder hit/miss statistics.
func (e *Engine) PonderStats() ponder.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ponderer.Stats()
}
