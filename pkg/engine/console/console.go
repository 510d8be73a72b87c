// Package console implements a minimal text driver for debugging the
// engine from a terminal: place moves by coordinate notation, print the
// board, and run a search. Grounded on the teacher's
// pkg/engine/console/console.go, generalized from algebraic chess moves
// and FEN positions to Caro coordinate notation and a plain stone grid.
package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lavantien/caroengine/pkg/board"
	"github.com/lavantien/caroengine/pkg/engine"
	"github.com/lavantien/caroengine/pkg/search"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

const ProtocolName = "console"

// Driver implements a console driver for debugging.
type Driver struct {
	iox.AsyncCloser

	e      *engine.Engine
	ponder bool // start pondering the predicted reply after each own move

	out    chan<- string
	active atomic.Bool // user is waiting for engine to move
}

func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string, ponder bool) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		AsyncCloser: iox.NewAsyncCloser(),
		e:           e,
		ponder:      ponder,
		out:         out,
	}
	go d.process(ctx, in)

	return d, out
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "Console protocol initialized")

	d.out <- fmt.Sprintf("engine %v (%v)", d.e.Name(), d.e.Author())
	d.printBoard(ctx)

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}

			parts := strings.Split(strings.TrimSpace(line), " ")
			if len(parts) == 0 {
				break
			}

			cmd := parts[0]
			args := parts[1:]

			switch strings.ToLower(cmd) {
			case "reset", "r":
				d.e.Reset(ctx)
				d.printBoard(ctx)

			case "print", "p":
				d.printBoard(ctx)

			case "go", "search", "s":
				remaining := d.e.Options().InitialTime
				if len(args) > 0 {
					if ms, err := strconv.Atoi(args[0]); err == nil {
						remaining = time.Duration(ms) * time.Millisecond
					}
				}

				d.active.Store(true)
				go func() {
					res, err := d.e.Search(ctx, remaining, search.Options{})
					if err != nil {
						logw.Errorf(ctx, "Search failed: %v", err)
						d.active.Store(false)
						return
					}
					d.searchCompleted(ctx, res)
				}()

			case "depth", "d":
				if len(args) > 0 {
					depth, _ := strconv.Atoi(args[0])
					d.e.SetDepth(depth)
				}

			case "hash": // size in MB
				if len(args) > 0 {
					hash, _ := strconv.Atoi(args[0])
					d.e.SetHash(uint(hash))
				}

			case "nohash":
				d.e.SetHash(0)

			case "noise": // evaluation randomness amplitude
				if len(args) > 0 {
					noise, _ := strconv.Atoi(args[0])
					d.e.SetNoise(uint(noise))
				}

			case "nonoise":
				d.e.SetNoise(0)

			case "threads", "t":
				if len(args) > 0 {
					threads, _ := strconv.Atoi(args[0])
					d.e.SetThreads(threads)
				}

			case "halt", "stop":
				pv, err := d.e.Halt(ctx)
				if err == nil {
					d.active.Store(false)
					d.out <- pv.String()
				}

			case "ponderstop":
				res := d.e.StopPondering(ctx)
				d.out <- fmt.Sprintf("ponder stopped: %v", res)

			case "quit", "exit", "q":
				return

			case "":
				// ignore empty command

			default:
				// Assume a move if not a recognized command: "h8" places
				// for the current side to move. If a ponder is in
				// flight, resolve it against this move as a
				// ponder-hit/miss (which also places the move)
				// instead of a plain Place.

				pos, err := board.ParsePosition(cmd)
				if err != nil {
					d.out <- fmt.Sprintf("invalid command: '%v'", cmd)
					break
				}

				var placeErr error
				if d.e.IsPondering() {
					_, res, herr := d.e.HandleOpponentMove(ctx, pos)
					placeErr = herr
					if herr == nil {
						d.out <- fmt.Sprintf("ponder %v: %v", pondertag(res.PonderHit), res)
					}
				} else {
					placeErr = d.e.Place(ctx, pos, d.e.ToMove())
				}

				if placeErr != nil {
					d.out <- fmt.Sprintf("invalid move: '%v': %v", cmd, placeErr)
				} else {
					d.printBoard(ctx)
				}
			}

		case <-d.Closed():
			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

func (d *Driver) searchCompleted(ctx context.Context, res engine.Result) {
	if !d.active.CompareAndSwap(true, false) {
		return // stale or duplicate result
	}

	if len(res.Moves) > 0 {
		d.out <- fmt.Sprintf("bestmove %v", res.Moves[0])
		if err := d.e.Place(ctx, res.Moves[0], d.e.ToMove()); err != nil {
			logw.Errorf(ctx, "Failed to apply bestmove: %v", err)
		}
		if d.ponder && len(res.Moves) > 1 {
			d.e.StartPondering(ctx, res.Moves[1], 10*time.Second)
		}
	} else {
		d.out <- "bestmove none (draw)"
	}
	d.out <- res.PV.String()
	d.printBoard(ctx)
}

func pondertag(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

func (d *Driver) printBoard(ctx context.Context) {
	b := d.e.Board()

	d.out <- ""
	d.out <- b.String()
	d.out <- fmt.Sprintf("to move: %v, hash: 0x%x", d.e.ToMove(), uint64(b.Hash()))
	d.out <- ""
}
