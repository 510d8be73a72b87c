// Command caroengine is a minimal demonstration driver for the search
// core: a text console protocol for manual testing, in the shape of the
// teacher's cmd/morlock. It is explicitly not the product CLI (the
// tournament runner, HTTP/SignalR server and UCI-like option parser are
// external collaborators per spec.md §1/§6).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/lavantien/caroengine/pkg/engine"
	"github.com/lavantien/caroengine/pkg/engine/console"
	"github.com/lavantien/caroengine/pkg/timectrl"
	"github.com/seekerror/logw"
)

var (
	depth      = flag.Int("depth", 0, "Search depth limit (zero: no limit, use time control)")
	hash       = flag.Uint("hash", 64, "Transposition table size in MB (zero disables the table)")
	noise      = flag.Uint("noise", 0, "Evaluation noise amplitude (zero if deterministic)")
	threads    = flag.Int("threads", 1, "Lazy-SMP worker count")
	difficulty = flag.String("difficulty", "medium", "Difficulty: braindead, easy, medium, hard, grandmaster")
	initialSec = flag.Int("initial", 60, "Initial clock in seconds")
	incSec     = flag.Int("increment", 1, "Clock increment in seconds")
	ponder     = flag.Bool("ponder", false, "Ponder the predicted reply on the opponent's clock after each own move")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: caroengine [options]

CAROENGINE is a demonstration driver for a Caro (Gomoku) search core.
Options:
`)
		flag.PrintDefaults()
	}
}

func parseDifficulty(s string) timectrl.Difficulty {
	switch s {
	case "braindead":
		return timectrl.Braindead
	case "easy":
		return timectrl.Easy
	case "hard":
		return timectrl.Hard
	case "grandmaster":
		return timectrl.Grandmaster
	default:
		return timectrl.Medium
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	opts := engine.Options{
		Depth:       *depth,
		Hash:        *hash,
		Noise:       *noise,
		Threads:     *threads,
		Difficulty:  parseDifficulty(*difficulty),
		InitialTime: time.Duration(*initialSec) * time.Second,
		Increment:   time.Duration(*incSec) * time.Second,
	}
	e := engine.New(ctx, "caroengine", "lavantien", engine.WithOptions(opts))

	in := engine.ReadStdinLines(ctx)
	driver, out := console.NewDriver(ctx, e, in, *ponder)
	go engine.WriteStdoutLines(ctx, out)

	<-driver.Closed()

	logw.Infof(ctx, "caroengine exiting")
}
