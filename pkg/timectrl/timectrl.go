// Package timectrl implements the adaptive, PID-style per-move time
// manager: one single-threaded instance per game, never called
// concurrently with itself. Grounded on hailam-chessplay's
// internal/engine difficulty-to-limits table for the Difficulty axis,
// generalized from a flat per-difficulty constant into the full
// remaining-clock-aware PID controller this engine's increment-clock
// support requires.
package timectrl

import (
	"time"

	"github.com/lavantien/caroengine/pkg/board"
)

// Difficulty is a totally ordered skill level; higher spends more time
// and searches more aggressively.
type Difficulty int

const (
	Braindead Difficulty = iota
	Easy
	Medium
	Hard
	Grandmaster
)

func (d Difficulty) String() string {
	switch d {
	case Braindead:
		return "Braindead"
	case Easy:
		return "Easy"
	case Medium:
		return "Medium"
	case Hard:
		return "Hard"
	case Grandmaster:
		return "Grandmaster"
	default:
		return "Unknown"
	}
}

// baseAggressiveness is the per-difficulty starting multiplier before
// pressure adjustment.
var baseAggressiveness = map[Difficulty]float64{
	Braindead:   0.3,
	Easy:        0.6,
	Medium:      1.0,
	Hard:        1.5,
	Grandmaster: 2.2,
}

// maxPercentOfRemaining caps a single move's soft bound as a fraction
// of the clock still on the board, scaled by difficulty.
var maxPercentOfRemaining = map[Difficulty]float64{
	Braindead:   0.05,
	Easy:        0.08,
	Medium:      0.12,
	Hard:        0.18,
	Grandmaster: 0.25,
}

// Phase is the coarse game stage derived from move number, controlling
// time allocation modifiers.
type Phase uint8

const (
	Opening Phase = iota
	EarlyMid
	LateMid
	Endgame
)

func (p Phase) String() string {
	switch p {
	case Opening:
		return "Opening"
	case EarlyMid:
		return "EarlyMid"
	case LateMid:
		return "LateMid"
	default:
		return "Endgame"
	}
}

// phaseForMove buckets by move number thresholds.
func phaseForMove(moveNo int) Phase {
	switch {
	case moveNo <= 10:
		return Opening
	case moveNo <= 25:
		return EarlyMid
	case moveNo <= 45:
		return LateMid
	default:
		return Endgame
	}
}

// phaseModifier scales base per-move time by game stage: openings move
// fast off book knowledge and theory, endgames are where tactics bite.
var phaseModifier = map[Phase]float64{
	Opening:  0.7,
	EarlyMid: 1.0,
	LateMid:  1.2,
	Endgame:  1.4,
}

// movesToEndFor estimates the number of moves remaining in the game at
// this phase, used as the denominator of the base per-move allocation.
func movesToEndFor(p Phase) float64 {
	switch p {
	case Opening:
		return 40
	case EarlyMid:
		return 30
	case LateMid:
		return 18
	default:
		return 10
	}
}

// TimeAllocation is the result of one Allocate call.
type TimeAllocation struct {
	Soft      time.Duration
	Hard      time.Duration
	Optimal   time.Duration
	Emergency bool
	Scramble  bool
	Phase     Phase
}

// Manager is a PID-like controller over a single game's move history.
// Not thread-safe: owned by the single-threaded controller above the
// search, per this engine's concurrency model.
type Manager struct {
	initial    time.Duration
	increment  time.Duration
	difficulty Difficulty

	prevError    float64
	integral     float64
	multiplier   float64
	hasPrevError bool
}

// New builds a Manager for a game with the given base clock, increment,
// and difficulty.
func New(initial, increment time.Duration, difficulty Difficulty) *Manager {
	return &Manager{
		initial:    initial,
		increment:  increment,
		difficulty: difficulty,
		multiplier: baseAggressiveness[difficulty],
	}
}

const (
	integralDecay = 0.9
	integralClamp = 0.5
	emaAlpha      = 0.3
)

// Allocate computes the soft/hard/optimal budgets for the move about to
// be searched. candidateCount and stoneCount feed the position-
// complexity multiplier; b may be the zero Board when unavailable.
func (m *Manager) Allocate(remaining time.Duration, moveNo int, candidateCount int, b board.Board, side board.Player) TimeAllocation {
	if remaining < 0 {
		remaining = 0
	}

	// 1-4: PID pressure.
	errP := 1 - float64(remaining)/float64(maxDuration(m.initial, time.Millisecond))
	m.integral = m.integral*integralDecay + errP
	if m.integral > integralClamp {
		m.integral = integralClamp
	} else if m.integral < -integralClamp {
		m.integral = -integralClamp
	}
	derivative := 0.0
	if m.hasPrevError {
		derivative = errP - m.prevError
	}
	m.prevError = errP
	m.hasPrevError = true

	pressure := 0.6*errP + 0.3*m.integral + 0.1*derivative
	pressure = clamp01(pressure)

	// 5: adaptive multiplier, EMA-smoothed.
	base := baseAggressiveness[m.difficulty]
	target := base * (1 - 0.7*pressure)
	m.multiplier = emaAlpha*target + (1-emaAlpha)*m.multiplier
	if m.multiplier < 0.2 {
		m.multiplier = 0.2
	} else if m.multiplier > 3.0 {
		m.multiplier = 3.0
	}

	// 6-7: base per-move time, scaled.
	phase := phaseForMove(moveNo)
	perMove := float64(remaining)/movesToEndFor(phase) + 0.6*float64(m.increment)
	perMove *= phaseModifier[phase]
	perMove *= complexityMultiplier(candidateCount, b)
	perMove *= m.multiplier

	// 8: caps.
	maxPct := maxPercentOfRemaining[m.difficulty]
	capByRemaining := float64(remaining) * maxPct
	capByBurn := 3 * float64(m.increment)
	if capByBurn <= 0 {
		capByBurn = capByRemaining
	}
	soft := minFloat(perMove, minFloat(capByRemaining, capByBurn))
	if soft < 0 {
		soft = 0
	}
	hard := soft * 1.3
	hardCap := minFloat(capByRemaining, capByBurn)
	if hard > hardCap {
		hard = hardCap
	}
	optimal := soft * 0.8

	alloc := TimeAllocation{
		Soft:    time.Duration(soft),
		Hard:    time.Duration(hard),
		Optimal: time.Duration(optimal),
		Phase:   phase,
	}

	// 9: time scramble.
	scrambleThreshold := minDuration(3*m.increment, 30*time.Second)
	if remaining < scrambleThreshold {
		alloc.Scramble = true
		s := float64(m.increment) * 0.4
		h := float64(m.increment) * 0.5
		minFloor := float64(300 * time.Millisecond)
		alloc.Soft = time.Duration(maxFloat(s, minFloor))
		alloc.Hard = time.Duration(maxFloat(h, minFloor))
		alloc.Optimal = alloc.Soft
	}

	// 10: emergency.
	emergencyFloor := maxDuration(2*time.Second, m.initial/20)
	last5 := moveNo >= 0 && remainingMovesLow(remaining, moveNo)
	if remaining < emergencyFloor || last5 {
		alloc.Emergency = true
		frac := float64(m.increment) * 0.3
		if frac <= 0 {
			frac = float64(remaining) * 0.05
		}
		alloc.Soft = time.Duration(frac)
		alloc.Hard = time.Duration(frac * 1.5)
		alloc.Optimal = alloc.Soft
	}

	return alloc
}

// remainingMovesLow is a conservative placeholder for "last 5 moves and
// remaining < movesLeft x 1s": without an explicit moves-left oracle,
// this engine treats the endgame phase itself (past move 45) with a tight
// clock as the trigger.
func remainingMovesLow(remaining time.Duration, moveNo int) bool {
	return moveNo > 45 && remaining < 5*time.Second
}

// complexityMultiplier scales time by how contested the position is:
// more live candidates and more stones on the board warrant more
// thought, within a bounded range so it never dominates the formula.
func complexityMultiplier(candidateCount int, b board.Board) float64 {
	stones := b.MoveCount()
	m := 1.0
	if candidateCount > 20 {
		m += 0.2
	}
	if stones > 40 {
		m += 0.15
	}
	if m > 1.5 {
		m = 1.5
	}
	return m
}

// ReportUsed adjusts the adaptive multiplier after a move completes,
// per the documented post-move feedback rule.
func (m *Manager) ReportUsed(actual, allocated time.Duration, timedOut bool) {
	switch {
	case timedOut:
		m.multiplier *= 0.5
	case allocated > 0 && actual <= allocated/2:
		m.multiplier *= 1.05
	case allocated > 0 && float64(actual) >= 0.9*float64(allocated):
		m.multiplier *= 0.95
	}
	if m.multiplier < 0.2 {
		m.multiplier = 0.2
	} else if m.multiplier > 3.0 {
		m.multiplier = 3.0
	}
}

// Reset clears per-game state for a fresh game with the same clock
// settings.
func (m *Manager) Reset() {
	m.prevError = 0
	m.integral = 0
	m.multiplier = baseAggressiveness[m.difficulty]
	m.hasPrevError = false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
