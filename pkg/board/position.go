package board

import (
	"fmt"
)

// Position represents a cell on the board by (x, y), each in [0, Size). 16 bits.
type Position struct {
	X, Y int8
}

// Invalid is the sentinel invalid position, used in place of Option[Position].
var Invalid = Position{X: -1, Y: -1}

// NewPosition constructs a position. Does not validate bounds; use IsValid.
func NewPosition(x, y int) Position {
	return Position{X: int8(x), Y: int8(y)}
}

// IsValid returns true iff the position is on the board.
func (p Position) IsValid() bool {
	return p.X >= 0 && p.X < Size && p.Y >= 0 && p.Y < Size
}

// Index returns the linear cell index, y*Size+x. Only meaningful if IsValid().
func (p Position) Index() int {
	return int(p.Y)*Size + int(p.X)
}

// Add returns the position offset by (dx, dy). May be off-board.
func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + int8(dx), Y: p.Y + int8(dy)}
}

// Center returns the center cell of the board, the canonical opening move.
func Center() Position {
	return NewPosition(Size/2, Size/2)
}

func (p Position) Equals(o Position) bool {
	return p.X == o.X && p.Y == o.Y
}

// ParsePosition parses coordinate notation such as "h8" or "p15" (column
// letter, 1-based row number).
func ParsePosition(str string) (Position, error) {
	if len(str) < 2 {
		return Invalid, fmt.Errorf("invalid position: %q", str)
	}
	col := str[0]
	if col < 'a' || col >= 'a'+Size {
		return Invalid, fmt.Errorf("invalid column: %q", str)
	}
	var row int
	if _, err := fmt.Sscanf(str[1:], "%d", &row); err != nil {
		return Invalid, fmt.Errorf("invalid row: %q", str)
	}
	row--
	if row < 0 || row >= Size {
		return Invalid, fmt.Errorf("invalid row: %q", str)
	}
	return NewPosition(int(col-'a'), row), nil
}

func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%c%d", 'a'+byte(p.X), int(p.Y)+1)
}
