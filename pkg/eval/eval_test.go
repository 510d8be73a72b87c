package eval_test

import (
	"testing"

	"github.com/lavantien/caroengine/pkg/board"
	"github.com/lavantien/caroengine/pkg/eval"
	"github.com/stretchr/testify/assert"
)

func TestThreatEvaluatorFavorsOwnThreats(t *testing.T) {
	b := board.New(nil)
	var err error
	for _, p := range []board.Position{
		board.NewPosition(5, 5), board.NewPosition(6, 5), board.NewPosition(7, 5),
	} {
		b, err = b.Place(p, board.Red)
		assert.NoError(t, err)
	}

	e := eval.NewThreat()
	redScore := e.Evaluate(b, board.Red)
	blueScore := e.Evaluate(b, board.Blue)

	assert.True(t, redScore > 0)
	assert.Equal(t, redScore, -blueScore)
}

func TestThreatEvaluatorSymmetricOnEmptyBoard(t *testing.T) {
	b := board.New(nil)
	e := eval.NewThreat()
	assert.Equal(t, eval.ZeroScore, e.Evaluate(b, board.Red))
}

func TestNoiseStaysWithinAmplitudeAndSkipsMate(t *testing.T) {
	base := eval.NewThreat()
	n := eval.NewNoise(base, 50, 1)
	b := board.New(nil)

	s := n.Evaluate(b, board.Red)
	assert.True(t, int32(s) >= -50 && int32(s) <= 50)

	zero := eval.NewNoise(mockMate{}, 50, 1)
	assert.Equal(t, eval.Won(3), zero.Evaluate(b, board.Red))
}

type mockMate struct{}

func (mockMate) Evaluate(board.Board, board.Player) eval.Score {
	return eval.Won(3)
}
