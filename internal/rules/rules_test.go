package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bugout/internal/domain"
)

type step struct {
	player domain.Player
	coord  domain.MoveCoord
}

func b(x, y int) step { return step{domain.Black, domain.At(x, y)} }
func w(x, y int) step { return step{domain.White, domain.At(x, y)} }

// playAll plays steps from an empty board and fails on any rejection.
func playAll(t *testing.T, size int, steps ...step) domain.GameState {
	t.Helper()
	s := domain.NewGameState(size)
	for i, st := range steps {
		next, _, reason := Play(s, domain.MoveMade{Player: st.player, Coord: st.coord, EventID: domain.NewEventID()})
		require.Empty(t, reason, "step %d (%s %s)", i+1, st.player, st.coord)
		s = next
	}
	return s
}

func TestFirstMoveWithoutCapture(t *testing.T) {
	s := playAll(t, 19, b(3, 3))

	assert.Equal(t, map[domain.Coord]domain.Player{{X: 3, Y: 3}: domain.Black}, s.Board.Pieces)
	assert.Equal(t, uint32(2), s.Turn)
	assert.Equal(t, domain.White, s.PlayerUp)
	assert.Equal(t, domain.Captures{}, s.Captures)
}

func TestSingleStoneCapture(t *testing.T) {
	s := playAll(t, 19, b(0, 1), w(0, 0))

	next, made, reason := Play(s, domain.MoveMade{Player: domain.Black, Coord: domain.At(1, 0)})
	require.Empty(t, reason)

	assert.Equal(t, map[domain.Coord]domain.Player{
		{X: 0, Y: 1}: domain.Black,
		{X: 1, Y: 0}: domain.Black,
	}, next.Board.Pieces)
	assert.Equal(t, uint32(4), next.Turn)
	assert.Equal(t, domain.White, next.PlayerUp)
	assert.Equal(t, domain.Captures{Black: 1, White: 0}, next.Captures)
	assert.Equal(t, []domain.Coord{{X: 0, Y: 0}}, made.Captured)
	assert.Equal(t, made, next.Moves[len(next.Moves)-1])
}

func TestRejections(t *testing.T) {
	cases := []struct {
		name   string
		setup  []step
		move   step
		reason domain.RejectReason
	}{
		{
			name:   "suicide in the corner",
			setup:  []step{b(5, 5), w(0, 1), b(6, 6), w(1, 0)},
			move:   b(0, 0),
			reason: domain.Suicide,
		},
		{
			name:   "occupied point",
			setup:  []step{b(4, 4)},
			move:   w(4, 4),
			reason: domain.Occupied,
		},
		{
			name:   "out of turn",
			setup:  []step{b(4, 4)},
			move:   b(5, 5),
			reason: domain.NotYourTurn,
		},
		{
			name:   "off the board",
			move:   b(9, 0),
			reason: domain.OutOfBounds,
		},
		{
			name:   "after two passes",
			setup:  []step{{domain.Black, domain.PassMove}, {domain.White, domain.PassMove}},
			move:   b(1, 1),
			reason: domain.GameOver,
		},
		{
			name:   "after resignation",
			setup:  []step{b(2, 2), {domain.White, domain.ResignMove}},
			move:   b(1, 1),
			reason: domain.GameOver,
		},
		{
			name: "immediate ko recapture",
			setup: []step{
				b(1, 0), w(2, 0), b(0, 1), w(1, 1), b(1, 2), w(3, 1), b(8, 8), w(2, 2),
				b(2, 1), // takes the white stone at (1,1)
			},
			move:   w(1, 1),
			reason: domain.Ko,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := playAll(t, 9, tc.setup...)
			before := domain.MarshalGameState(s)

			_, _, reason := Play(s, domain.MoveMade{Player: tc.move.player, Coord: tc.move.coord})
			assert.Equal(t, tc.reason, reason)
			assert.Equal(t, before, domain.MarshalGameState(s), "state must not change")
		})
	}
}

func TestCaptureFreesLiberty(t *testing.T) {
	// white (0,0) has a single liberty left at (0,1)
	s := playAll(t, 9, b(1, 0), w(0, 0), b(1, 1), w(5, 5), b(0, 2), w(6, 6))

	next, made, reason := Play(s, domain.MoveMade{Player: domain.Black, Coord: domain.At(0, 1)})
	require.Empty(t, reason)
	assert.Equal(t, []domain.Coord{{X: 0, Y: 0}}, made.Captured)
	_, taken := next.Board.At(domain.Coord{X: 0, Y: 0})
	assert.False(t, taken)
}

func TestMultiStoneCapture(t *testing.T) {
	s := playAll(t, 9,
		step{domain.Black, domain.PassMove},
		w(0, 0), b(2, 0), w(1, 0), b(0, 1), step{domain.White, domain.PassMove},
	)
	next, made, reason := Play(s, domain.MoveMade{Player: domain.Black, Coord: domain.At(1, 1)})
	require.Empty(t, reason)
	assert.ElementsMatch(t, []domain.Coord{{X: 0, Y: 0}, {X: 1, Y: 0}}, made.Captured)
	assert.Equal(t, uint32(2), next.Captures.Black)
}

func TestKoCanBeRetakenAfterExchange(t *testing.T) {
	s := playAll(t, 9,
		b(1, 0), w(2, 0), b(0, 1), w(1, 1), b(1, 2), w(3, 1), b(8, 8), w(2, 2),
		b(2, 1),
		w(7, 7), // ko threat elsewhere
		b(6, 8),
	)
	_, made, reason := Play(s, domain.MoveMade{Player: domain.White, Coord: domain.At(1, 1)})
	require.Empty(t, reason)
	assert.Equal(t, []domain.Coord{{X: 2, Y: 1}}, made.Captured)
}

func TestTurnParityInvariant(t *testing.T) {
	s := playAll(t, 9, b(0, 0), w(1, 1), step{domain.Black, domain.PassMove}, w(2, 2), b(3, 3))

	assert.Equal(t, uint32(len(s.Moves)+1), s.Turn)
	if s.Turn%2 == 1 {
		assert.Equal(t, domain.Black, s.PlayerUp)
	} else {
		assert.Equal(t, domain.White, s.PlayerUp)
	}
}

func TestCapturesMatchRemovedStones(t *testing.T) {
	s := playAll(t, 9, b(0, 1), w(0, 0), b(1, 0), w(5, 5))

	removed := 0
	for _, m := range s.Moves {
		removed += len(m.Captured)
	}
	assert.Equal(t, uint32(removed), s.Captures.Black+s.Captures.White)
}

func TestReplayRebuildsState(t *testing.T) {
	s := playAll(t, 9, b(0, 1), w(0, 0), b(1, 0), w(4, 4))

	rebuilt, err := Replay(9, s.Moves[:3])
	require.NoError(t, err)
	assert.Equal(t, uint32(4), rebuilt.Turn)
	assert.Equal(t, domain.White, rebuilt.PlayerUp)
	assert.Len(t, rebuilt.Board.Pieces, 2)

	_, err = Replay(9, []domain.MoveMade{{Player: domain.White, Coord: domain.At(0, 0)}})
	assert.Error(t, err)
}

func TestPreviousBoard(t *testing.T) {
	_, ok := PreviousBoard(domain.NewGameState(9))
	assert.False(t, ok)

	s := playAll(t, 9, b(0, 1), w(0, 0), b(1, 0))
	prev, ok := PreviousBoard(s)
	require.True(t, ok)
	assert.Equal(t, map[domain.Coord]domain.Player{
		{X: 0, Y: 1}: domain.Black,
		{X: 0, Y: 0}: domain.White,
	}, prev.Pieces)
}
