package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() GameState {
	gameID := NewGameID()
	s := NewGameState(9)
	s.Board.Pieces[Coord{X: 0, Y: 1}] = Black
	s.Board.Pieces[Coord{X: 1, Y: 0}] = Black
	s.Moves = []MoveMade{
		{GameID: gameID, ReplyTo: NewReqID(), Player: Black, Coord: At(0, 1), EventID: NewEventID()},
		{GameID: gameID, ReplyTo: NewReqID(), Player: White, Coord: At(0, 0), EventID: NewEventID()},
		{GameID: gameID, ReplyTo: NewReqID(), Player: Black, Coord: At(1, 0), Captured: []Coord{{X: 0, Y: 0}}, EventID: NewEventID()},
		{GameID: gameID, ReplyTo: NewReqID(), Player: White, Coord: PassMove, EventID: NewEventID()},
	}
	s.Turn = 5
	s.PlayerUp = Black
	s.Captures = Captures{Black: 1}
	return s
}

func TestGameStateBinaryRoundTrip(t *testing.T) {
	for name, s := range map[string]GameState{
		"fresh":   NewGameState(19),
		"capture": sampleState(),
	} {
		t.Run(name, func(t *testing.T) {
			got, err := UnmarshalGameState(MarshalGameState(s))
			require.NoError(t, err)
			require.Equal(t, s, got)
		})
	}
}

func TestGameStateEncodingIsCanonical(t *testing.T) {
	a := NewGameState(19)
	b := NewGameState(19)
	for _, c := range []Coord{{3, 3}, {15, 15}, {3, 15}, {15, 3}} {
		a.Board.Pieces[c] = Black
	}
	for _, c := range []Coord{{15, 3}, {3, 15}, {15, 15}, {3, 3}} {
		b.Board.Pieces[c] = Black
	}
	assert.Equal(t, MarshalGameState(a), MarshalGameState(b))
}

func TestUnmarshalGameStateRejectsGarbage(t *testing.T) {
	_, err := UnmarshalGameState([]byte{0xff, 0xff, 0xff})
	require.Error(t, err)

	_, err = UnmarshalGameState(nil)
	require.Error(t, err, "an empty buffer has no player up")
}

func TestMoveCoordJSON(t *testing.T) {
	cases := map[string]MoveCoord{
		`{"x":3,"y":4}`: At(3, 4),
		`"PASS"`:        PassMove,
		`"RESIGN"`:      ResignMove,
	}
	for raw, want := range cases {
		var got MoveCoord
		require.NoError(t, json.Unmarshal([]byte(raw), &got))
		assert.Equal(t, want, got)

		out, err := json.Marshal(want)
		require.NoError(t, err)
		assert.JSONEq(t, raw, string(out))
	}

	var bad MoveCoord
	assert.Error(t, json.Unmarshal([]byte(`"SKIP"`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &bad))
}

func TestMakeMoveCommandJSON(t *testing.T) {
	cmd := MakeMoveCommand{GameID: NewGameID(), ReqID: NewReqID(), Player: White, Coord: At(2, 2)}
	raw, err := json.Marshal(cmd)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"player":"WHITE"`)
	assert.Contains(t, string(raw), `"gameId":"`+cmd.GameID.String()+`"`)

	var back MakeMoveCommand
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, cmd, back)
}

func TestIsTerminal(t *testing.T) {
	s := NewGameState(9)
	assert.False(t, s.IsTerminal())

	s.Moves = append(s.Moves, MoveMade{Player: Black, Coord: PassMove})
	assert.False(t, s.IsTerminal())

	s.Moves = append(s.Moves, MoveMade{Player: White, Coord: PassMove})
	assert.True(t, s.IsTerminal())

	r := NewGameState(9)
	r.Moves = append(r.Moves, MoveMade{Player: Black, Coord: ResignMove})
	assert.True(t, r.IsTerminal())
}

func TestNeighborsAtEdge(t *testing.T) {
	assert.ElementsMatch(t, []Coord{{1, 0}, {0, 1}}, Coord{0, 0}.Neighbors(19))
	assert.Len(t, Coord{5, 5}.Neighbors(19), 4)
}
