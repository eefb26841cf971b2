package domain

type GameState struct {
	Board    Board
	Moves    []MoveMade
	Turn     uint32
	PlayerUp Player
	Captures Captures
}

func NewGameState(boardSize int) GameState {
	if boardSize <= 0 {
		boardSize = DefaultBoardSize
	}
	return GameState{
		Board:    NewBoard(boardSize),
		Turn:     1,
		PlayerUp: Black,
	}
}

func (s GameState) LastMove() (MoveMade, bool) {
	if len(s.Moves) == 0 {
		return MoveMade{}, false
	}
	return s.Moves[len(s.Moves)-1], true
}

// IsTerminal is true after a resignation or two passes in a row.
func (s GameState) IsTerminal() bool {
	n := len(s.Moves)
	if n == 0 {
		return false
	}
	if s.Moves[n-1].Coord.Kind == Resign {
		return true
	}
	return n >= 2 && s.Moves[n-1].Coord.Kind == Pass && s.Moves[n-2].Coord.Kind == Pass
}

// MoveIndex returns the position of the move carrying eventID, or -1.
func (s GameState) MoveIndex(eventID EventID) int {
	for i := len(s.Moves) - 1; i >= 0; i-- {
		if s.Moves[i].EventID == eventID {
			return i
		}
	}
	return -1
}

func (s GameState) Clone() GameState {
	c := s
	c.Board = s.Board.Clone()
	c.Moves = append([]MoveMade(nil), s.Moves...)
	return c
}
