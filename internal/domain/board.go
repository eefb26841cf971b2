package domain

import "sort"

const DefaultBoardSize = 19

// Board holds only the occupied points, so it grows with the number of
// stones rather than with the board area.
type Board struct {
	Size   int
	Pieces map[Coord]Player
}

func NewBoard(size int) Board {
	return Board{Size: size, Pieces: map[Coord]Player{}}
}

func (b Board) At(c Coord) (Player, bool) {
	p, ok := b.Pieces[c]
	return p, ok
}

func (b Board) Clone() Board {
	pieces := make(map[Coord]Player, len(b.Pieces))
	for c, p := range b.Pieces {
		pieces[c] = p
	}
	return Board{Size: b.Size, Pieces: pieces}
}

func (b Board) Equal(o Board) bool {
	if b.Size != o.Size || len(b.Pieces) != len(o.Pieces) {
		return false
	}
	for c, p := range b.Pieces {
		if q, ok := o.Pieces[c]; !ok || q != p {
			return false
		}
	}
	return true
}

// Coords returns the occupied points ordered by row, then column.
func (b Board) Coords() []Coord {
	out := make([]Coord, 0, len(b.Pieces))
	for c := range b.Pieces {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}
