// Package brain produces moves for bot-controlled players, either over gRPC
// from a remote engine or with a local heuristic.
package brain

import (
	"context"
	"sort"

	"bugout/internal/domain"
	"bugout/internal/rules"
)

type MoveGenerator interface {
	GenMove(ctx context.Context, state domain.GameState, player domain.Player) (domain.MoveCoord, error)
}

// Fallback plays the legal point closest to the center that does not fill
// one of its own single-point eyes, and passes when none is left.
type Fallback struct{}

func (Fallback) GenMove(ctx context.Context, state domain.GameState, player domain.Player) (domain.MoveCoord, error) {
	if err := ctx.Err(); err != nil {
		return domain.MoveCoord{}, err
	}
	for _, c := range candidates(state.Board.Size) {
		if _, taken := state.Board.At(c); taken {
			continue
		}
		if ownEye(state.Board, c, player) {
			continue
		}
		if rules.Legal(state, player, domain.At(c.X, c.Y)) {
			return domain.At(c.X, c.Y), nil
		}
	}
	return domain.PassMove, nil
}

func ownEye(board domain.Board, c domain.Coord, player domain.Player) bool {
	for _, n := range c.Neighbors(board.Size) {
		if p, ok := board.At(n); !ok || p != player {
			return false
		}
	}
	return true
}

// candidates lists every point ordered by distance from the center, then
// by row and column.
func candidates(size int) []domain.Coord {
	out := make([]domain.Coord, 0, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			out = append(out, domain.Coord{X: x, Y: y})
		}
	}
	mid := size - 1
	dist := func(c domain.Coord) int {
		dx, dy := 2*c.X-mid, 2*c.Y-mid
		return dx*dx + dy*dy
	}
	sort.SliceStable(out, func(i, j int) bool {
		return dist(out[i]) < dist(out[j])
	})
	return out
}
