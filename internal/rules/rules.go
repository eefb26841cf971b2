// Package rules resolves moves against a GameState: liberties, captures,
// suicide, simple ko, passing and resignation. Positional superko is not
// enforced.
package rules

import (
	"fmt"
	"sort"

	"bugout/internal/domain"
)

// Play resolves m against s. On success it returns the following state and
// m with its captures filled in; otherwise the reason the move is illegal.
// s is never modified.
func Play(s domain.GameState, m domain.MoveMade) (domain.GameState, domain.MoveMade, domain.RejectReason) {
	if s.IsTerminal() {
		return s, m, domain.GameOver
	}
	if m.Player != s.PlayerUp {
		return s, m, domain.NotYourTurn
	}
	m.Captured = nil

	if m.Coord.Kind != domain.Place {
		next := s.Clone()
		advance(&next, m)
		return next, m, ""
	}

	at := m.Coord.Point
	if !at.InBounds(s.Board.Size) {
		return s, m, domain.OutOfBounds
	}
	if _, taken := s.Board.At(at); taken {
		return s, m, domain.Occupied
	}

	board := s.Board.Clone()
	board.Pieces[at] = m.Player

	for _, n := range at.Neighbors(board.Size) {
		if p, ok := board.At(n); !ok || p != m.Player.Other() {
			continue
		}
		group, libs := Group(board, n)
		if libs > 0 {
			continue
		}
		for _, c := range group {
			delete(board.Pieces, c)
			m.Captured = append(m.Captured, c)
		}
	}

	if _, libs := Group(board, at); libs == 0 {
		return s, m, domain.Suicide
	}

	if len(m.Captured) == 1 {
		if prev, ok := PreviousBoard(s); ok && prev.Equal(board) {
			return s, m, domain.Ko
		}
	}

	sortCoords(m.Captured)
	next := s.Clone()
	next.Board = board
	next.Captures.Add(m.Player, len(m.Captured))
	advance(&next, m)
	return next, m, ""
}

func advance(s *domain.GameState, m domain.MoveMade) {
	s.Moves = append(s.Moves, m)
	s.PlayerUp = s.PlayerUp.Other()
	s.Turn++
}

// Group flood-fills the group containing c and counts its liberties.
func Group(board domain.Board, c domain.Coord) ([]domain.Coord, int) {
	color, ok := board.At(c)
	if !ok {
		return nil, 0
	}
	visited := map[domain.Coord]bool{c: true}
	liberties := map[domain.Coord]bool{}
	stack := []domain.Coord{c}
	var group []domain.Coord
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		group = append(group, cur)
		for _, n := range cur.Neighbors(board.Size) {
			p, occupied := board.At(n)
			switch {
			case !occupied:
				liberties[n] = true
			case p == color && !visited[n]:
				visited[n] = true
				stack = append(stack, n)
			}
		}
	}
	return group, len(liberties)
}

// PreviousBoard reconstructs the board as it stood before the last move of
// s, which is the position a single-stone recapture must not repeat.
func PreviousBoard(s domain.GameState) (domain.Board, bool) {
	last, ok := s.LastMove()
	if !ok {
		return domain.Board{}, false
	}
	prev := s.Board.Clone()
	if last.Coord.Kind != domain.Place {
		return prev, true
	}
	delete(prev.Pieces, last.Coord.Point)
	for _, c := range last.Captured {
		prev.Pieces[c] = last.Player.Other()
	}
	return prev, true
}

// Legal reports whether player may play coord in s.
func Legal(s domain.GameState, player domain.Player, coord domain.MoveCoord) bool {
	_, _, reason := Play(s, domain.MoveMade{Player: player, Coord: coord})
	return reason == ""
}

// Replay rebuilds a state by playing moves in order from an empty board.
func Replay(boardSize int, moves []domain.MoveMade) (domain.GameState, error) {
	s := domain.NewGameState(boardSize)
	for i, m := range moves {
		next, _, reason := Play(s, m)
		if reason != "" {
			return domain.GameState{}, fmt.Errorf("replay move %d (%s %s): %s", i+1, m.Player, m.Coord, reason)
		}
		s = next
	}
	return s, nil
}

func sortCoords(cs []domain.Coord) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Y != cs[j].Y {
			return cs[i].Y < cs[j].Y
		}
		return cs[i].X < cs[j].X
	})
}
