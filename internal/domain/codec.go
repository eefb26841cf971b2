package domain

import (
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

// Binary layout of a GameState, protobuf wire format:
//
//	GameState { 1: Board, 2: repeated MoveMade, 3: turn, 4: player_up, 5: Captures }
//	Board     { 1: size, 2: repeated Stone }
//	Stone     { 1: x, 2: y, 3: player }
//	MoveMade  { 1: game_id, 2: reply_to, 3: player, 4: MoveCoord, 5: repeated Coord, 6: event_id }
//	MoveCoord { 1: kind, 2: x, 3: y }
//	Coord     { 1: x, 2: y }
//	Captures  { 1: black, 2: white }
//
// Ids are 16 raw big-endian bytes. Stones are written in row order so the
// encoding of a state is unique.

func MarshalGameState(s GameState) []byte {
	var b []byte
	b = appendMessage(b, 1, marshalBoard(s.Board))
	for _, m := range s.Moves {
		b = appendMessage(b, 2, marshalMoveMade(m))
	}
	b = appendVarint(b, 3, uint64(s.Turn))
	b = appendVarint(b, 4, uint64(s.PlayerUp))
	var c []byte
	c = appendVarint(c, 1, uint64(s.Captures.Black))
	c = appendVarint(c, 2, uint64(s.Captures.White))
	return appendMessage(b, 5, c)
}

func UnmarshalGameState(data []byte) (GameState, error) {
	s := GameState{Board: NewBoard(0)}
	err := walk(data, func(num protowire.Number, v uint64, raw []byte) error {
		switch num {
		case 1:
			board, err := unmarshalBoard(raw)
			if err != nil {
				return err
			}
			s.Board = board
		case 2:
			m, err := unmarshalMoveMade(raw)
			if err != nil {
				return err
			}
			s.Moves = append(s.Moves, m)
		case 3:
			s.Turn = uint32(v)
		case 4:
			s.PlayerUp = Player(v)
		case 5:
			return walk(raw, func(num protowire.Number, v uint64, _ []byte) error {
				switch num {
				case 1:
					s.Captures.Black = uint32(v)
				case 2:
					s.Captures.White = uint32(v)
				}
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return GameState{}, fmt.Errorf("decode game state: %w", err)
	}
	if !s.PlayerUp.Valid() {
		return GameState{}, fmt.Errorf("decode game state: invalid player up %d", s.PlayerUp)
	}
	return s, nil
}

func marshalBoard(board Board) []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(board.Size))
	for _, c := range board.Coords() {
		var stone []byte
		stone = appendVarint(stone, 1, uint64(c.X))
		stone = appendVarint(stone, 2, uint64(c.Y))
		stone = appendVarint(stone, 3, uint64(board.Pieces[c]))
		b = appendMessage(b, 2, stone)
	}
	return b
}

func unmarshalBoard(data []byte) (Board, error) {
	board := NewBoard(0)
	err := walk(data, func(num protowire.Number, v uint64, raw []byte) error {
		switch num {
		case 1:
			board.Size = int(v)
		case 2:
			var c Coord
			var p Player
			err := walk(raw, func(num protowire.Number, v uint64, _ []byte) error {
				switch num {
				case 1:
					c.X = int(v)
				case 2:
					c.Y = int(v)
				case 3:
					p = Player(v)
				}
				return nil
			})
			if err != nil {
				return err
			}
			if !p.Valid() {
				return fmt.Errorf("stone at %s has invalid player %d", c, p)
			}
			board.Pieces[c] = p
		}
		return nil
	})
	return board, err
}

func marshalMoveMade(m MoveMade) []byte {
	var b []byte
	b = appendID(b, 1, m.GameID.UUID)
	b = appendID(b, 2, m.ReplyTo.UUID)
	b = appendVarint(b, 3, uint64(m.Player))
	var mc []byte
	mc = appendVarint(mc, 1, uint64(m.Coord.Kind))
	mc = appendVarint(mc, 2, uint64(m.Coord.Point.X))
	mc = appendVarint(mc, 3, uint64(m.Coord.Point.Y))
	b = appendMessage(b, 4, mc)
	for _, c := range m.Captured {
		b = appendMessage(b, 5, marshalCoord(c))
	}
	return appendID(b, 6, m.EventID.UUID)
}

func unmarshalMoveMade(data []byte) (MoveMade, error) {
	var m MoveMade
	err := walk(data, func(num protowire.Number, v uint64, raw []byte) error {
		switch num {
		case 1:
			return readID(raw, &m.GameID.UUID)
		case 2:
			return readID(raw, &m.ReplyTo.UUID)
		case 3:
			m.Player = Player(v)
		case 4:
			return walk(raw, func(num protowire.Number, v uint64, _ []byte) error {
				switch num {
				case 1:
					m.Coord.Kind = MoveKind(v)
				case 2:
					m.Coord.Point.X = int(v)
				case 3:
					m.Coord.Point.Y = int(v)
				}
				return nil
			})
		case 5:
			c, err := unmarshalCoord(raw)
			if err != nil {
				return err
			}
			m.Captured = append(m.Captured, c)
		case 6:
			return readID(raw, &m.EventID.UUID)
		}
		return nil
	})
	return m, err
}

func marshalCoord(c Coord) []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(c.X))
	return appendVarint(b, 2, uint64(c.Y))
}

func unmarshalCoord(data []byte) (Coord, error) {
	var c Coord
	err := walk(data, func(num protowire.Number, v uint64, _ []byte) error {
		switch num {
		case 1:
			c.X = int(v)
		case 2:
			c.Y = int(v)
		}
		return nil
	})
	return c, err
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendID(b []byte, num protowire.Number, id uuid.UUID) []byte {
	return appendMessage(b, num, id[:])
}

func readID(raw []byte, dst *uuid.UUID) error {
	if len(raw) != 16 {
		return fmt.Errorf("id must be 16 bytes, got %d", len(raw))
	}
	copy(dst[:], raw)
	return nil
}

// walk visits every field of a message. Varint fields arrive in v,
// length-delimited ones in raw; unknown wire types are skipped.
func walk(data []byte, visit func(num protowire.Number, v uint64, raw []byte) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
			if err := visit(num, v, nil); err != nil {
				return err
			}
		case protowire.BytesType:
			raw, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
			if err := visit(num, 0, raw); err != nil {
				return err
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return nil
}
