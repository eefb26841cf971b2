package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Coord) InBounds(size int) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < size && c.Y < size
}

func (c Coord) Neighbors(size int) []Coord {
	out := make([]Coord, 0, 4)
	for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		n := Coord{X: c.X + d[0], Y: c.Y + d[1]}
		if n.InBounds(size) {
			out = append(out, n)
		}
	}
	return out
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

type MoveKind int

const (
	Place MoveKind = iota
	Pass
	Resign
)

// MoveCoord is the target of a move: a board point, PASS or RESIGN.
// On the wire it is either {"x":..,"y":..} or one of the two strings.
type MoveCoord struct {
	Kind  MoveKind
	Point Coord
}

var (
	PassMove   = MoveCoord{Kind: Pass}
	ResignMove = MoveCoord{Kind: Resign}
)

func At(x, y int) MoveCoord {
	return MoveCoord{Kind: Place, Point: Coord{X: x, Y: y}}
}

func (m MoveCoord) String() string {
	switch m.Kind {
	case Pass:
		return "PASS"
	case Resign:
		return "RESIGN"
	}
	return m.Point.String()
}

func (m MoveCoord) MarshalJSON() ([]byte, error) {
	switch m.Kind {
	case Pass:
		return []byte(`"PASS"`), nil
	case Resign:
		return []byte(`"RESIGN"`), nil
	}
	return json.Marshal(m.Point)
}

func (m *MoveCoord) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		switch s {
		case "PASS":
			*m = PassMove
		case "RESIGN":
			*m = ResignMove
		default:
			return fmt.Errorf("unknown move coord %q", s)
		}
		return nil
	}
	var p struct {
		X *int `json:"x"`
		Y *int `json:"y"`
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	if p.X == nil || p.Y == nil {
		return fmt.Errorf("move coord needs both x and y: %s", b)
	}
	*m = At(*p.X, *p.Y)
	return nil
}
