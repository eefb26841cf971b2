package domain

import "fmt"

type Player int

const (
	Black Player = iota + 1
	White
)

func (p Player) Other() Player {
	if p == Black {
		return White
	}
	return Black
}

func (p Player) Valid() bool {
	return p == Black || p == White
}

func (p Player) String() string {
	switch p {
	case Black:
		return "BLACK"
	case White:
		return "WHITE"
	}
	return fmt.Sprintf("Player(%d)", int(p))
}

func (p Player) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid player %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *Player) UnmarshalText(b []byte) error {
	switch string(b) {
	case "BLACK":
		*p = Black
	case "WHITE":
		*p = White
	default:
		return fmt.Errorf("unknown player %q", b)
	}
	return nil
}

type Visibility string

const (
	Public  Visibility = "Public"
	Private Visibility = "Private"
)

func (v Visibility) Valid() bool {
	return v == Public || v == Private
}

type ColorPref string

const (
	PrefBlack ColorPref = "Black"
	PrefWhite ColorPref = "White"
	PrefAny   ColorPref = "Any"
)

func (c ColorPref) Valid() bool {
	return c == PrefBlack || c == PrefWhite || c == PrefAny
}

type HeartbeatType string

const (
	WebSocketPong     HeartbeatType = "WebSocketPong"
	UserInterfaceBeep HeartbeatType = "UserInterfaceBeep"
)

// Captures counts the stones each player has taken.
type Captures struct {
	Black uint32 `json:"black"`
	White uint32 `json:"white"`
}

func (c *Captures) Add(p Player, n int) {
	if p == Black {
		c.Black += uint32(n)
	} else {
		c.White += uint32(n)
	}
}

// Botness records which sides of a game are played by a bot.
type Botness struct {
	BlackIsBot bool `json:"blackIsBot"`
	WhiteIsBot bool `json:"whiteIsBot"`
}

func (b Botness) IsBot(p Player) bool {
	if p == Black {
		return b.BlackIsBot
	}
	return b.WhiteIsBot
}
