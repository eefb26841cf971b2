package colorchooser

import (
	"encoding/binary"
	"math/rand"

	"bugout/internal/domain"
)

// Progress is how far color negotiation for a game has come.
type Progress int

const (
	NotReady Progress = iota
	Partial
	Complete
)

func (p Progress) String() string {
	switch p {
	case Partial:
		return "Partial"
	case Complete:
		return "Complete"
	}
	return "NotReady"
}

func progressOf(known int) Progress {
	switch known {
	case 0:
		return NotReady
	case 1:
		return Partial
	}
	return Complete
}

// Choose assigns colors from two preferences. When both ask for the same
// color the earlier recorded preference keeps it. A player who accepts
// either color yields to the other. When neither cares the result is
// random but fixed for the game.
func Choose(game domain.GameID, a, b domain.SessionColorPref) (black, white domain.ClientID) {
	switch {
	case a.ColorPref == domain.PrefAny && b.ColorPref == domain.PrefAny:
		rng := rand.New(rand.NewSource(int64(binary.BigEndian.Uint64(game.UUID[:8]))))
		if rng.Intn(2) == 0 {
			return a.ClientID, b.ClientID
		}
		return b.ClientID, a.ClientID
	case a.ColorPref == b.ColorPref:
		if b.RecordedAt < a.RecordedAt {
			a, b = b, a
		}
	case a.ColorPref == domain.PrefAny:
		a, b = b, a
	}
	if a.ColorPref == domain.PrefBlack {
		return a.ClientID, b.ClientID
	}
	return b.ClientID, a.ClientID
}
