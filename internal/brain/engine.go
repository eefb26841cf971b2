package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"bugout/internal/domain"
)

// gtpColumns skips I, as GTP does.
const gtpColumns = "ABCDEFGHJKLMNOPQRSTUVWXYZ"

type selectMoveRequest struct {
	BoardSize int      `json:"board_size"`
	Moves     []string `json:"moves"`
}

type selectMoveResponse struct {
	BotMove string `json:"bot_move"`
}

// Engine asks an HTTP engine (a KataGo front end) to select a move. Moves
// travel in GTP notation, starting with black.
type Engine struct {
	url    string
	client *http.Client
	log    *zap.SugaredLogger
}

func NewEngine(url string, log *zap.SugaredLogger) *Engine {
	return &Engine{url: url, client: &http.Client{}, log: log}
}

func (e *Engine) GenMove(ctx context.Context, state domain.GameState, player domain.Player) (domain.MoveCoord, error) {
	moves := make([]string, 0, len(state.Moves))
	for _, m := range state.Moves {
		moves = append(moves, ToGTP(m.Coord, state.Board.Size))
	}
	body, err := json.Marshal(selectMoveRequest{BoardSize: state.Board.Size, Moves: moves})
	if err != nil {
		return domain.MoveCoord{}, fmt.Errorf("marshal engine request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return domain.MoveCoord{}, fmt.Errorf("create engine request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return domain.MoveCoord{}, fmt.Errorf("engine request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domain.MoveCoord{}, fmt.Errorf("engine answered %d", resp.StatusCode)
	}

	var out selectMoveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.MoveCoord{}, fmt.Errorf("decode engine response: %w", err)
	}
	coord, err := FromGTP(out.BotMove, state.Board.Size)
	if err != nil {
		return domain.MoveCoord{}, err
	}
	e.log.Debugw("engine move", "player", player.String(), "move", out.BotMove)
	return coord, nil
}

// ToGTP renders a move as a GTP vertex such as D4, or pass/resign. Rows
// count from the bottom of the board.
func ToGTP(m domain.MoveCoord, size int) string {
	switch m.Kind {
	case domain.Pass:
		return "pass"
	case domain.Resign:
		return "resign"
	}
	return string(gtpColumns[m.Point.X]) + strconv.Itoa(size-m.Point.Y)
}

func FromGTP(s string, size int) (domain.MoveCoord, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "PASS":
		return domain.PassMove, nil
	case "RESIGN":
		return domain.ResignMove, nil
	}
	if len(s) < 2 {
		return domain.MoveCoord{}, fmt.Errorf("bad vertex %q", s)
	}
	x := strings.IndexByte(gtpColumns, s[0])
	row, err := strconv.Atoi(s[1:])
	if x < 0 || err != nil {
		return domain.MoveCoord{}, fmt.Errorf("bad vertex %q", s)
	}
	c := domain.Coord{X: x, Y: size - row}
	if !c.InBounds(size) {
		return domain.MoveCoord{}, fmt.Errorf("vertex %q is off a %dx%d board", s, size, size)
	}
	return domain.At(c.X, c.Y), nil
}
