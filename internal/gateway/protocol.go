package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"

	"bugout/internal/domain"
	errs "bugout/internal/errors"
	"bugout/internal/utils"
)

// Client message types.
const (
	TypeMakeMove          = "MakeMove"
	TypeJoinPrivateGame   = "JoinPrivateGame"
	TypeFindPublicGame    = "FindPublicGame"
	TypeCreateGame        = "CreateGame"
	TypeChooseColorPref   = "ChooseColorPref"
	TypeHeartbeat         = "Heartbeat"
	TypeRequestIdleStatus = "RequestIdleStatus"
	TypeProvideHistory    = "ProvideHistory"
	TypeAttachBot         = "AttachBot"
	TypeUndoMove          = "UndoMove"
)

// Server event types.
const (
	EventHello               = "Hello"
	EventMoveMade            = "MoveMade"
	EventMoveRejected        = "MoveRejected"
	EventGameReady           = "GameReady"
	EventWaitForOpponent     = "WaitForOpponent"
	EventPrivateGameRejected = "PrivateGameRejected"
	EventColorsChosen        = "ColorsChosen"
	EventBotAttached         = "BotAttached"
	EventMoveUndone          = "MoveUndone"
	EventHistoryProvided     = "HistoryProvided"
	EventIdleStatusResponse  = "IdleStatusResponse"
)

type makeMoveMsg struct {
	GameID domain.GameID    `json:"gameId"`
	ReqID  domain.ReqID     `json:"reqId"`
	Coord  domain.MoveCoord `json:"coord"`
	Player *domain.Player   `json:"player,omitempty"`
}

type gameMsg struct {
	GameID domain.GameID `json:"gameId"`
}

type createGameMsg struct {
	Visibility domain.Visibility `json:"visibility"`
}

type colorPrefMsg struct {
	ColorPref domain.ColorPref `json:"colorPref"`
}

type heartbeatMsg struct {
	HeartbeatType domain.HeartbeatType `json:"heartbeatType"`
}

type provideHistoryMsg struct {
	GameID domain.GameID `json:"gameId"`
	ReqID  domain.ReqID  `json:"reqId"`
}

type attachBotMsg struct {
	GameID domain.GameID `json:"gameId"`
	Player domain.Player `json:"player"`
}

type undoMoveMsg struct {
	GameID domain.GameID  `json:"gameId"`
	Player *domain.Player `json:"player,omitempty"`
	ReqID  domain.ReqID   `json:"reqId"`
}

// ClientMessage is a decoded client message: its type and the matching
// *Msg payload.
type ClientMessage struct {
	Type    string
	Payload interface{}
}

func DecodeClientMessage(raw []byte) (ClientMessage, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := utils.DecodeJSON(raw, &head); err != nil {
		return ClientMessage{}, err
	}
	var payload interface{}
	switch head.Type {
	case TypeMakeMove:
		payload = &makeMoveMsg{}
	case TypeJoinPrivateGame:
		payload = &gameMsg{}
	case TypeFindPublicGame, TypeRequestIdleStatus:
		return ClientMessage{Type: head.Type}, nil
	case TypeCreateGame:
		payload = &createGameMsg{}
	case TypeChooseColorPref:
		payload = &colorPrefMsg{}
	case TypeHeartbeat:
		payload = &heartbeatMsg{}
	case TypeProvideHistory:
		payload = &provideHistoryMsg{}
	case TypeAttachBot:
		payload = &attachBotMsg{}
	case TypeUndoMove:
		payload = &undoMoveMsg{}
	default:
		return ClientMessage{}, fmt.Errorf("%w: unknown message type %q", errs.ErrMalformedPayload, head.Type)
	}
	if err := utils.DecodeJSON(raw, payload); err != nil {
		return ClientMessage{}, err
	}
	return ClientMessage{Type: head.Type, Payload: payload}, nil
}

// EncodeEvent renders payload as a JSON object with a leading type field.
func EncodeEvent(typ string, payload interface{}) ([]byte, error) {
	head, err := json.Marshal(struct {
		Type string `json:"type"`
	}{typ})
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return head, nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errs.ErrMalformedPayload, typ, err)
	}
	body = bytes.TrimSpace(body)
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("%w: %s payload is not an object", errs.ErrMalformedPayload, typ)
	}
	if string(body) == "{}" {
		return head, nil
	}
	out := make([]byte, 0, len(head)+len(body))
	out = append(out, head[:len(head)-1]...)
	out = append(out, ',')
	out = append(out, body[1:]...)
	return out, nil
}

type helloEvent struct {
	ClientID  domain.ClientID  `json:"clientId"`
	SessionID domain.SessionID `json:"sessionId"`
}
