package domain

// Commands and events exchanged over the bus. JSON field names are shared
// with the gateway's client protocol.

type MakeMoveCommand struct {
	GameID GameID    `json:"gameId"`
	ReqID  ReqID     `json:"reqId"`
	Player Player    `json:"player"`
	Coord  MoveCoord `json:"coord"`
}

// MoveMade is published by the judge on move-accepted-ev and by the
// changelog on move-made-ev once the move is materialized.
type MoveMade struct {
	GameID   GameID    `json:"gameId"`
	ReplyTo  ReqID     `json:"replyTo"`
	Player   Player    `json:"player"`
	Coord    MoveCoord `json:"coord"`
	Captured []Coord   `json:"captured"`
	EventID  EventID   `json:"eventId"`
}

type RejectReason string

const (
	NotYourTurn RejectReason = "NotYourTurn"
	Occupied    RejectReason = "Occupied"
	Suicide     RejectReason = "Suicide"
	Ko          RejectReason = "Ko"
	OutOfBounds RejectReason = "OutOfBounds"
	GameOver    RejectReason = "GameOver"
)

type MoveRejected struct {
	GameID  GameID       `json:"gameId"`
	ReplyTo ReqID        `json:"replyTo"`
	Player  Player       `json:"player"`
	Coord   MoveCoord    `json:"coord"`
	Reason  RejectReason `json:"reason"`
	EventID EventID      `json:"eventId"`
}

type FindPublicGame struct {
	ClientID ClientID `json:"clientId"`
}

// CreateGame carries no game id: the lobby allocates it.
type CreateGame struct {
	ClientID   ClientID   `json:"clientId"`
	Visibility Visibility `json:"visibility"`
}

type JoinPrivateGame struct {
	GameID   GameID   `json:"gameId"`
	ClientID ClientID `json:"clientId"`
}

type GameReady struct {
	GameID    GameID      `json:"gameId"`
	EventID   EventID     `json:"eventId"`
	Players   [2]ClientID `json:"players"`
	BoardSize int         `json:"boardSize"`
}

type WaitForOpponent struct {
	GameID     GameID     `json:"gameId"`
	ClientID   ClientID   `json:"clientId"`
	EventID    EventID    `json:"eventId"`
	Visibility Visibility `json:"visibility"`
}

type PrivateGameRejected struct {
	GameID   GameID   `json:"gameId"`
	ClientID ClientID `json:"clientId"`
	EventID  EventID  `json:"eventId"`
}

type ChooseColorPref struct {
	ClientID  ClientID  `json:"clientId"`
	SessionID SessionID `json:"sessionId"`
	ColorPref ColorPref `json:"colorPref"`
}

type ColorsChosen struct {
	GameID  GameID   `json:"gameId"`
	Black   ClientID `json:"black"`
	White   ClientID `json:"white"`
	EventID EventID  `json:"eventId"`
}

type ClientHeartbeat struct {
	ClientID      ClientID      `json:"clientId"`
	HeartbeatType HeartbeatType `json:"heartbeatType"`
}

type AttachBot struct {
	GameID GameID `json:"gameId"`
	Player Player `json:"player"`
}

type BotAttached struct {
	GameID  GameID  `json:"gameId"`
	Player  Player  `json:"player"`
	EventID EventID `json:"eventId"`
}

type UndoMove struct {
	GameID GameID `json:"gameId"`
	Player Player `json:"player"`
	ReqID  ReqID  `json:"reqId"`
}

type MoveUndone struct {
	GameID     GameID   `json:"gameId"`
	ReplyTo    ReqID    `json:"replyTo"`
	UndoneMove MoveMade `json:"undoneMove"`
	EventID    EventID  `json:"eventId"`
}

type ProvideHistory struct {
	GameID GameID `json:"gameId"`
	ReqID  ReqID  `json:"reqId"`
}

type HistoryProvided struct {
	GameID      GameID     `json:"gameId"`
	ReplyTo     ReqID      `json:"replyTo"`
	EventID     EventID    `json:"eventId"`
	Moves       []MoveMade `json:"moves"`
	EpochMillis int64      `json:"epochMillis"`
}
