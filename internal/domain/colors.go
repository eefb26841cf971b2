package domain

// SessionColorPref is a color preference as recorded for a client. The
// record time decides which of two agreeing clients keeps the color.
type SessionColorPref struct {
	ClientID   ClientID  `json:"clientId"`
	SessionID  SessionID `json:"sessionId"`
	ColorPref  ColorPref `json:"colorPref"`
	RecordedAt int64     `json:"recordedAt"`
}

// WaitingGame is an entry of the lobby's waiting pool.
type WaitingGame struct {
	GameID   GameID   `json:"gameId"`
	ClientID ClientID `json:"clientId"`
}
