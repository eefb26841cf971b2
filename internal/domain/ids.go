package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Identifiers wrap a UUID so that a GameID can never be passed where a
// ClientID is expected. They marshal as canonical 36-char strings.
type (
	ClientID  struct{ uuid.UUID }
	SessionID struct{ uuid.UUID }
	GameID    struct{ uuid.UUID }
	ReqID     struct{ uuid.UUID }
	EventID   struct{ uuid.UUID }
)

func NewClientID() ClientID   { return ClientID{uuid.New()} }
func NewSessionID() SessionID { return SessionID{uuid.New()} }
func NewGameID() GameID       { return GameID{uuid.New()} }
func NewReqID() ReqID         { return ReqID{uuid.New()} }
func NewEventID() EventID     { return EventID{uuid.New()} }

func ParseClientID(s string) (ClientID, error) {
	u, err := parseUUID(s)
	return ClientID{u}, err
}

func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s)
	return SessionID{u}, err
}

func ParseGameID(s string) (GameID, error) {
	u, err := parseUUID(s)
	return GameID{u}, err
}

func parseUUID(s string) (uuid.UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse id %q: %w", s, err)
	}
	return u, nil
}
