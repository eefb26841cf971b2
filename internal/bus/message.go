package bus

import (
	"fmt"

	"bugout/internal/domain"
	errs "bugout/internal/errors"
	"bugout/internal/utils"
)

// Field names used inside stream entries.
const (
	FieldKey    = "key"
	FieldData   = "data"
	FieldGameID = "game_id"
)

type Message struct {
	Topic  string
	ID     EntryID
	Values map[string]interface{}
}

func (m Message) Field(name string) (string, bool) {
	v, ok := m.Values[name]
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	}
	return fmt.Sprint(v), true
}

// Key is the partition key the entry was published with.
func (m Message) Key() string {
	k, _ := m.Field(FieldKey)
	return k
}

func (m Message) Data() ([]byte, error) {
	s, ok := m.Field(FieldData)
	if !ok {
		return nil, fmt.Errorf("%w: %s %s has no %q field", errs.ErrMalformedPayload, m.Topic, m.ID, FieldData)
	}
	return []byte(s), nil
}

func (m Message) DecodeJSON(dst interface{}) error {
	data, err := m.Data()
	if err != nil {
		return err
	}
	if err := utils.DecodeJSON(data, dst); err != nil {
		return fmt.Errorf("%s %s: %w", m.Topic, m.ID, err)
	}
	return nil
}

// GameState decodes a changelog entry.
func (m Message) GameState() (domain.GameID, domain.GameState, error) {
	raw, ok := m.Field(FieldGameID)
	if !ok {
		return domain.GameID{}, domain.GameState{}, fmt.Errorf("%w: %s %s has no %q field", errs.ErrMalformedPayload, m.Topic, m.ID, FieldGameID)
	}
	gameID, err := domain.ParseGameID(raw)
	if err != nil {
		return domain.GameID{}, domain.GameState{}, fmt.Errorf("%w: %w", errs.ErrMalformedPayload, err)
	}
	data, err := m.Data()
	if err != nil {
		return domain.GameID{}, domain.GameState{}, err
	}
	state, err := domain.UnmarshalGameState(data)
	if err != nil {
		return domain.GameID{}, domain.GameState{}, fmt.Errorf("%w: %w", errs.ErrMalformedPayload, err)
	}
	return gameID, state, nil
}
