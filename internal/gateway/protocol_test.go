package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bugout/internal/domain"
	errs "bugout/internal/errors"
)

func TestDecodeClientMessage(t *testing.T) {
	gid := domain.NewGameID()

	msg, err := DecodeClientMessage([]byte(`{"type":"MakeMove","gameId":"` + gid.String() + `","reqId":"` + domain.NewReqID().String() + `","coord":{"x":3,"y":4}}`))
	require.NoError(t, err)
	move := msg.Payload.(*makeMoveMsg)
	assert.Equal(t, gid, move.GameID)
	assert.Equal(t, domain.At(3, 4), move.Coord)
	assert.Nil(t, move.Player)

	msg, err = DecodeClientMessage([]byte(`{"type":"MakeMove","gameId":"` + gid.String() + `","reqId":"` + domain.NewReqID().String() + `","coord":"PASS","player":"WHITE"}`))
	require.NoError(t, err)
	move = msg.Payload.(*makeMoveMsg)
	assert.Equal(t, domain.PassMove, move.Coord)
	require.NotNil(t, move.Player)
	assert.Equal(t, domain.White, *move.Player)

	msg, err = DecodeClientMessage([]byte(`{"type":"FindPublicGame"}`))
	require.NoError(t, err)
	assert.Equal(t, TypeFindPublicGame, msg.Type)
	assert.Nil(t, msg.Payload)

	msg, err = DecodeClientMessage([]byte(`{"type":"CreateGame","visibility":"Private"}`))
	require.NoError(t, err)
	assert.Equal(t, domain.Private, msg.Payload.(*createGameMsg).Visibility)

	msg, err = DecodeClientMessage([]byte(`{"type":"ChooseColorPref","colorPref":"Any"}`))
	require.NoError(t, err)
	assert.Equal(t, domain.PrefAny, msg.Payload.(*colorPrefMsg).ColorPref)
}

func TestDecodeClientMessageRejects(t *testing.T) {
	for name, raw := range map[string]string{
		"empty":        ``,
		"not json":     `{"type":`,
		"unknown type": `{"type":"Teleport"}`,
		"bad coord":    `{"type":"MakeMove","gameId":"` + domain.NewGameID().String() + `","coord":"SIDEWAYS"}`,
		"bad game id":  `{"type":"JoinPrivateGame","gameId":"nope"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeClientMessage([]byte(raw))
			assert.ErrorIs(t, err, errs.ErrMalformedPayload)
		})
	}
}

func TestEncodeEvent(t *testing.T) {
	gid, _ := domain.ParseGameID("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	raw, err := EncodeEvent(EventBotAttached, domain.BotAttached{GameID: gid, Player: domain.White, EventID: domain.EventID{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"BotAttached","gameId":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","player":"WHITE","eventId":"00000000-0000-0000-0000-000000000000"}`, string(raw))

	raw, err = EncodeEvent(EventIdleStatusResponse, IdleStatus{State: Online})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"IdleStatusResponse","status":"Online"}`, string(raw))

	raw, err = EncodeEvent(EventHello, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Hello"}`, string(raw))

	_, err = EncodeEvent(EventMoveMade, []int{1})
	assert.ErrorIs(t, err, errs.ErrMalformedPayload)
}
