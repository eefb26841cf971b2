package repo

import (
	"fmt"
	"time"

	"bugout/internal/domain"
	errs "bugout/internal/errors"
)

// Expiry is the inactivity TTL of every game-scoped key.
const Expiry = 24 * time.Hour

// Keys builds "{namespace}:{entity}:{id}" keys.
type Keys struct {
	ns string
}

func NewKeys(namespace string) Keys {
	return Keys{ns: namespace}
}

func (k Keys) GameState(id domain.GameID) string {
	return k.ns + ":game-states:" + id.String()
}

func (k Keys) BotAttached(id domain.GameID) string {
	return k.ns + ":bot-attached:" + id.String()
}

func (k Keys) Session(id domain.SessionID) string {
	return k.ns + ":session:" + id.String()
}

func (k Keys) EntryIDs(group string) string {
	return k.ns + ":entry-ids:" + group
}

func (k Keys) WaitingPublic() string {
	return k.ns + ":waiting-public"
}

func (k Keys) WaitingPrivate(id domain.GameID) string {
	return k.ns + ":waiting-private:" + id.String()
}

func (k Keys) UndoHistory(id domain.GameID) string {
	return k.ns + ":undo-history:" + id.String()
}

func (k Keys) ClientPref(id domain.ClientID) string {
	return k.ns + ":client-pref:" + id.String()
}

func (k Keys) ClientGame(id domain.ClientID) string {
	return k.ns + ":client-game:" + id.String()
}

func (k Keys) GameColorPref(id domain.GameID) string {
	return k.ns + ":game-color-pref:" + id.String()
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", errs.ErrStoreTransport, op, err)
}
