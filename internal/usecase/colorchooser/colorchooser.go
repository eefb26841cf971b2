package colorchooser

import (
	"context"
	"time"

	"go.uber.org/zap"

	"bugout/internal/bus"
	"bugout/internal/domain"
)

type PrefStore interface {
	SavePref(ctx context.Context, pref domain.SessionColorPref) error
	Pref(ctx context.Context, client domain.ClientID) (domain.SessionColorPref, bool, error)
	ClearPrefs(ctx context.Context, clients ...domain.ClientID) error
	SaveGame(ctx context.Context, id domain.GameID, players [2]domain.ClientID) error
	GameOf(ctx context.Context, client domain.ClientID) (domain.GameID, bool, error)
	Players(ctx context.Context, id domain.GameID) ([2]domain.ClientID, bool, error)
	MarkChosen(ctx context.Context, id domain.GameID) (bool, error)
}

type Publisher interface {
	PublishJSON(ctx context.Context, topic, key string, v interface{}) error
}

type ColorChooserUseCase struct {
	log    *zap.SugaredLogger
	store  PrefStore
	pub    Publisher
	topics bus.Topics
	now    func() time.Time
}

func NewColorChooserUseCase(log *zap.SugaredLogger, store PrefStore, pub Publisher, topics bus.Topics) *ColorChooserUseCase {
	return &ColorChooserUseCase{
		log:    log,
		store:  store,
		pub:    pub,
		topics: topics,
		now:    time.Now,
	}
}

func (c *ColorChooserUseCase) HandleChooseColorPref(ctx context.Context, cmd domain.ChooseColorPref) error {
	pref := domain.SessionColorPref{
		ClientID:   cmd.ClientID,
		SessionID:  cmd.SessionID,
		ColorPref:  cmd.ColorPref,
		RecordedAt: c.now().UnixNano(),
	}
	if err := c.store.SavePref(ctx, pref); err != nil {
		return err
	}
	game, ok, err := c.store.GameOf(ctx, cmd.ClientID)
	if err != nil || !ok {
		return err
	}
	return c.advance(ctx, game)
}

func (c *ColorChooserUseCase) HandleGameReady(ctx context.Context, ev domain.GameReady) error {
	if err := c.store.SaveGame(ctx, ev.GameID, ev.Players); err != nil {
		return err
	}
	return c.advance(ctx, ev.GameID)
}

// advance publishes ColorsChosen the first time both preferences of a game
// are known. The preferences are spent on that game and cleared.
func (c *ColorChooserUseCase) advance(ctx context.Context, game domain.GameID) error {
	players, ok, err := c.store.Players(ctx, game)
	if err != nil || !ok {
		return err
	}
	var prefs []domain.SessionColorPref
	for _, p := range players {
		pref, ok, err := c.store.Pref(ctx, p)
		if err != nil {
			return err
		}
		if ok {
			prefs = append(prefs, pref)
		}
	}
	progress := progressOf(len(prefs))
	if progress != Complete {
		c.log.Debugw("color prefs incomplete", "game", game.String(), "progress", progress.String())
		return nil
	}
	first, err := c.store.MarkChosen(ctx, game)
	if err != nil || !first {
		return err
	}

	black, white := Choose(game, prefs[0], prefs[1])
	c.log.Infow("colors chosen", "game", game.String(), "black", black.String(), "white", white.String())
	err = c.pub.PublishJSON(ctx, c.topics.ColorsChosenEv, game.String(), domain.ColorsChosen{
		GameID:  game,
		Black:   black,
		White:   white,
		EventID: domain.NewEventID(),
	})
	if err != nil {
		return err
	}
	return c.store.ClearPrefs(ctx, players[0], players[1])
}
