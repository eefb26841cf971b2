package bus

// Topics holds the stream name of every topic, with the deployment prefix
// already applied.
type Topics struct {
	MakeMoveCmd           string
	MoveAcceptedEv        string
	MoveMadeEv            string
	MoveRejectedEv        string
	GameStatesChangelog   string
	GameReadyEv           string
	WaitForOpponentEv     string
	PrivateGameRejectedEv string
	JoinPrivateGameCmd    string
	FindPublicGameCmd     string
	CreateGameCmd         string
	ChooseColorPrefCmd    string
	ColorsChosenEv        string
	ClientHeartbeat       string
	AttachBotCmd          string
	BotAttachedEv         string
	UndoMoveCmd           string
	MoveUndoneEv          string
	ProvideHistoryCmd     string
	HistoryProvidedEv     string
}

func NewTopics(prefix string) Topics {
	return Topics{
		MakeMoveCmd:           prefix + "make-move-cmd",
		MoveAcceptedEv:        prefix + "move-accepted-ev",
		MoveMadeEv:            prefix + "move-made-ev",
		MoveRejectedEv:        prefix + "move-rejected-ev",
		GameStatesChangelog:   prefix + "game-states-changelog",
		GameReadyEv:           prefix + "game-ready-ev",
		WaitForOpponentEv:     prefix + "wait-for-opponent-ev",
		PrivateGameRejectedEv: prefix + "private-game-rejected-ev",
		JoinPrivateGameCmd:    prefix + "join-private-game-cmd",
		FindPublicGameCmd:     prefix + "find-public-game-cmd",
		CreateGameCmd:         prefix + "create-game-cmd",
		ChooseColorPrefCmd:    prefix + "choose-color-pref-cmd",
		ColorsChosenEv:        prefix + "colors-chosen-ev",
		ClientHeartbeat:       prefix + "client-heartbeat",
		AttachBotCmd:          prefix + "attach-bot-cmd",
		BotAttachedEv:         prefix + "bot-attached-ev",
		UndoMoveCmd:           prefix + "undo-move-cmd",
		MoveUndoneEv:          prefix + "move-undone-ev",
		ProvideHistoryCmd:     prefix + "provide-history-cmd",
		HistoryProvidedEv:     prefix + "history-provided-ev",
	}
}

// Durable lists the state-bearing topics whose publishes are retried
// instead of dropped.
func (t Topics) Durable() []string {
	return []string{t.MoveAcceptedEv, t.MoveMadeEv, t.GameStatesChangelog}
}
