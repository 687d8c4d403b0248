package rules

// GameStatus is the lifecycle state of a game.
type GameStatus string

const (
	// GameStatusStopped represents a game that has been created but is not
	// being ticked
	GameStatusStopped GameStatus = "stopped"
	// GameStatusRunning represents a running game
	GameStatusRunning GameStatus = "running"
	// GameStatusError represents a game that ended because of an error
	GameStatusError GameStatus = "error"
	// GameStatusComplete represents a game that is done
	GameStatusComplete GameStatus = "complete"
)

// Finished reports whether a game in this status can never run again.
func (s GameStatus) Finished() bool {
	return s == GameStatusComplete || s == GameStatusError
}
