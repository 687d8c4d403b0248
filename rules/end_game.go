package rules

// CheckForGameOver checks if the game has ended. A single player game is over
// as soon as its snake is dead.
func CheckForGameOver(frame *GameFrame) bool {
	return frame != nil && !frame.Alive
}
