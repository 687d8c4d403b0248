package rules

// RestoreGame rebuilds the snake and prey of game as they were in frame.
// Stopped games are resumed from their last stored frame this way.
func RestoreGame(game *Game, frame *GameFrame) (*Snake, *Prey) {
	snake := InitSnake(game.Bounds(), frame.Body, frame.Direction)
	snake.SegmentSize = game.Resolution
	snake.FillColor = game.Color
	snake.Alive = frame.Alive
	snake.Score = frame.Score
	snake.DeathCause = frame.DeathCause

	prey := &Prey{
		Appearance: preyAppearance(game.Bounds(), game.Resolution),
		Position:   frame.Prey,
	}
	return snake, prey
}
