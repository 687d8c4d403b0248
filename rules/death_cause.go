package rules

const (
	// DeathCauseWallCollision is when a snake runs off the board
	DeathCauseWallCollision = "wall-collision"
	// DeathCauseObstacleCollision is when a snake runs into an obstacle that is
	// not part of its own body
	DeathCauseObstacleCollision = "obstacle-collision"
	// DeathCauseSnakeSelfCollision is when a snake runs into its own body
	DeathCauseSnakeSelfCollision = "snake-self-collision"
)
