package rules

// checkForDeath returns the cause of death for a snake whose head would move
// to candidate, or the empty string if the move is safe. The body passed in is
// the body before the move, tail included, so moving onto the cell the tail is
// about to leave is still a self collision.
func checkForDeath(candidate Position, zone Bounds, body, obstacles []Position) string {
	if deathByOutOfBounds(candidate, zone) {
		return DeathCauseWallCollision
	}
	if deathByObstacle(candidate, obstacles) {
		return DeathCauseObstacleCollision
	}
	if deathBySelfCollision(candidate, body) {
		return DeathCauseSnakeSelfCollision
	}
	return ""
}

func deathByOutOfBounds(head Position, zone Bounds) bool {
	return !zone.Contains(head)
}

func deathByObstacle(head Position, obstacles []Position) bool {
	return containsPosition(obstacles, head)
}

func deathBySelfCollision(head Position, body []Position) bool {
	return containsPosition(body, head)
}
