package rules

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckForGameOver_SinglePlayer(t *testing.T) {
	frame := &GameFrame{Alive: false}
	require.True(t, CheckForGameOver(frame))

	frame.Alive = true
	require.False(t, CheckForGameOver(frame))

	require.False(t, CheckForGameOver(nil))
}
