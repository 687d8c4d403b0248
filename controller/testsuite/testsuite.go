// Package testsuite holds the behaviour every controller.Store implementation
// must share.
package testsuite

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/battlesnakeio/snake/controller"
	"github.com/battlesnakeio/snake/rules"
	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/require"
)

func testFrame(turn int32) *rules.GameFrame {
	return &rules.GameFrame{
		Turn:      turn,
		Body:      []rules.Position{{X: 60, Y: 20}, {X: 40 - 20*turn, Y: 20}},
		Direction: rules.DirectionLeft,
		Prey:      rules.Position{X: 100, Y: 100},
		Score:     turn,
		Alive:     true,
	}
}

func testGame(id string) *rules.Game {
	return &rules.Game{
		ID:           id,
		Status:       rules.GameStatusStopped,
		Mode:         rules.GameModeSinglePlayer,
		Width:        30,
		Height:       30,
		Resolution:   20,
		Margin:       1,
		TickInterval: 150,
		Color:        "#800094",
	}
}

func testStoreGames(t *testing.T, s controller.Store) {
	key := uuid.NewV4().String()
	ctx := context.Background()

	// Create and fetch a game.
	game := testGame(key)
	err := s.CreateGame(ctx, game, []*rules.GameFrame{testFrame(0)})
	require.Nil(t, err)
	g, err := s.GetGame(ctx, key)
	require.Nil(t, err)
	require.Equal(t, game, g)

	// NotFound error thrown.
	_, err = s.GetGame(ctx, key+"-missing")
	require.Equal(t, controller.ErrNotFound, err)

	// Modifying the returned game doesn't touch the store.
	g.Width = 5
	g, err = s.GetGame(ctx, key)
	require.Nil(t, err)
	require.Equal(t, int32(30), g.Width)

	// Creating again replaces the game and its frames.
	game.Autopilot = true
	err = s.CreateGame(ctx, game, nil)
	require.Nil(t, err)
	g, err = s.GetGame(ctx, key)
	require.Nil(t, err)
	require.True(t, g.Autopilot)
	frames, err := s.ListGameFrames(ctx, key, 10, 0)
	require.Nil(t, err)
	require.Len(t, frames, 0)

	// Initial frames must start at turn 0.
	err = s.CreateGame(ctx, testGame(key), []*rules.GameFrame{testFrame(1)})
	require.Equal(t, controller.ErrInvalidSequence, err)
}

func testStoreGameStatus(t *testing.T, s controller.Store) {
	key := uuid.NewV4().String()
	ctx := context.Background()

	err := s.CreateGame(ctx, testGame(key), nil)
	require.Nil(t, err)

	// Set game to running.
	err = s.SetGameStatus(ctx, key, rules.GameStatusRunning)
	require.Nil(t, err)
	g, err := s.GetGame(ctx, key)
	require.Nil(t, err)
	require.Equal(t, rules.GameStatusRunning, g.Status)

	// Set game to complete.
	err = s.SetGameStatus(ctx, key, rules.GameStatusComplete)
	require.Nil(t, err)
	g, err = s.GetGame(ctx, key)
	require.Nil(t, err)
	require.Equal(t, rules.GameStatusComplete, g.Status)

	// Missing game.
	err = s.SetGameStatus(ctx, key+"-missing", rules.GameStatusRunning)
	require.Equal(t, controller.ErrNotFound, err)
}

func testStoreGameFrames(t *testing.T, s controller.Store) {
	key := uuid.NewV4().String()
	ctx := context.Background()

	err := s.CreateGame(ctx, testGame(key), nil)
	require.Nil(t, err)

	// Read game frames, too high offset.
	frames, err := s.ListGameFrames(ctx, key, 10, 100)
	require.Nil(t, err)
	require.Equal(t, 0, len(frames))

	// Read game frames, 0 offset.
	frames, err = s.ListGameFrames(ctx, key, 10, 0)
	require.Nil(t, err)
	require.Equal(t, 0, len(frames))

	// Push game frames.
	for i := int32(0); i < 5; i++ {
		err = s.PushGameFrame(ctx, key, testFrame(i))
		require.Nil(t, err)
	}

	// Out of sequence frames are rejected.
	err = s.PushGameFrame(ctx, key, testFrame(3))
	require.Equal(t, controller.ErrInvalidSequence, err)
	err = s.PushGameFrame(ctx, key, testFrame(7))
	require.Equal(t, controller.ErrInvalidSequence, err)

	// Read the game frames.
	frames, err = s.ListGameFrames(ctx, key, 10, 0)
	require.Nil(t, err)
	require.Equal(t, 5, len(frames))
	for i, f := range frames {
		require.Equal(t, testFrame(int32(i)), f)
	}

	// Limit and offset.
	frames, err = s.ListGameFrames(ctx, key, 2, 1)
	require.Nil(t, err)
	require.Equal(t, []*rules.GameFrame{testFrame(1), testFrame(2)}, frames)

	// Negative offset counts from the end.
	frames, err = s.ListGameFrames(ctx, key, 1, -1)
	require.Nil(t, err)
	require.Equal(t, []*rules.GameFrame{testFrame(4)}, frames)
	frames, err = s.ListGameFrames(ctx, key, 10, -2)
	require.Nil(t, err)
	require.Equal(t, []*rules.GameFrame{testFrame(3), testFrame(4)}, frames)
	frames, err = s.ListGameFrames(ctx, key, 2, -100)
	require.Nil(t, err)
	require.Equal(t, []*rules.GameFrame{testFrame(0), testFrame(1)}, frames)

	// Read game frames that don't exist.
	frames, err = s.ListGameFrames(ctx, key+"-missing", 1, 0)
	require.Equal(t, controller.ErrNotFound, err)
	require.Equal(t, 0, len(frames))

	// Push to a game that doesn't exist.
	err = s.PushGameFrame(ctx, key+"-missing", testFrame(0))
	require.Equal(t, controller.ErrNotFound, err)

	// Read the game frames, too high offset.
	frames, err = s.ListGameFrames(ctx, key, 10, 100)
	require.Nil(t, err)
	require.Equal(t, 0, len(frames))
}

func testStoreConcurrentWriters(t *testing.T, s controller.Store) {
	key := uuid.NewV4().String()
	ctx := context.Background()

	err := s.CreateGame(ctx, testGame(key), []*rules.GameFrame{testFrame(0)})
	require.Nil(t, err)

	var ok uint32 // How many pushed turn 1.
	var wg sync.WaitGroup
	wg.Add(20)

	for i := 0; i < 20; i++ {
		go func() {
			defer wg.Done()
			if err := s.PushGameFrame(ctx, key, testFrame(1)); err == nil {
				atomic.AddUint32(&ok, 1)
			}
		}()
	}

	wg.Wait()

	require.Equal(t, uint32(1), ok)
	frames, err := s.ListGameFrames(ctx, key, 10, 0)
	require.Nil(t, err)
	require.Len(t, frames, 2)
}

// Suite will execute the store testsuite.
func Suite(t *testing.T, s controller.Store, pretest func()) {
	s = controller.InstrumentStore(s)
	t.Run("Games", func(t *testing.T) { pretest(); testStoreGames(t, s) })
	t.Run("GameStatus", func(t *testing.T) { pretest(); testStoreGameStatus(t, s) })
	t.Run("GameFrames", func(t *testing.T) { pretest(); testStoreGameFrames(t, s) })
	t.Run("ConcurrentWriters", func(t *testing.T) { pretest(); testStoreConcurrentWriters(t, s) })
}
