package controller

import (
	"context"
	"testing"
	"time"

	"github.com/battlesnakeio/snake/config"
	"github.com/battlesnakeio/snake/rules"
	"github.com/stretchr/testify/require"
)

func testController() *Controller {
	cfg := config.Default()
	cfg.TickInterval = time.Millisecond
	return New(InMemStore(), cfg)
}

func shutdown(t *testing.T, c *Controller) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Shutdown(ctx))
}

func drain(frames <-chan *rules.GameFrame) *rules.GameFrame {
	var last *rules.GameFrame
	for f := range frames {
		last = f
	}
	return last
}

func TestController_Create(t *testing.T) {
	ctrl := testController()
	ctx := context.Background()

	game, err := ctrl.Create(ctx, &rules.CreateRequest{})
	require.NoError(t, err)
	require.NotEmpty(t, game.ID)
	require.Equal(t, rules.GameStatusStopped, game.Status)
	require.Equal(t, int32(30), game.Width)
	require.Equal(t, int32(1), game.TickInterval)

	status, err := ctrl.Status(ctx, game.ID)
	require.NoError(t, err)
	require.Equal(t, game, status.Game)
	require.Equal(t, int32(0), status.LastFrame.Turn)
	require.True(t, status.LastFrame.Alive)
	require.Len(t, status.LastFrame.Body, 5)

	_, err = ctrl.Create(ctx, &rules.CreateRequest{Width: -1})
	require.Error(t, err)

	_, err = ctrl.Status(ctx, "missing")
	require.Equal(t, ErrNotFound, err)
}

func TestController_RunToCompletion(t *testing.T) {
	ctrl := testController()
	defer shutdown(t, ctrl)
	ctx := context.Background()

	game, err := ctrl.Create(ctx, &rules.CreateRequest{TickInterval: 5})
	require.NoError(t, err)

	require.NoError(t, ctrl.Start(ctx, game.ID))
	require.Equal(t, ErrIsRunning, ctrl.Start(ctx, game.ID))

	frames, cancel, err := ctrl.Subscribe(game.ID)
	require.NoError(t, err)
	defer cancel()

	// Heading left from column 16 the snake hits the wall.
	last := drain(frames)
	require.NotNil(t, last)
	require.False(t, last.Alive)
	require.Equal(t, rules.DeathCauseWallCollision, last.DeathCause)

	require.False(t, ctrl.Running(game.ID))
	status, err := ctrl.Status(ctx, game.ID)
	require.NoError(t, err)
	require.Equal(t, rules.GameStatusComplete, status.Game.Status)
	require.Equal(t, int32(17), status.LastFrame.Turn)

	all, err := ctrl.Frames(ctx, game.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 18)
	for i, f := range all {
		require.Equal(t, int32(i), f.Turn)
	}

	require.Equal(t, ErrFinished, ctrl.Start(ctx, game.ID))
	require.Equal(t, ErrNotRunning, ctrl.Direction(ctx, game.ID, "up"))
	_, _, err = ctrl.Subscribe(game.ID)
	require.Equal(t, ErrNotRunning, err)
}

func TestController_Direction(t *testing.T) {
	ctrl := testController()
	ctrl.cfg.DirectionRate = 1
	ctrl.cfg.DirectionBurst = 2
	defer shutdown(t, ctrl)
	ctx := context.Background()

	game, err := ctrl.Create(ctx, &rules.CreateRequest{TickInterval: 60000})
	require.NoError(t, err)

	require.Equal(t, rules.ErrInvalidDirection, ctrl.Direction(ctx, game.ID, "north"))
	require.Equal(t, ErrNotFound, ctrl.Direction(ctx, "missing", "up"))
	require.Equal(t, ErrNotRunning, ctrl.Direction(ctx, game.ID, "up"))

	require.NoError(t, ctrl.Start(ctx, game.ID))
	require.NoError(t, ctrl.Direction(ctx, game.ID, "up"))
	require.NoError(t, ctrl.Direction(ctx, game.ID, "DOWN"))
	require.Equal(t, ErrRateLimited, ctrl.Direction(ctx, game.ID, "up"))

	ctrl.mu.Lock()
	d, ok := ctrl.running[game.ID].session.Mailbox().Drain()
	ctrl.mu.Unlock()
	require.True(t, ok)
	require.Equal(t, rules.DirectionDown, d)
}

func TestController_StopAndResume(t *testing.T) {
	ctrl := testController()
	defer shutdown(t, ctrl)
	ctx := context.Background()

	game, err := ctrl.Create(ctx, &rules.CreateRequest{TickInterval: 5})
	require.NoError(t, err)
	require.Equal(t, ErrNotRunning, ctrl.Stop(ctx, game.ID))

	require.NoError(t, ctrl.Start(ctx, game.ID))
	frames, cancel, err := ctrl.Subscribe(game.ID)
	require.NoError(t, err)
	<-frames
	<-frames
	cancel()

	require.NoError(t, ctrl.Stop(ctx, game.ID))
	require.False(t, ctrl.Running(game.ID))
	status, err := ctrl.Status(ctx, game.ID)
	require.NoError(t, err)
	require.Equal(t, rules.GameStatusStopped, status.Game.Status)
	stoppedAt := status.LastFrame.Turn
	require.True(t, stoppedAt >= 2)

	require.NoError(t, ctrl.Start(ctx, game.ID))
	frames, cancel, err = ctrl.Subscribe(game.ID)
	require.NoError(t, err)
	defer cancel()
	next := <-frames
	require.True(t, next.Turn > stoppedAt)

	status, err = ctrl.Status(ctx, game.ID)
	require.NoError(t, err)
	require.Equal(t, rules.GameStatusRunning, status.Game.Status)
}

func TestController_Shutdown(t *testing.T) {
	ctrl := testController()
	ctx := context.Background()

	game, err := ctrl.Create(ctx, &rules.CreateRequest{TickInterval: 60000})
	require.NoError(t, err)
	require.NoError(t, ctrl.Start(ctx, game.ID))

	shutdown(t, ctrl)
	require.False(t, ctrl.Running(game.ID))
	status, err := ctrl.Status(ctx, game.ID)
	require.NoError(t, err)
	require.Equal(t, rules.GameStatusStopped, status.Game.Status)
}
