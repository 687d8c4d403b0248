package e2e

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/battlesnakeio/snake/api"
	"github.com/battlesnakeio/snake/config"
	"github.com/battlesnakeio/snake/controller"
	"github.com/battlesnakeio/snake/rules"
	"github.com/davecgh/go-spew/spew"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var apiURL = flag.String("api-url", "", "run against an already running snake server instead of an in process one")

func newClient(url string) *client {
	return &client{
		apiURL: url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

var games = map[string]*rules.CreateRequest{
	"Default": {
		TickInterval: 2,
	},
	"Autopilot": {
		Width:        24,
		Height:       24,
		TickInterval: 1,
		Autopilot:    true,
	},
	"LargerBoard": {
		Width:        100,
		Height:       60,
		Resolution:   10,
		Margin:       3,
		TickInterval: 1,
		Autopilot:    true,
	},
}

func TestMain(m *testing.M) {
	flag.Parse()
	log.SetLevel(log.WarnLevel)

	if *apiURL != "" {
		os.Exit(m.Run())
	}

	ctrl := controller.New(controller.InMemStore(), config.Default())
	srv := httptest.NewServer(api.New("", ctrl).Handler())
	*apiURL = srv.URL

	code := m.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := ctrl.Shutdown(ctx); err != nil {
		fmt.Printf("error while shutting down controller: %v\n", err)
	}
	cancel()
	srv.Close()
	os.Exit(code)
}

func requireSequential(t *testing.T, frames []*rules.GameFrame) {
	for i, f := range frames {
		if !assert.Equal(t, i, int(f.Turn)) {
			spew.Dump(frames)
			return
		}
	}
}

func Test(t *testing.T) {
	const (
		multiplier   = 3
		waitTicks    = 100
		waitInterval = 50 * time.Millisecond
	)

	c := newClient(*apiURL)

	for i := 0; i < multiplier; i++ {
		for name, game := range games {
			game := game
			t.Run(fmt.Sprintf("%s#%d", name, i), func(t *testing.T) {
				t.Parallel()

				id, err := c.beginGame(game)
				require.NoError(t, err)

				var st *controller.GameStatus
				var frames *api.FramesResponse
				for i := 0; i < waitTicks; i++ {
					time.Sleep(waitInterval)
					st, frames, err = c.gameStatus(id)
					require.NoError(t, err)

					if st.Game.Status == rules.GameStatusComplete {
						t.Logf("game finished id=%s turns=%d frames=%d score=%d", id, st.LastFrame.Turn, frames.Count, st.LastFrame.Score)
						require.Equal(t, int(st.LastFrame.Turn)+1, frames.Count)
						requireSequential(t, frames.Frames)
						assert.False(t, st.LastFrame.Alive)
						assert.NotEmpty(t, st.LastFrame.DeathCause)
						return
					}
				}

				// An autopilot can outlive the wait. Stopping it must still
				// leave a consistent history behind. The game may end on its
				// own while the stop is in flight.
				require.True(t, game.Autopilot, "game did not finish: %s", spew.Sdump(st))
				_ = c.do(http.MethodPost, "/games/"+id+"/stop", nil, nil)
				st, frames, err = c.gameStatus(id)
				require.NoError(t, err)
				assert.Contains(t, []rules.GameStatus{rules.GameStatusStopped, rules.GameStatusComplete}, st.Game.Status)
				require.Equal(t, int(st.LastFrame.Turn)+1, frames.Count)
				requireSequential(t, frames.Frames)
			})
		}
	}
}

func TestSteeredGame(t *testing.T) {
	c := newClient(*apiURL)

	id, err := c.beginGame(&rules.CreateRequest{TickInterval: 30})
	require.NoError(t, err)
	require.NoError(t, c.do(http.MethodPost, "/games/"+id+"/direction", &api.DirectionRequest{Direction: "down"}, nil))

	err = c.do(http.MethodPost, "/games/"+id+"/direction", &api.DirectionRequest{Direction: "sideways"}, nil)
	require.Error(t, err)

	var st *controller.GameStatus
	var frames *api.FramesResponse
	for i := 0; i < 100; i++ {
		time.Sleep(50 * time.Millisecond)
		st, frames, err = c.gameStatus(id)
		require.NoError(t, err)
		if st.Game.Status == rules.GameStatusComplete {
			break
		}
	}
	require.Equal(t, rules.GameStatusComplete, st.Game.Status)
	require.Equal(t, rules.DirectionDown, st.LastFrame.Direction)
	require.Equal(t, rules.DeathCauseWallCollision, st.LastFrame.DeathCause)
	requireSequential(t, frames.Frames)

	err = c.do(http.MethodPost, "/games/"+id+"/start", nil, nil)
	require.Error(t, err)
}
