package sqlstore

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/battlesnakeio/snake/config"
	"github.com/battlesnakeio/snake/controller"
	"github.com/battlesnakeio/snake/controller/testsuite"
	"github.com/battlesnakeio/snake/rules"
	"github.com/stretchr/testify/require"
)

func mustExec(db *sql.DB, sq string) {
	if _, err := db.Exec(sq); err != nil {
		panic(err)
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLStore("sqlite://:memory:", Options{})
	require.NoError(t, err)
	defer s.Close()

	testsuite.Suite(t, s, func() {
		mustExec(s.db, "DELETE FROM games")
		mustExec(s.db, "DELETE FROM game_frames")
	})
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("POSTGRES_URL")
	if url == "" {
		t.Skip("POSTGRES_URL not set")
	}
	s, err := NewSQLStore(url, Options{MaxOpenConns: 20, MaxIdleConns: 20})
	require.NoError(t, err)
	defer s.Close()

	testsuite.Suite(t, s, func() {
		mustExec(s.db, "TRUNCATE games")
		mustExec(s.db, "TRUNCATE game_frames")
	})
}

func TestPlaceholders(t *testing.T) {
	pg := &Store{dialect: postgres}
	require.Equal(t, "SELECT a FROM b WHERE c=$1 AND d=$2", pg.q("SELECT a FROM b WHERE c=? AND d=?"))

	lite := &Store{dialect: sqlite}
	require.Equal(t, "SELECT a FROM b WHERE c=?", lite.q("SELECT a FROM b WHERE c=?"))
}

func TestSQLiteFileStore(t *testing.T) {
	path := t.TempDir() + "/games.db"
	s, err := NewSQLStore("sqlite://"+path, Options{})
	require.NoError(t, err)

	ctx := context.Background()
	game := &rules.Game{ID: "persisted", Status: rules.GameStatusRunning}
	require.NoError(t, s.CreateGame(ctx, game, []*rules.GameFrame{{Alive: true}}))
	require.NoError(t, s.Close())

	// Reopening the file keeps the games.
	s, err = NewSQLStore("sqlite://"+path, Options{})
	require.NoError(t, err)
	defer s.Close()
	g, err := s.GetGame(ctx, "persisted")
	require.NoError(t, err)
	require.Equal(t, game, g)
	frames, err := s.ListGameFrames(ctx, "persisted", 10, 0)
	require.NoError(t, err)
	require.Len(t, frames, 1)
}

func TestSQLiteStopKeepsGamesResumable(t *testing.T) {
	s, err := NewSQLStore("sqlite://:memory:", Options{})
	require.NoError(t, err)
	defer s.Close()

	cfg := config.Default()
	cfg.TickInterval = time.Millisecond
	ctrl := controller.New(s, cfg)
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		game, err := ctrl.Create(ctx, &rules.CreateRequest{TickInterval: 1})
		require.NoError(t, err)
		require.NoError(t, ctrl.Start(ctx, game.ID))
		time.Sleep(time.Duration(1+i%5) * time.Millisecond)
		if err := ctrl.Stop(ctx, game.ID); err != nil {
			require.Equal(t, controller.ErrNotRunning, err)
		}

		st, err := ctrl.Status(ctx, game.ID)
		require.NoError(t, err)
		require.NotEqual(t, rules.GameStatusError, st.Game.Status, "game %d", i)
	}
	require.NoError(t, ctrl.Shutdown(ctx))
}
