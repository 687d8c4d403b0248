// Package sqlstore is a controller.Store on top of database/sql. Postgres
// (lib/pq) and sqlite (modernc.org/sqlite) are supported, picked by the URL
// scheme.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq" // Import pq driver.
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // Import sqlite driver.

	"github.com/battlesnakeio/snake/controller"
	"github.com/battlesnakeio/snake/rules"
)

const postgresMigrations = `
CREATE TABLE IF NOT EXISTS games (
	id VARCHAR(255) PRIMARY KEY,
	value jsonb,
	created timestamp default now()
);
CREATE TABLE IF NOT EXISTS game_frames (
	id VARCHAR(255),
	turn INTEGER,
	value jsonb,
	PRIMARY KEY (id, turn)
);
`

const sqliteMigrations = `
CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	value TEXT,
	created TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS game_frames (
	id TEXT,
	turn INTEGER,
	value TEXT,
	PRIMARY KEY (id, turn)
);
`

type dialect struct {
	driver     string
	migrations string
	// numbered placeholders ($1) instead of ?
	numbered  bool
	forUpdate string
}

var (
	postgres = dialect{driver: "postgres", migrations: postgresMigrations, numbered: true, forUpdate: " FOR UPDATE"}
	sqlite   = dialect{driver: "sqlite", migrations: sqliteMigrations}
)

// Options tune the connection pool.
type Options struct {
	MaxOpenConns int
	MaxIdleConns int
}

// NewSQLStore returns a new store for url. postgres:// URLs are handed to
// lib/pq as is, sqlite://<path> opens the sqlite database at path
// (sqlite://:memory: for a private in memory database).
func NewSQLStore(url string, opts Options) (*Store, error) {
	d, dsn := postgres, url
	if strings.HasPrefix(url, "sqlite://") {
		d, dsn = sqlite, strings.TrimPrefix(url, "sqlite://")
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if d.driver == "sqlite" {
		// sqlite allows a single writer, and every connection to :memory:
		// would see its own database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(opts.MaxOpenConns)
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping database")
	}

	if _, err = db.ExecContext(ctx, d.migrations); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate database")
	}
	return &Store{db: db, dialect: d}, nil
}

// Store represents an SQL store.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// q rewrites ? placeholders for the dialect.
func (s *Store) q(query string) string {
	if !s.dialect.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// transact is a transaction wrapper, helps avoid failed to close connections.
func (s *Store) transact(
	ctx context.Context, txFunc func(*sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			if rErr := tx.Rollback(); rErr != nil {
				log.WithError(rErr).Error("rollback failed")
			}
			panic(p) // re-throw panic after Rollback
		} else if err != nil {
			// err is non-nil; don't change it
			if rErr := tx.Rollback(); rErr != nil {
				log.WithError(rErr).Error("rollback failed")
			}
		} else {
			err = tx.Commit() // err is nil; if Commit returns error update err
		}
	}()
	err = txFunc(tx)
	return err
}

// CreateGame will insert a game with the default game frames.
func (s *Store) CreateGame(
	ctx context.Context, g *rules.Game, frames []*rules.GameFrame) error {
	if err := controller.CheckSequence(0, frames...); err != nil {
		return err
	}
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	return s.transact(ctx, func(tx *sql.Tx) error {
		// Upsert games.
		if _, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO games (id, value) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET value=excluded.value`),
			g.ID, string(data),
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM game_frames WHERE id=?`), g.ID); err != nil {
			return err
		}
		return s.insertFrames(ctx, tx, g.ID, frames...)
	})
}

func (s *Store) insertFrames(
	ctx context.Context, tx *sql.Tx, id string, frames ...*rules.GameFrame) error {
	for _, frame := range frames {
		frameData, err := json.Marshal(frame)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(
			ctx, s.q(`INSERT INTO game_frames (id, turn, value) VALUES (?, ?, ?)`),
			id, frame.Turn, string(frameData),
		); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) getGame(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}, id string, lock bool) (*rules.Game, error) {
	query := `SELECT value FROM games WHERE id=?`
	if lock {
		query += s.dialect.forUpdate
	}
	r := q.QueryRowContext(ctx, s.q(query), id)

	var data []byte
	if err := r.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, controller.ErrNotFound
		}
		return nil, err
	}

	g := &rules.Game{}
	if err := json.Unmarshal(data, g); err != nil {
		return nil, errors.Wrap(err, "corrupt game")
	}
	return g, nil
}

// GetGame will fetch the game.
func (s *Store) GetGame(ctx context.Context, id string) (*rules.Game, error) {
	return s.getGame(ctx, s.db, id, false)
}

// SetGameStatus is used to set a specific game status. This operation
// should be atomic.
func (s *Store) SetGameStatus(
	ctx context.Context, id string, status rules.GameStatus) error {
	return s.transact(ctx, func(tx *sql.Tx) error {
		g, err := s.getGame(ctx, tx, id, true)
		if err != nil {
			return err
		}
		g.Status = status
		data, err := json.Marshal(g)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, s.q(`UPDATE games SET value=? WHERE id=?`), string(data), id)
		return err
	})
}

// PushGameFrame will push a game frame onto the list of frames.
func (s *Store) PushGameFrame(
	ctx context.Context, id string, f *rules.GameFrame) error {
	return s.transact(ctx, func(tx *sql.Tx) error {
		// Locking the game row serializes writers of the same game.
		if _, err := s.getGame(ctx, tx, id, true); err != nil {
			return err
		}
		var count int
		r := tx.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM game_frames WHERE id=?`), id)
		if err := r.Scan(&count); err != nil {
			return err
		}
		if err := controller.CheckSequence(count, f); err != nil {
			return err
		}
		return s.insertFrames(ctx, tx, id, f)
	})
}

// ListGameFrames will list frames by an offset and limit, it supports
// negative offset.
func (s *Store) ListGameFrames(ctx context.Context, id string, limit, offset int) ([]*rules.GameFrame, error) {
	if _, err := s.GetGame(ctx, id); err != nil {
		return nil, err
	}

	var count int
	r := s.db.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM game_frames WHERE id=?`), id)
	if err := r.Scan(&count); err != nil {
		return nil, err
	}
	start, end := controller.FrameWindow(count, limit, offset)
	if start == end {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT value FROM game_frames WHERE id=? ORDER BY turn ASC LIMIT ? OFFSET ?`),
		id, end-start, start,
	)
	if err != nil {
		return nil, err
	}

	var frames []*rules.GameFrame
	defer rows.Close()
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}

		frame := &rules.GameFrame{}
		if err := json.Unmarshal(data, frame); err != nil {
			return nil, errors.Wrap(err, "corrupt frame")
		}

		frames = append(frames, frame)
	}

	return frames, rows.Err()
}
