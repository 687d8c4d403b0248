// Package redis is a controller.Store backed by redis. A game is stored as
// JSON under its own key, its frames as a list of JSON documents.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/battlesnakeio/snake/controller"
	"github.com/battlesnakeio/snake/rules"
	"github.com/go-redis/redis"
	"github.com/pkg/errors"
)

// maxTxRetries bounds how often an optimistic transaction is retried after a
// watched key changed under it.
const maxTxRetries = 5

// Store is a controller.Store using redis.
type Store struct {
	client *redis.Client
}

// NewStore will create a new instance of an underlying redis client, so it should not be re-created across "threads"
// - connectURL see: github.com/go-redis/redis/options.go for URL specifics
// The underlying redis client will be immediately tested for connectivity, so don't call this until you know redis can connect.
// Returns a new instance OR an error if unable (meaning an issue connecting to your redis URL)
func NewStore(connectURL string) (*Store, error) {
	o, err := redis.ParseURL(connectURL)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse redis URL")
	}

	client := redis.NewClient(o)

	// Validate it's connected
	err = client.Ping().Err()
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect")
	}

	return &Store{client: client}, nil
}

// Close closes the underlying redis client.
func (rs *Store) Close() error {
	return rs.client.Close()
}

func gameKey(id string) string   { return fmt.Sprintf("game:%s", id) }
func framesKey(id string) string { return fmt.Sprintf("game:%s:frames", id) }

func (rs *Store) watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	client := rs.client.WithContext(ctx)
	for i := 0; i < maxTxRetries; i++ {
		err := client.Watch(fn, keys...)
		if err != redis.TxFailedErr {
			return err
		}
	}
	return errors.Wrap(redis.TxFailedErr, "too much contention")
}

func encodeFrames(frames []*rules.GameFrame) ([]interface{}, error) {
	values := make([]interface{}, 0, len(frames))
	for _, f := range frames {
		data, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		values = append(values, data)
	}
	return values, nil
}

// CreateGame will insert a game with the default game frames.
func (rs *Store) CreateGame(ctx context.Context, g *rules.Game, frames []*rules.GameFrame) error {
	if err := controller.CheckSequence(0, frames...); err != nil {
		return err
	}
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	values, err := encodeFrames(frames)
	if err != nil {
		return err
	}

	return rs.watch(ctx, func(tx *redis.Tx) error {
		_, err := tx.Pipelined(func(pipe redis.Pipeliner) error {
			pipe.Set(gameKey(g.ID), data, 0)
			pipe.Del(framesKey(g.ID))
			if len(values) > 0 {
				pipe.RPush(framesKey(g.ID), values...)
			}
			return nil
		})
		return err
	}, gameKey(g.ID), framesKey(g.ID))
}

func getGame(c redis.Cmdable, id string) (*rules.Game, error) {
	data, err := c.Get(gameKey(id)).Bytes()
	if err == redis.Nil {
		return nil, controller.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	g := &rules.Game{}
	if err := json.Unmarshal(data, g); err != nil {
		return nil, errors.Wrap(err, "corrupt game")
	}
	return g, nil
}

// GetGame will fetch the game.
func (rs *Store) GetGame(ctx context.Context, id string) (*rules.Game, error) {
	return getGame(rs.client.WithContext(ctx), id)
}

// SetGameStatus is used to set a specific game status. This operation
// should be atomic.
func (rs *Store) SetGameStatus(ctx context.Context, id string, status rules.GameStatus) error {
	return rs.watch(ctx, func(tx *redis.Tx) error {
		g, err := getGame(tx, id)
		if err != nil {
			return err
		}
		g.Status = status
		data, err := json.Marshal(g)
		if err != nil {
			return err
		}
		_, err = tx.Pipelined(func(pipe redis.Pipeliner) error {
			pipe.Set(gameKey(id), data, 0)
			return nil
		})
		return err
	}, gameKey(id))
}

func requireGame(c redis.Cmdable, id string) error {
	n, err := c.Exists(gameKey(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return controller.ErrNotFound
	}
	return nil
}

// PushGameFrame will push a game frame onto the list of frames.
func (rs *Store) PushGameFrame(ctx context.Context, id string, f *rules.GameFrame) error {
	values, err := encodeFrames([]*rules.GameFrame{f})
	if err != nil {
		return err
	}

	return rs.watch(ctx, func(tx *redis.Tx) error {
		if err := requireGame(tx, id); err != nil {
			return err
		}
		n, err := tx.LLen(framesKey(id)).Result()
		if err != nil {
			return err
		}
		if err := controller.CheckSequence(int(n), f); err != nil {
			return err
		}
		_, err = tx.Pipelined(func(pipe redis.Pipeliner) error {
			pipe.RPush(framesKey(id), values...)
			return nil
		})
		return err
	}, gameKey(id), framesKey(id))
}

// ListGameFrames will list frames by an offset and limit, it supports
// negative offset.
func (rs *Store) ListGameFrames(ctx context.Context, id string, limit, offset int) ([]*rules.GameFrame, error) {
	client := rs.client.WithContext(ctx)
	if err := requireGame(client, id); err != nil {
		return nil, err
	}
	n, err := client.LLen(framesKey(id)).Result()
	if err != nil {
		return nil, err
	}

	start, end := controller.FrameWindow(int(n), limit, offset)
	if start == end {
		return nil, nil
	}
	values, err := client.LRange(framesKey(id), int64(start), int64(end-1)).Result()
	if err != nil {
		return nil, err
	}

	frames := make([]*rules.GameFrame, 0, len(values))
	for _, v := range values {
		f := &rules.GameFrame{}
		if err := json.Unmarshal([]byte(v), f); err != nil {
			return nil, errors.Wrap(err, "corrupt frame")
		}
		frames = append(frames, f)
	}
	return frames, nil
}
