// Package filestore is a controller.Store keeping one append only file per
// game. Each line of a file is a JSON record: the game header, a frame or a
// status change.
package filestore

import (
	"context"
	"os/user"
	"path"
	"strings"
	"sync"

	"github.com/battlesnakeio/snake/controller"
	"github.com/battlesnakeio/snake/rules"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func defaultDir() string {
	return path.Join(homeDir(), ".snake/games")
}

func homeDir() string {
	usr, err := user.Current()
	if err != nil {
		return "."
	}
	return usr.HomeDir
}

// NewFileStore returns a file based store implementation (1 file per game).
func NewFileStore(directory string) controller.Store {
	if directory == "" {
		directory = defaultDir()
	}

	return &fileStore{
		games:     map[string]*rules.Game{},
		frames:    map[string][]*rules.GameFrame{},
		writers:   map[string]writer{},
		directory: directory,
	}
}

type fileStore struct {
	games     map[string]*rules.Game
	frames    map[string][]*rules.GameFrame
	writers   map[string]writer
	lock      sync.Mutex
	directory string
}

// closeGame removes the game from in-memory cache and closes the handle to its
// file. Should be called when game is complete.
func (fs *fileStore) closeGame(id string) {
	if w, ok := fs.writers[id]; ok {
		err := w.Close()
		if err != nil {
			log.WithError(err).Error("Error while closing file writer")
		}
	}
	delete(fs.games, id)
	delete(fs.frames, id)
	delete(fs.writers, id)
}

func (fs *fileStore) CreateGame(ctx context.Context, g *rules.Game, frames []*rules.GameFrame) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if !validID(g.ID) {
		return errors.Errorf("invalid game id %q", g.ID)
	}
	if err := controller.CheckSequence(0, frames...); err != nil {
		return err
	}
	fs.closeGame(g.ID)

	w, err := openFileWriter(fs.directory, g.ID, true)
	if err != nil {
		return err
	}
	fs.writers[g.ID] = w
	if err := writeGame(w, g); err != nil {
		fs.closeGame(g.ID)
		return err
	}
	for _, f := range frames {
		if err := writeFrame(w, f); err != nil {
			fs.closeGame(g.ID)
			return err
		}
	}

	fs.games[g.ID] = g.Clone()
	fs.frames[g.ID] = append([]*rules.GameFrame{}, frames...)
	return nil
}

func (fs *fileStore) GetGame(ctx context.Context, id string) (*rules.Game, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	g, err := fs.requireGame(id)
	if err != nil {
		return nil, err
	}

	// Clone the game, since this could be modified after this is returned
	// and upset internal state inside the store.
	return g.Clone(), nil
}

func (fs *fileStore) SetGameStatus(ctx context.Context, id string, status rules.GameStatus) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	game, err := fs.requireGame(id)
	if err != nil {
		return err
	}
	w, err := fs.requireHandle(id)
	if err != nil {
		return err
	}
	if err := writeStatus(w, status); err != nil {
		return err
	}

	game.Status = status
	if status.Finished() {
		fs.closeGame(id)
	}
	return nil
}

func (fs *fileStore) PushGameFrame(ctx context.Context, id string, f *rules.GameFrame) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if _, err := fs.requireGame(id); err != nil {
		return err
	}
	if err := controller.CheckSequence(len(fs.frames[id]), f); err != nil {
		return err
	}
	w, err := fs.requireHandle(id)
	if err != nil {
		return err
	}
	if err := writeFrame(w, f); err != nil {
		return err
	}
	fs.frames[id] = append(fs.frames[id], f)
	return nil
}

func (fs *fileStore) ListGameFrames(ctx context.Context, id string, limit, offset int) ([]*rules.GameFrame, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if _, err := fs.requireGame(id); err != nil {
		return nil, err
	}
	frames := fs.frames[id]
	start, end := controller.FrameWindow(len(frames), limit, offset)
	return append([]*rules.GameFrame{}, frames[start:end]...), nil
}

func (fs *fileStore) requireHandle(id string) (writer, error) {
	if w, ok := fs.writers[id]; ok {
		return w, nil
	}

	handle, err := openFileWriter(fs.directory, id, false)
	if err != nil {
		return nil, err
	}

	fs.writers[id] = handle
	return handle, nil
}

// requireGame loads the game and its frames from file unless already cached.
func (fs *fileStore) requireGame(id string) (*rules.Game, error) {
	if g, ok := fs.games[id]; ok {
		return g, nil
	}
	if !validID(id) {
		return nil, controller.ErrNotFound
	}

	g, frames, err := ReadGame(fs.directory, id)
	if err != nil {
		return nil, err
	}

	fs.games[id] = g
	fs.frames[id] = frames
	return g, nil
}

func getFilePath(directory string, id string) string {
	return path.Join(directory, id) + ".snake"
}

// validID keeps ids from escaping the store directory.
func validID(id string) bool {
	return id != "" && !strings.HasPrefix(id, ".") && !strings.ContainsAny(id, `/\`)
}
