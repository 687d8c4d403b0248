package filestore

import (
	"bufio"
	"encoding/json"
	"io"
	"os"

	"github.com/battlesnakeio/snake/controller"
	"github.com/battlesnakeio/snake/rules"
	"github.com/pkg/errors"
)

var openFileReader = fileReader

type reader interface {
	ReadBytes(delim byte) ([]byte, error)
	Close() error
}

type bufferedFile struct {
	*bufio.Reader
	f *os.File
}

func (b *bufferedFile) Close() error { return b.f.Close() }

func fileReader(directory, id string) (reader, error) {
	f, err := os.Open(getFilePath(directory, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, controller.ErrNotFound
		}
		return nil, err
	}
	return &bufferedFile{Reader: bufio.NewReader(f), f: f}, nil
}

type gameArchive struct {
	game   *rules.Game
	frames []*rules.GameFrame
}

// readArchive replays the records of a game file. A trailing partial line,
// left behind by a crash mid write, is ignored.
func readArchive(r reader) (*gameArchive, error) {
	archive := &gameArchive{}
	for line := 1; ; line++ {
		data, err := r.ReadBytes('\n')
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		rec := record{}
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		switch {
		case rec.Game != nil:
			archive.game = rec.Game
			archive.frames = nil
		case archive.game == nil:
			return nil, errors.Errorf("line %d: record before game header", line)
		case rec.Frame != nil:
			archive.frames = append(archive.frames, rec.Frame)
		case rec.Status != "":
			archive.game.Status = rec.Status
		}
	}
	if archive.game == nil {
		return nil, errors.New("missing game header")
	}
	return archive, nil
}

// ReadGame loads the game stored in the directory with the given id.
func ReadGame(directory, id string) (*rules.Game, []*rules.GameFrame, error) {
	r, err := openFileReader(directory, id)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	archive, err := readArchive(r)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "read game %s", id)
	}
	return archive.game, archive.frames, nil
}
