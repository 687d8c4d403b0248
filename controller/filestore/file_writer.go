package filestore

import (
	"encoding/json"
	"os"

	"github.com/battlesnakeio/snake/rules"
)

var openFileWriter = appendOnlyFileWriter

type writer interface {
	WriteString(s string) (int, error)
	Close() error
}

// record is one line of a game file. Exactly one field is set.
type record struct {
	Game   *rules.Game      `json:"game,omitempty"`
	Frame  *rules.GameFrame `json:"frame,omitempty"`
	Status rules.GameStatus `json:"status,omitempty"`
}

func writeLine(w writer, data interface{}) error {
	j, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = w.WriteString(string(j) + "\n")
	return err
}

func writeGame(w writer, g *rules.Game) error {
	return writeLine(w, &record{Game: g})
}

func writeFrame(w writer, f *rules.GameFrame) error {
	return writeLine(w, &record{Frame: f})
}

func writeStatus(w writer, status rules.GameStatus) error {
	return writeLine(w, &record{Status: status})
}

// appendOnlyFileWriter opens the file of a game for appending. With truncate
// set any previous content is dropped.
func appendOnlyFileWriter(directory, id string, truncate bool) (writer, error) {
	if err := os.MkdirAll(directory, 0775); err != nil {
		return nil, err
	}

	flags := os.O_APPEND | os.O_WRONLY | os.O_CREATE
	if truncate {
		flags |= os.O_TRUNC
	}
	return os.OpenFile(getFilePath(directory, id), flags, 0644)
}
