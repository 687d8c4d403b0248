package filestore

import (
	"bufio"
	"errors"
	"strings"
	"testing"

	"github.com/battlesnakeio/snake/rules"
	"github.com/stretchr/testify/require"
)

type mockReader struct {
	*bufio.Reader
}

func (m *mockReader) Close() error {
	return nil
}

func newMockReader(text string) *mockReader {
	return &mockReader{
		Reader: bufio.NewReader(strings.NewReader(text)),
	}
}

type failReader struct{}

func (f *failReader) ReadBytes(delimiter byte) ([]byte, error) {
	return nil, errors.New("FAIL")
}

func (f *failReader) Close() error {
	return errors.New("FAIL")
}

func TestReadArchive(t *testing.T) {
	text := `{"game":{"id":"myid","status":"stopped","width":10}}
{"frame":{"turn":0,"body":[{"x":20,"y":20}],"alive":true}}
{"status":"running"}
{"frame":{"turn":1,"body":[{"x":0,"y":20}],"alive":true}}
{"frame":{"turn":2,"bo`

	archive, err := readArchive(newMockReader(text))
	require.NoError(t, err)
	require.Equal(t, "myid", archive.game.ID)
	require.Equal(t, rules.GameStatusRunning, archive.game.Status)
	require.Len(t, archive.frames, 2)
	require.Equal(t, rules.Position{X: 0, Y: 20}, archive.frames[1].Body[0])
}

func TestReadArchiveRecreated(t *testing.T) {
	text := `{"game":{"id":"myid","width":10}}
{"frame":{"turn":0}}
{"game":{"id":"myid","width":20}}
`
	archive, err := readArchive(newMockReader(text))
	require.NoError(t, err)
	require.Equal(t, int32(20), archive.game.Width)
	require.Len(t, archive.frames, 0)
}

func TestReadArchiveErrors(t *testing.T) {
	tests := []string{
		"",
		"not json\n",
		`{"frame":{"turn":0}}` + "\n",
	}
	for _, text := range tests {
		_, err := readArchive(newMockReader(text))
		require.Error(t, err, text)
	}

	_, err := readArchive(&failReader{})
	require.Error(t, err)
}

func TestReadGameOpenError(t *testing.T) {
	defer restoreOpeners()
	openFileReader = func(directory, id string) (reader, error) {
		return &failReader{}, nil
	}
	_, _, err := ReadGame("unused", "myid")
	require.Error(t, err)
}
