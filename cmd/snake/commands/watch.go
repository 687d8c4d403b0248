package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/battlesnakeio/snake/rules"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	watchCmd.Flags().StringVarP(&gameID, "game-id", "g", "", "the game id of the game to watch")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "streams the frames of a game from the snake server",
	Args: func(c *cobra.Command, args []string) error {
		if len(gameID) == 0 {
			return errors.New("game id is required")
		}
		return nil
	},
	RunE: func(*cobra.Command, []string) error {
		frames, err := watchGame(gameID, logFrame)
		if err != nil {
			return err
		}
		last := frames.last()
		if last == nil {
			return nil
		}
		log.WithFields(log.Fields{
			"frames":    frames.count(),
			"preyEaten": frames.preyEaten(),
			"score":     last.Score,
			"alive":     last.Alive,
			"cause":     last.DeathCause,
		}).Info("stream ended")
		return nil
	},
}

func logFrame(f *rules.GameFrame) {
	head, _ := f.Head()
	entry := log.WithFields(log.Fields{
		"turn":      f.Turn,
		"head":      head,
		"direction": f.Direction,
		"prey":      f.Prey,
		"score":     f.Score,
	})
	switch {
	case !f.Alive:
		entry.WithField("cause", f.DeathCause).Info("snake died")
	case f.Ate:
		entry.Info("snake ate")
	default:
		entry.Debug("frame")
	}
}

// watchGame reads frames off the game socket until the server closes it.
func watchGame(id string, onFrame func(*rules.GameFrame)) (*frameHolder, error) {
	u := url.URL{Scheme: "ws", Host: strings.Replace(apiAddr, "http://", "", 1), Path: fmt.Sprintf("/socket/%s", id)}
	log.WithField("url", u.String()).Debug("connecting")

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	frames := &frameHolder{}
	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return frames, nil
			}
			return frames, err
		}

		switch mt {
		case websocket.TextMessage:
			frame := &rules.GameFrame{}
			if err := json.Unmarshal(message, frame); err != nil {
				return frames, err
			}
			frames.append(frame)
			onFrame(frame)
		default:
			log.WithField("type", mt).Warn("unhandled message type")
		}
	}
}
