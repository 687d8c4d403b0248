package api

import (
	"net/http"
	"time"

	"github.com/battlesnakeio/snake/rules"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	log "github.com/sirupsen/logrus"
)

const (
	socketPageSize     = 100
	socketWriteTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// framesSocket streams every frame of a game, stored ones first. For a
// running game live frames follow until the game stops.
func framesSocket(w http.ResponseWriter, r *http.Request, ps httprouter.Params, c Controller) {
	id := ps.ByName("id")
	if _, err := c.Status(r.Context(), id); err != nil {
		writeError(w, errorStatus(err), err)
		return
	}

	// Subscribing before reading the stored frames means nothing produced
	// in between is missed. Live frames can still be dropped for a client
	// that reads slower than the game ticks.
	live, unsubscribe, err := c.Subscribe(id)
	if err != nil {
		live, unsubscribe = nil, func() {}
	}
	defer unsubscribe()

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).WithField("GameID", id).Error("unable to upgrade connection")
		return
	}
	defer ws.Close()

	logger := log.WithField("GameID", id)
	go func() {
		// Clients don't send anything, reading only notices them leaving.
		for {
			if _, _, err := ws.NextReader(); err != nil {
				unsubscribe()
				return
			}
		}
	}()

	last := int32(-1)
	send := func(f *rules.GameFrame) bool {
		if f.Turn <= last {
			return true
		}
		ws.SetWriteDeadline(time.Now().Add(socketWriteTimeout))
		if err := ws.WriteJSON(f); err != nil {
			logger.WithError(err).Info("socket closed")
			return false
		}
		last = f.Turn
		return true
	}

	for offset := 0; ; {
		frames, err := c.Frames(r.Context(), id, socketPageSize, offset)
		if err != nil {
			logger.WithError(err).Error("unable to list frames")
			return
		}
		for _, f := range frames {
			if !send(f) {
				return
			}
		}
		if len(frames) < socketPageSize {
			break
		}
		offset += len(frames)
	}

	if live != nil {
		for f := range live {
			if !send(f) {
				return
			}
		}
	}

	ws.SetWriteDeadline(time.Now().Add(socketWriteTimeout))
	ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over"))
}
