// Package api exposes the controller over HTTP. Games are created, started
// and steered with JSON requests, frames are streamed over a websocket.
package api

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/battlesnakeio/snake/controller"
	"github.com/battlesnakeio/snake/rules"
	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
)

// Controller is what the API needs from the game controller.
type Controller interface {
	Create(ctx context.Context, req *rules.CreateRequest) (*rules.Game, error)
	Start(ctx context.Context, id string) error
	Stop(ctx context.Context, id string) error
	Status(ctx context.Context, id string) (*controller.GameStatus, error)
	Direction(ctx context.Context, id, direction string) error
	Frames(ctx context.Context, id string, limit, offset int) ([]*rules.GameFrame, error)
	Subscribe(id string) (<-chan *rules.GameFrame, func(), error)
}

// Server is the HTTP API server.
type Server struct {
	hs *http.Server
}

// CreateResponse is returned when a game was created.
type CreateResponse struct {
	ID string
}

// DirectionRequest changes the heading of a running game.
type DirectionRequest struct {
	Direction string `json:"direction"`
}

// FramesResponse is a page of frames.
type FramesResponse struct {
	Frames []*rules.GameFrame
	Count  int
}

type ctrlHandle func(http.ResponseWriter, *http.Request, httprouter.Params, Controller)

func newClientHandle(c Controller, handle ctrlHandle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		handle(w, r, ps, c)
	}
}

// New creates a server listening on addr once started.
func New(addr string, c Controller) *Server {
	router := httprouter.New()
	router.POST("/games", newClientHandle(c, createGame))
	router.POST("/games/:id/start", newClientHandle(c, startGame))
	router.POST("/games/:id/stop", newClientHandle(c, stopGame))
	router.POST("/games/:id/direction", newClientHandle(c, changeDirection))
	router.GET("/games/:id", newClientHandle(c, getStatus))
	router.GET("/games/:id/frames", newClientHandle(c, getFrames))
	router.GET("/socket/:id", newClientHandle(c, framesSocket))

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"*"},
	}).Handler(router)
	return &Server{
		hs: &http.Server{
			Addr:    addr,
			Handler: loggingHandler(handler),
		},
	}
}

// Handler returns the root handler of the server.
func (s *Server) Handler() http.Handler { return s.hs.Handler }

// ListenAndServe serves requests until Shutdown is called.
func (s *Server) ListenAndServe() error {
	log.Infof("snake api listening on %s", s.hs.Addr)
	err := s.hs.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.hs.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets websocket upgrades through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijacking not supported")
	}
	return h.Hijack()
}

func loggingHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.WithFields(log.Fields{
			"Method":   r.Method,
			"Path":     r.URL.Path,
			"Status":   rec.status,
			"Duration": time.Since(start),
		}).Info("request")
	})
}

func errorStatus(err error) int {
	switch errors.Cause(err) {
	case controller.ErrNotFound:
		return http.StatusNotFound
	case rules.ErrInvalidDirection, rules.ErrInvalidGame:
		return http.StatusBadRequest
	case controller.ErrIsRunning, controller.ErrFinished, controller.ErrNotRunning:
		return http.StatusConflict
	case controller.ErrRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("unable to write response")
	}
}

// decodeBody reads a JSON body into v. An empty body leaves v as is.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == io.EOF {
		return nil
	}
	return err
}

func createGame(w http.ResponseWriter, r *http.Request, _ httprouter.Params, c Controller) {
	req := &rules.CreateRequest{}
	if err := decodeBody(r, req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid create request"))
		return
	}
	game, err := c.Create(r.Context(), req)
	if err != nil {
		writeError(w, errorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, &CreateResponse{ID: game.ID})
}

func startGame(w http.ResponseWriter, r *http.Request, ps httprouter.Params, c Controller) {
	if err := c.Start(r.Context(), ps.ByName("id")); err != nil {
		writeError(w, errorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func stopGame(w http.ResponseWriter, r *http.Request, ps httprouter.Params, c Controller) {
	if err := c.Stop(r.Context(), ps.ByName("id")); err != nil {
		writeError(w, errorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func changeDirection(w http.ResponseWriter, r *http.Request, ps httprouter.Params, c Controller) {
	req := &DirectionRequest{}
	if err := decodeBody(r, req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid direction request"))
		return
	}
	if err := c.Direction(r.Context(), ps.ByName("id"), req.Direction); err != nil {
		writeError(w, errorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func getStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params, c Controller) {
	status, err := c.Status(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(w, errorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", name)
	}
	return n, nil
}

func getFrames(w http.ResponseWriter, r *http.Request, ps httprouter.Params, c Controller) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	frames, err := c.Frames(r.Context(), ps.ByName("id"), limit, offset)
	if err != nil {
		writeError(w, errorStatus(err), err)
		return
	}
	if frames == nil {
		frames = []*rules.GameFrame{}
	}
	writeJSON(w, http.StatusOK, &FramesResponse{Frames: frames, Count: len(frames)})
}
