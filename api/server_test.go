package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/battlesnakeio/snake/config"
	"github.com/battlesnakeio/snake/controller"
	"github.com/battlesnakeio/snake/rules"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func createAPIServer(t *testing.T) (*Server, *controller.Controller) {
	cfg := config.Default()
	cfg.TickInterval = time.Millisecond
	cfg.DirectionRate = 1
	cfg.DirectionBurst = 1
	ctrl := controller.New(controller.InMemStore(), cfg)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		ctrl.Shutdown(ctx)
	})
	return New(":1234", ctrl), ctrl
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != "" {
		buf = bytes.NewBufferString(body)
	} else {
		buf = &bytes.Buffer{}
	}
	req, _ := http.NewRequest(method, path, buf)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func mustCreate(t *testing.T, s *Server, body string) string {
	rr := do(s, "POST", "/games", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := &CreateResponse{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func requireError(t *testing.T, rr *httptest.ResponseRecorder, code int) {
	require.Equal(t, code, rr.Code, rr.Body.String())
	body := map[string]string{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	require.NotEmpty(t, body["error"])
}

func TestCreate(t *testing.T) {
	s, _ := createAPIServer(t)

	mustCreate(t, s, "{}")
	mustCreate(t, s, "")
	mustCreate(t, s, `{"width": 40, "height": 40, "autopilot": true}`)

	requireError(t, do(s, "POST", "/games", "{not json"), http.StatusBadRequest)
	requireError(t, do(s, "POST", "/games", `{"width": -1}`), http.StatusBadRequest)
}

func TestStatus(t *testing.T) {
	s, _ := createAPIServer(t)
	id := mustCreate(t, s, "{}")

	rr := do(s, "GET", "/games/"+id, "")
	require.Equal(t, http.StatusOK, rr.Code)
	status := &controller.GameStatus{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(status))
	require.Equal(t, id, status.Game.ID)
	require.Equal(t, rules.GameStatusStopped, status.Game.Status)
	require.Equal(t, int32(0), status.LastFrame.Turn)
	require.Len(t, status.LastFrame.Body, 5)

	requireError(t, do(s, "GET", "/games/missing", ""), http.StatusNotFound)
}

func TestStartStop(t *testing.T) {
	s, _ := createAPIServer(t)
	id := mustCreate(t, s, `{"tick_interval": 60000}`)

	requireError(t, do(s, "POST", "/games/missing/start", ""), http.StatusNotFound)
	requireError(t, do(s, "POST", "/games/"+id+"/stop", ""), http.StatusConflict)

	rr := do(s, "POST", "/games/"+id+"/start", "")
	require.Equal(t, http.StatusOK, rr.Code)
	requireError(t, do(s, "POST", "/games/"+id+"/start", ""), http.StatusConflict)

	rr = do(s, "POST", "/games/"+id+"/stop", "")
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestDirection(t *testing.T) {
	s, _ := createAPIServer(t)
	id := mustCreate(t, s, `{"tick_interval": 60000}`)
	path := "/games/" + id + "/direction"

	requireError(t, do(s, "POST", path, `{"direction": "up"}`), http.StatusConflict)
	requireError(t, do(s, "POST", "/games/missing/direction", `{"direction": "up"}`), http.StatusNotFound)

	require.Equal(t, http.StatusOK, do(s, "POST", "/games/"+id+"/start", "").Code)
	requireError(t, do(s, "POST", path, `{"direction": "sideways"}`), http.StatusBadRequest)
	requireError(t, do(s, "POST", path, `{"direction":`), http.StatusBadRequest)

	rr := do(s, "POST", path, `{"direction": "up"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	requireError(t, do(s, "POST", path, `{"direction": "down"}`), http.StatusTooManyRequests)
}

func TestFrames(t *testing.T) {
	s, _ := createAPIServer(t)
	id := mustCreate(t, s, "{}")

	rr := do(s, "GET", "/games/"+id+"/frames?limit=10&offset=-1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	resp := &FramesResponse{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(resp))
	require.Equal(t, 1, resp.Count)
	require.Equal(t, int32(0), resp.Frames[0].Turn)

	rr = do(s, "GET", "/games/"+id+"/frames?offset=5", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"Frames":[]`)

	requireError(t, do(s, "GET", "/games/"+id+"/frames?limit=ten", ""), http.StatusBadRequest)
	requireError(t, do(s, "GET", "/games/"+id+"/frames?offset=x", ""), http.StatusBadRequest)
	requireError(t, do(s, "GET", "/games/missing/frames", ""), http.StatusNotFound)
}

func TestCORS(t *testing.T) {
	s, _ := createAPIServer(t)

	req, _ := http.NewRequest("OPTIONS", "/games", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	require.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func dialSocket(t *testing.T, srv *httptest.Server, id string) *websocket.Conn {
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/socket/" + id
	ws, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	return ws
}

func readFrames(t *testing.T, ws *websocket.Conn) []*rules.GameFrame {
	var frames []*rules.GameFrame
	for {
		ws.SetReadDeadline(time.Now().Add(5 * time.Second))
		f := &rules.GameFrame{}
		if err := ws.ReadJSON(f); err != nil {
			require.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), err.Error())
			return frames
		}
		frames = append(frames, f)
	}
}

func TestSocketLiveGame(t *testing.T) {
	s, _ := createAPIServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	id := mustCreate(t, s, `{"tick_interval": 5}`)
	require.Equal(t, http.StatusOK, do(s, "POST", "/games/"+id+"/start", "").Code)

	ws := dialSocket(t, srv, id)
	defer ws.Close()

	// The snake runs into the left wall.
	frames := readFrames(t, ws)
	require.Len(t, frames, 18)
	for i, f := range frames {
		require.Equal(t, int32(i), f.Turn)
	}
	require.False(t, frames[17].Alive)
}

func TestSocketStoppedGame(t *testing.T) {
	s, _ := createAPIServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	id := mustCreate(t, s, "{}")

	ws := dialSocket(t, srv, id)
	defer ws.Close()
	frames := readFrames(t, ws)
	require.Len(t, frames, 1)
	require.Equal(t, int32(0), frames[0].Turn)
}

func TestSocketMissingGame(t *testing.T) {
	s, _ := createAPIServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/socket/missing"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.Error(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
