package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/battlesnakeio/snake/api"
	"github.com/battlesnakeio/snake/controller"
	"github.com/battlesnakeio/snake/rules"
	"github.com/pkg/errors"
)

type client struct {
	apiURL string
	client *http.Client
}

func (c *client) do(method, path string, in, out interface{}) error {
	body := &bytes.Buffer{}
	if in != nil {
		if err := json.NewEncoder(body).Encode(in); err != nil {
			return err
		}
	}
	req, err := http.NewRequest(method, c.apiURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		e := map[string]string{}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, e["error"])
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *client) beginGame(cr *rules.CreateRequest) (string, error) {
	created := &api.CreateResponse{}
	if err := c.do(http.MethodPost, "/games", cr, created); err != nil {
		return "", errors.Wrap(err, "create")
	}
	if err := c.do(http.MethodPost, "/games/"+created.ID+"/start", nil, nil); err != nil {
		return "", errors.Wrap(err, "start")
	}
	return created.ID, nil
}

func (c *client) gameStatus(gameID string) (*controller.GameStatus, *api.FramesResponse, error) {
	st := &controller.GameStatus{}
	if err := c.do(http.MethodGet, "/games/"+gameID, nil, st); err != nil {
		return nil, nil, errors.Wrap(err, "status")
	}

	frames := &api.FramesResponse{}
	for {
		page := &api.FramesResponse{}
		path := fmt.Sprintf("/games/%s/frames?offset=%d&limit=%d", gameID, frames.Count, 100)
		if err := c.do(http.MethodGet, path, nil, page); err != nil {
			return nil, nil, errors.Wrap(err, "frames")
		}
		frames.Frames = append(frames.Frames, page.Frames...)
		frames.Count += page.Count
		if page.Count < 100 {
			break
		}
	}
	return st, frames, nil
}
