package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
}

// call sends in as JSON (when set) and decodes the response into out (when
// set). Non 200 responses become errors carrying the server message.
func call(method, path string, in, out interface{}) error {
	var body bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&body).Encode(in); err != nil {
			return errors.Wrap(err, "unable to marshal request")
		}
	}
	req, err := http.NewRequest(method, fmt.Sprintf("%s%s", apiAddr, path), &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "error while calling %s", path)
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "unable to read response body")
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := struct {
			Error string `json:"error"`
		}{}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return errors.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return errors.Errorf("%s: %s", resp.Status, string(data))
	}
	if out == nil {
		return nil
	}
	return errors.Wrap(json.Unmarshal(data, out), "unable to unmarshal response")
}
