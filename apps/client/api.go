package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// apiClient talks to the LMS API. The bearer token of the last login is kept in tokenPath.
type apiClient struct {
	baseURL   string
	tokenPath string
	http      *http.Client
}

func newAPIClient(baseURL, tokenPath string) *apiClient {
	return &apiClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		tokenPath: tokenPath,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

// response is either an object carrying a message or a list of rows.
type response struct {
	Status  int
	Message string
	Token   string
	Rows    []map[string]interface{}
	IsList  bool
}

func (c *apiClient) token() string {
	data, err := os.ReadFile(c.tokenPath)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (c *apiClient) do(method, path string, payload interface{}) (response, error) {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return response{}, errors.Wrap(err, "encoding request")
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, &body)
	if err != nil {
		return response{}, errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return response{}, errors.Wrapf(err, "%s %s", method, path)
	}
	defer res.Body.Close()

	var raw json.RawMessage
	if err = json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return response{}, errors.Wrapf(err, "decoding %s %s (status %d)", method, path, res.StatusCode)
	}
	resp := response{Status: res.StatusCode}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		resp.IsList = true
		err = json.Unmarshal(raw, &resp.Rows)
	} else {
		var obj struct {
			Message string `json:"message"`
			Token   string `json:"token"`
		}
		err = json.Unmarshal(raw, &obj)
		resp.Message, resp.Token = obj.Message, obj.Token
	}
	if err != nil {
		return response{}, errors.Wrap(err, "decoding response")
	}
	return resp, nil
}

func (c *apiClient) login(uname, pwd string) (response, error) {
	resp, err := c.do(http.MethodPost, "/login", map[string]string{"username": uname, "password": pwd})
	if err != nil {
		return resp, err
	}
	if resp.Status == http.StatusOK && resp.Token != "" {
		if err = os.WriteFile(c.tokenPath, []byte(resp.Token), 0o600); err != nil {
			return resp, errors.Wrap(err, "saving token")
		}
	}
	return resp, nil
}

func (c *apiClient) logout() (response, error) {
	resp, err := c.do(http.MethodPut, "/logout", nil)
	if err != nil {
		return resp, err
	}
	if err = os.Remove(c.tokenPath); err != nil && !os.IsNotExist(err) {
		return resp, errors.Wrap(err, "removing token")
	}
	return resp, nil
}

func (c *apiClient) updateUser(id int, fields map[string]string) (response, error) {
	return c.do(http.MethodPut, fmt.Sprintf("/users/%d", id), fields)
}
