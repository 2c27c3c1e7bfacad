package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/restaurant-portal/utils"
)

const adminHeader = "X-Admin-Request"

// Client talks to the remote restaurant API that owns orders, events and
// reservations. Every call forwards the caller's bearer token. Requests are
// never retried; the transport's own defaults are the only timeouts.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logrus.Entry
}

// NewClient builds a client for baseURL. A nil httpClient uses a plain
// http.Client.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: httpClient,
		log:        utils.Component("apiclient"),
	}
}

type request struct {
	method      string
	path        string
	token       string
	body        io.Reader
	contentType string
	admin       bool
}

// envelope is the store's usual wrapper; some endpoints answer bare objects.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return nil, errors.Wrapf(err, "apiclient: build %s %s", r.method, r.path)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	if r.admin {
		req.Header.Set(adminHeader, "true")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).Warnf("%s %s failed", r.method, r.path)
		return nil, errors.Wrapf(err, "apiclient: %s %s", r.method, r.path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "apiclient: read %s %s", r.method, r.path)
	}

	c.log.WithFields(logrus.Fields{
		"method": r.method,
		"path":   r.path,
		"status": resp.StatusCode,
	}).Debug("store responded")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(r.method, r.path, resp.StatusCode, body)
	}

	var env envelope
	if json.Unmarshal(body, &env) == nil && env.Success != nil && !*env.Success {
		return nil, newAPIError(r.method, r.path, resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, admin bool, in interface{}) ([]byte, error) {
	var body io.Reader
	contentType := ""
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("apiclient: marshal %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}
	return c.do(ctx, request{
		method:      method,
		path:        path,
		token:       token,
		body:        body,
		contentType: contentType,
		admin:       admin,
	})
}

// decode unwraps an optional {data: ...} envelope and then an optional key
// inside it, e.g. {data: {order: {...}}} or a bare {...}.
func decode(body []byte, key string, out interface{}) error {
	payload := json.RawMessage(body)

	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
		payload = env.Data
	}

	if key != "" {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(payload, &inner); err == nil {
			if v, ok := inner[key]; ok {
				payload = v
			}
		}
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("apiclient: decode response: %w", err)
	}
	return nil
}
