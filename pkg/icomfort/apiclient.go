package icomfort

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultURL is the Lennox iComfort service. Other brands use the same API at a different address.
const DefaultURL = "https://services.myicomfort.com/DBAcessService.svc/"

// ErrUnknownService is returned by ServiceURL for a cloud service it doesn't know.
var ErrUnknownService = errors.New("unknown cloud service")

var serviceURLs = map[string]string{
	"lennox":  DefaultURL,
	"airease": "https://services.airease.com/DBAcessService.svc/",
}

// ServiceURL returns the URL of a named cloud service ("lennox" or "airease", case-insensitive).
// An empty name selects Lennox.
func ServiceURL(service string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(service))
	if name == "" {
		return DefaultURL, nil
	}
	if u, ok := serviceURLs[name]; ok {
		return u, nil
	}
	return "", fmt.Errorf("%q: %w", service, ErrUnknownService)
}

// call performs an authenticated request against the service. If request is not nil, it is sent as the JSON body.
// If response is not nil, the JSON response body is decoded into it.
func (c *Client) call(ctx context.Context, op string, method string, endpoint string, query url.Values, request any, response any) error {
	start := time.Now()
	err := c.do(ctx, method, endpoint, query, request, response)
	if err != nil {
		var remoteErr *RemoteError
		if !errors.As(err, &remoteErr) {
			remoteErr = &RemoteError{Err: err}
		}
		remoteErr.Op = op
		c.logger.Debug("call failed", slog.String("op", op), slog.String("endpoint", endpoint), slog.Any("err", err))
		return remoteErr
	}
	c.logger.Debug("call completed", slog.String("op", op), slog.String("endpoint", endpoint), slog.Duration("duration", time.Since(start)))
	return nil
}

func (c *Client) do(ctx context.Context, method string, endpoint string, query url.Values, request any, response any) error {
	target := c.baseURL.ResolveReference(&url.URL{Path: endpoint, RawQuery: query.Encode()})

	var body io.Reader
	if request != nil {
		payload, err := json.Marshal(request)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	if request != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &RemoteError{StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
	if response == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(response)
}
