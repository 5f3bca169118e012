// Package client is a small REST client for a running ulog-analysis server,
// meant for scripting against a local instance.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/omerfarukorc/ulog-analysis/explorer"
	"github.com/omerfarukorc/ulog-analysis/store"
)

type (
	// FileEntry is one stored log as reported by the server, catalog
	// metadata included when the file has been indexed.
	FileEntry struct {
		store.FileInfo
		DurationS  float64 `json:"duration_s,omitempty"`
		TopicCount int     `json:"topic_count,omitempty"`
		Vehicle    string  `json:"vehicle,omitempty"`
	}

	Client struct {
		baseURL string
		httpc   *http.Client
		retry   time.Duration
	}
)

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		retry:   10 * time.Second,
	}
}

// ListFiles returns the stored logs.
func (c *Client) ListFiles(ctx context.Context) ([]FileEntry, error) {
	var resp struct {
		Files []FileEntry `json:"files"`
	}
	if err := c.getJSON(ctx, "/api/files", &resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

// Upload sends a local .ulg file to the server.
func (c *Client) Upload(ctx context.Context, path string) (store.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return store.FileInfo{}, fmt.Errorf("failed to open %s: %v", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return store.FileInfo{}, fmt.Errorf("failed to build multipart body: %v", err)
	}
	if _, err := io.Copy(fw, f); err != nil {
		return store.FileInfo{}, fmt.Errorf("failed to read %s: %v", path, err)
	}
	if err := mw.Close(); err != nil {
		return store.FileInfo{}, fmt.Errorf("failed to finish multipart body: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/files", &buf)
	if err != nil {
		return store.FileInfo{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var info store.FileInfo
	if err := c.do(req, &info); err != nil {
		return store.FileInfo{}, err
	}
	return info, nil
}

// Info fetches the vehicle summary of one log.
func (c *Client) Info(ctx context.Context, name string) (*explorer.VehicleInfo, error) {
	var info explorer.VehicleInfo
	if err := c.getJSON(ctx, "/api/files/"+name+"/info", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Topics lists the topic labels of one log.
func (c *Client) Topics(ctx context.Context, name string) ([]string, error) {
	var resp struct {
		Topics []string `json:"topics"`
	}
	if err := c.getJSON(ctx, "/api/files/"+name+"/topics", &resp); err != nil {
		return nil, err
	}
	return resp.Topics, nil
}

// Fields lists the fields of one topic.
func (c *Client) Fields(ctx context.Context, name, topic string) ([]string, error) {
	var resp struct {
		Fields []string `json:"fields"`
	}
	if err := c.getJSON(ctx, "/api/files/"+name+"/topics/"+topic+"/fields", &resp); err != nil {
		return nil, err
	}
	return resp.Fields, nil
}

// Series fetches one downsampled time series. maxPoints <= 0 keeps the
// server default.
func (c *Client) Series(ctx context.Context, name, topic, field string, maxPoints int) (*explorer.Series, error) {
	path := "/api/files/" + name + "/series?topic=" + topic + "&field=" + field
	if maxPoints > 0 {
		path += "&max=" + strconv.Itoa(maxPoints)
	}
	var series explorer.Series
	if err := c.getJSON(ctx, path, &series); err != nil {
		return nil, err
	}
	return &series, nil
}

// Health reports whether the server answers its health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.getJSON(ctx, "/healthz", nil)
}

// getJSON retries transient failures with exponential backoff; 4xx responses
// are not retried.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.retry

	return backoff.Retry(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := c.do(req, out); err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.Status < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		return nil
	}, backoff.WithContext(bo, ctx))
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request %s failed: %v", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var envelope struct {
			Error string `json:"error"`
		}
		msg := resp.Status
		if json.NewDecoder(resp.Body).Decode(&envelope) == nil && envelope.Error != "" {
			msg = envelope.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response of %s: %v", req.URL.Path, err)
	}
	return nil
}
