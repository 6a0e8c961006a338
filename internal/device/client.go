package device

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Client is a thin HTTPS control-channel wrapper around a Tapo camera. It
// only does request plumbing; the download engine consumes the Querier,
// Streamer and FunctionCaller interfaces and never sees HTTP.
type Client struct {
	baseURL  string
	user     string
	password string
	hc       *http.Client
}

var (
	_ Querier        = (*Client)(nil)
	_ Streamer       = (*Client)(nil)
	_ FunctionCaller = (*Client)(nil)
)

// New creates a client for the camera at host. A bare host gets the https
// scheme; a full URL is used as-is, which lets tests point at a local server.
func New(host, user, password string) *Client {
	baseURL := host
	if !strings.Contains(host, "://") {
		baseURL = "https://" + host
	}

	// cameras ship self-signed certificates
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}

	return &Client{
		baseURL:  baseURL,
		user:     user,
		password: password,
		hc: &http.Client{
			Transport: transport,
			Timeout:   0,
		},
	}
}

type rpcRequest struct {
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

type rpcResponse struct {
	ErrorCode int             `json:"error_code"`
	Result    json.RawMessage `json:"result"`
}

func (c *Client) call(ctx context.Context, method string, params any, result any) error {
	payload, err := json.Marshal(rpcRequest{Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.user, c.password)

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach camera: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("camera rejected %s: HTTP %d", method, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if rpcResp.ErrorCode != 0 {
		return fmt.Errorf("camera returned error code %d for %s", rpcResp.ErrorCode, method)
	}

	if result != nil && len(rpcResp.Result) > 0 {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}

// Connect verifies the camera is reachable and the credentials are accepted.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.call(ctx, "getDeviceInfo", nil, nil); err != nil {
		return fmt.Errorf("failed to connect to camera: %w", err)
	}
	return nil
}

func (c *Client) RecordingDates(ctx context.Context) ([]map[string]any, error) {
	var pages []map[string]any
	if err := c.call(ctx, "getRecordingsList", nil, &pages); err != nil {
		return nil, err
	}
	return pages, nil
}

func (c *Client) Recordings(ctx context.Context, date string) ([]map[string]any, error) {
	var pages []map[string]any
	params := map[string]any{"date": date}
	if err := c.call(ctx, "getRecordings", params, &pages); err != nil {
		return nil, err
	}
	return pages, nil
}

func (c *Client) TimeCorrection(ctx context.Context) (int64, error) {
	var correction int64
	if err := c.call(ctx, "getTimeCorrection", nil, &correction); err != nil {
		return 0, err
	}
	return correction, nil
}

func (c *Client) ExecuteFunction(ctx context.Context, method string, params any) error {
	return c.call(ctx, method, params, nil)
}

// Stream fetches one recording's bytes into OutputDir/Filename. The body is
// copied in fixed-size chunks so progress events keep flowing on large clips.
func (c *Client) Stream(ctx context.Context, streamReq StreamRequest, onProgress func(ProgressEvent)) error {
	onProgress(ProgressEvent{CurrentAction: "Connecting"})

	payload, err := json.Marshal(map[string]any{
		"start_time":      streamReq.StartTime,
		"end_time":        streamReq.EndTime,
		"time_correction": streamReq.TimeCorrection,
		"window_size":     streamReq.WindowSize,
	})
	if err != nil {
		return fmt.Errorf("failed to encode stream request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/stream", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build stream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.user, c.password)

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("camera rejected stream request: HTTP %d", resp.StatusCode)
	}

	path := filepath.Join(streamReq.OutputDir, streamReq.Filename)
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer out.Close()

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}

	var written int64
	buf := make([]byte, 32*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return fmt.Errorf("failed to write %s: %w", path, writeErr)
			}
			written += int64(n)
			onProgress(ProgressEvent{CurrentAction: "Downloading", Progress: written, Total: total})
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("stream interrupted after %d bytes: %w", written, readErr)
		}
	}

	if err := out.Sync(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}
