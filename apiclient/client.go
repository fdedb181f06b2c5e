package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eyescreen/eyescreen/config"
	"github.com/google/uuid"
)

// ErrNoOrigin is returned when the endpoint is relative and the client was
// not told which origin the page is served from.
var ErrNoOrigin = errors.New("relative endpoint needs an origin")

// RequestIDHeader carries a per-request id to the backend logs.
const RequestIDHeader = "X-Request-ID"

type Client struct {
	endpoint config.Endpoint
	origin   string
	client   *http.Client
	timeout  *time.Duration
}

type Option func(*Client)

// WithOrigin sets the origin relative requests resolve against, the Go
// counterpart of the page's own location.
func WithOrigin(origin string) Option {
	return func(c *Client) { c.origin = strings.TrimRight(origin, "/") }
}

// WithHTTPClient replaces the default client. A nil hc keeps the default.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithTimeout overrides the per-request timeout (0 disables it). It is
// applied to a copy, so a client passed to WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = &d }
}

// New returns a client bound to endpoint with sensible timeouts.
func New(endpoint config.Endpoint, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
				IdleConnTimeout:       30 * time.Second,
				MaxIdleConns:          100,
				MaxConnsPerHost:       10,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	if c.timeout != nil {
		hc := *c.client
		hc.Timeout = *c.timeout
		c.client = &hc
	}
	return c
}

func (c *Client) Endpoint() config.Endpoint { return c.endpoint }

// URL returns the request URL for path. A relative endpoint without an
// origin yields the path unchanged.
func (c *Client) URL(path string) string {
	u := c.endpoint.Resolve(path)
	if c.endpoint.IsRelative() && c.origin != "" {
		return c.origin + u
	}
	return u
}

// ------------ Calls ------------

// ProcessSingle uploads a left/right eye pair and returns the report text.
func (c *Client) ProcessSingle(ctx context.Context, left, right Upload) (string, error) {
	body, ctype := multipartStream(func(mw *multipart.Writer) error {
		if err := writeUpload(mw, "left_eye", left); err != nil {
			return err
		}
		return writeUpload(mw, "right_eye", right)
	})
	req, err := c.newRequest(ctx, http.MethodPost, "/api/process-single", body)
	if err != nil {
		_ = body.Close()
		return "", err
	}
	req.Header.Set("Content-Type", ctype)

	var out envelope
	if err := c.doJSON(req, &out); err != nil {
		return "", err
	}
	return out.Result, nil
}

// ProcessBatch asks the backend to process a folder on its own filesystem.
func (c *Client) ProcessBatch(ctx context.Context, folderPath string) (BatchResult, error) {
	payload, err := json.Marshal(struct {
		FolderPath string `json:"folder_path"`
	}{folderPath})
	if err != nil {
		return BatchResult{}, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/process-batch", bytes.NewReader(payload))
	if err != nil {
		return BatchResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out envelope
	if err := c.doJSON(req, &out); err != nil {
		return BatchResult{}, err
	}
	return BatchResult{ExcelPath: out.ExcelPath, Processed: out.ProcessedCount}, nil
}

// ProcessBatchFiles uploads a whole folder in one request. Each part is keyed
// by the file's path relative to the folder's parent ("folder/sub/x.jpg").
// The body is streamed, so at most one file is open at a time when the
// uploads come from FileUpload.
func (c *Client) ProcessBatchFiles(ctx context.Context, folderName string, files []Upload) (BatchResult, error) {
	body, ctype := multipartStream(func(mw *multipart.Writer) error {
		if err := mw.WriteField("folder_path", folderName); err != nil {
			return err
		}
		for _, f := range files {
			if err := writeUpload(mw, f.Name, f); err != nil {
				return err
			}
		}
		return nil
	})
	req, err := c.newRequest(ctx, http.MethodPost, "/api/process-batch-files", body)
	if err != nil {
		_ = body.Close()
		return BatchResult{}, err
	}
	req.Header.Set("Content-Type", ctype)

	var out envelope
	if err := c.doJSON(req, &out); err != nil {
		return BatchResult{}, err
	}
	return BatchResult{ExcelPath: out.ExcelPath, Processed: out.ProcessedCount}, nil
}

// Download streams a result file produced by a batch run into w.
func (c *Client) Download(ctx context.Context, file string, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/download?"+url.Values{"file": {file}}.Encode(), nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, decodeError(resp)
	}
	return io.Copy(w, resp.Body)
}

// Chat sends one message to the assistant and returns its reply.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	payload, err := json.Marshal(struct {
		Message string `json:"message"`
	}{message})
	if err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var out envelope
	if err := c.doJSON(req, &out); err != nil {
		return "", err
	}
	return out.Reply, nil
}

// ------------ internals ------------

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if c.endpoint.IsRelative() && c.origin == "" {
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrNoOrigin)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(RequestIDHeader, uuid.NewString())
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) doJSON(req *http.Request, out *envelope) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	if !out.Success {
		return &APIError{Status: resp.StatusCode, Message: out.message()}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var out envelope
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &out); err == nil && out.message() != "" {
		return &APIError{Status: resp.StatusCode, Message: out.message()}
	}
	return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
}

// multipartStream returns a body that fill writes into as the transport
// reads it. A fill error fails the request. Closing the reader stops fill.
func multipartStream(fill func(*multipart.Writer) error) (*io.PipeReader, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	ctype := mw.FormDataContentType()
	go func() {
		err := fill(mw)
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
	}()
	return pr, ctype
}

func writeUpload(mw *multipart.Writer, field string, u Upload) error {
	body := u.Body
	if u.Open != nil {
		rc, err := u.Open()
		if err != nil {
			return fmt.Errorf("upload %s: %w", u.Name, err)
		}
		defer rc.Close()
		body = rc
	}
	part, err := mw.CreateFormFile(field, u.Name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, body); err != nil {
		return fmt.Errorf("upload %s: %w", u.Name, err)
	}
	return nil
}
