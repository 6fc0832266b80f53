// Package client talks to a running lecturenotes server over HTTP.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"lecturenotes/internal/export"
	"lecturenotes/internal/lecture"
)

const defaultTimeout = 15 * time.Minute

// APIError is a non-2xx response with its decoded detail message.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server returned http %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (http %d)", e.Detail, e.StatusCode)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client is a thin wrapper over the lecture API.
type Client struct {
	base       *url.URL
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New parses baseURL ("http://127.0.0.1:8000" or "127.0.0.1:8000").
func New(baseURL string, opts ...Option) (*Client, error) {
	raw := strings.TrimSpace(baseURL)
	if raw == "" {
		return nil, errors.New("server url is empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	c := &Client{base: u, httpClient: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the server root.
func (c *Client) BaseURL() string { return c.base.String() }

func (c *Client) endpoint(parts ...string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.Join(parts, "/")
	return u.String()
}

func (c *Client) do(ctx context.Context, method, target string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, target string, out any) error {
	resp, err := c.do(ctx, method, target, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(data, &body) == nil && body.Detail != "" {
		apiErr.Detail = body.Detail
	} else {
		apiErr.Detail = strings.TrimSpace(string(data))
	}
	return apiErr
}

// Health returns nil when /health answers ok.
func (c *Client) Health(ctx context.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("health"), &body); err != nil {
		return err
	}
	if body.Status != "ok" {
		return fmt.Errorf("unexpected health status %q", body.Status)
	}
	return nil
}

// List returns every lecture, newest first.
func (c *Client) List(ctx context.Context) ([]lecture.Summary, error) {
	var out []lecture.Summary
	err := c.doJSON(ctx, http.MethodGet, c.endpoint("api", "lectures"), &out)
	return out, err
}

// Get fetches one lecture with transcript and notes.
func (c *Client) Get(ctx context.Context, id string) (*lecture.Lecture, error) {
	var out lecture.Lecture
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("api", "lectures", url.PathEscape(id)), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create uploads audio with its metadata. The body is streamed, so large
// recordings are never held in memory.
func (c *Client) Create(ctx context.Context, meta lecture.Meta, filename string, audio io.Reader) (*lecture.Lecture, error) {
	meta = meta.Normalize()
	if meta.Title == "" {
		return nil, errors.New("title is required")
	}
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeUpload(mw, meta, filename, audio))
	}()

	resp, err := c.do(ctx, http.MethodPost, c.endpoint("api", "lectures"), pr, mw.FormDataContentType())
	_ = pr.Close()
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var out lecture.Lecture
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func writeUpload(mw *multipart.Writer, meta lecture.Meta, filename string, audio io.Reader) error {
	fields := [][2]string{
		{"title", meta.Title},
		{"course", meta.Course},
		{"lecturer", meta.Lecturer},
		{"lecture_date", meta.LectureDate},
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return err
		}
	}
	fw, err := mw.CreateFormFile("audio_file", filepath.Base(filename))
	if err != nil {
		return err
	}
	if _, err := io.Copy(fw, audio); err != nil {
		return fmt.Errorf("stream audio: %w", err)
	}
	return mw.Close()
}

// GenerateNotes asks the server to (re)generate notes and waits for the result.
func (c *Client) GenerateNotes(ctx context.Context, id string) (lecture.NotesResponse, error) {
	var out lecture.NotesResponse
	err := c.doJSON(ctx, http.MethodPost, c.endpoint("api", "lectures", url.PathEscape(id), "generate-notes"), &out)
	return out, err
}

// Download is an exported notes document.
type Download struct {
	Name        string
	ContentType string
	Body        []byte
}

// Export downloads the notes in format (pdf, txt, md, html, ics).
func (c *Client) Export(ctx context.Context, id, format string) (*Download, error) {
	target := c.endpoint("api", "lectures", url.PathEscape(id), "export")
	if format != "" {
		target += "?format=" + url.QueryEscape(format)
	}
	resp, err := c.do(ctx, http.MethodGet, target, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	d := &Download{ContentType: resp.Header.Get("Content-Type"), Body: data}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		d.Name = params["filename"]
	}
	if d.Name == "" {
		d.Name = fallbackName(format)
	}
	return d, nil
}

// fallbackName names a download whose response carried no filename.
func fallbackName(format string) string {
	ext := strings.ToLower(strings.TrimSpace(format))
	if f, err := export.ParseFormat(format); err == nil {
		ext = string(f)
	}
	return "lecture_notes." + ext
}

// Delete removes the lecture and its audio.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, c.endpoint("api", "lectures", url.PathEscape(id)), nil)
}

// WaitFor polls the lecture every interval until done reports true.
func (c *Client) WaitFor(ctx context.Context, id string, interval time.Duration, done func(*lecture.Lecture) bool) (*lecture.Lecture, error) {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		l, err := c.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if done(l) {
			return l, nil
		}
		select {
		case <-ctx.Done():
			return l, ctx.Err()
		case <-ticker.C:
		}
	}
}
