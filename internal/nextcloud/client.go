// Package nextcloud implements a WebDAV client for Nextcloud-style file
// storage: upload, directory creation, listing and deletion against the
// /remote.php/dav/files/{user} tree.
package nextcloud

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cloudpitch/davbridge/internal/logging"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a whole request/response cycle when Config.Timeout
// is left unset.
const DefaultTimeout = 30 * time.Second

const davPathPrefix = "/remote.php/dav/files/"

// Config holds the connection settings for a Client. It is copied at
// construction and never mutated afterwards.
type Config struct {
	// BaseURL is the root of the Nextcloud instance, e.g.
	// "https://cloud.example.com". A trailing slash is tolerated.
	BaseURL  string
	Username string
	// Password should be an app token rather than the account password.
	Password string

	// Timeout caps each operation end to end. Zero means DefaultTimeout.
	Timeout time.Duration

	// UseEnvProxy restores proxy resolution from the environment. By
	// default the client connects directly, matching deployments where a
	// stray HTTP_PROXY breaks the WebDAV endpoint.
	UseEnvProxy bool
}

// Entry describes one resource in a directory listing.
type Entry struct {
	Name        string
	Path        string
	IsDir       bool
	Size        int64
	ModTime     time.Time
	ETag        string
	ContentType string
}

// Client issues authenticated WebDAV requests. It is safe for concurrent
// use; all state is set at construction.
type Client struct {
	baseURL  string
	username string
	password string
	davPath  string
	httpc    *http.Client
}

// New validates cfg and builds a Client. A missing or malformed BaseURL
// yields an error satisfying errors.Is(err, ErrInvalidConfig).
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL is empty", ErrInvalidConfig)
	}
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return nil, fmt.Errorf("%w: base URL %q is not absolute", ErrInvalidConfig, cfg.BaseURL)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	if cfg.UseEnvProxy {
		transport.Proxy = http.ProxyFromEnvironment
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		davPath:  davPathPrefix + cfg.Username,
		httpc: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}, nil
}

// BuildURL returns the full WebDAV URL for a remote path. Each path segment
// is percent-encoded; slashes are preserved.
func (c *Client) BuildURL(remotePath string) string {
	return c.baseURL + c.davPath + encodePath(remotePath)
}

func encodePath(remotePath string) string {
	trimmed := strings.Trim(remotePath, "/")
	if trimmed == "" {
		return "/"
	}
	segments := strings.Split(trimmed, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return "/" + strings.Join(segments, "/")
}

// UploadFile uploads a local file to remotePath, overwriting any existing
// resource. A missing local file satisfies errors.Is(err, fs.ErrNotExist).
// The content type is sniffed from the file body.
func (c *Client) UploadFile(ctx context.Context, localPath, remotePath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open local file: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat local file: %w", err)
	}

	contentType := ""
	if mt, err := mimetype.DetectReader(f); err == nil {
		contentType = mt.String()
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind local file: %w", err)
	}

	return c.Upload(ctx, remotePath, f, info.Size(), contentType)
}

// Upload streams body to remotePath via PUT. size may be negative when
// unknown. An empty contentType falls back to application/octet-stream.
func (c *Client) Upload(ctx context.Context, remotePath string, body io.Reader, size int64, contentType string) error {
	req, err := c.newRequest(ctx, http.MethodPut, remotePath, body)
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	if size >= 0 {
		req.ContentLength = size
	}

	resp, err := c.send(req, remotePath)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newRequestError(http.MethodPut, remotePath, resp)
	}
	drain(resp)
	return nil
}

// CreateDirectory issues MKCOL for remotePath. A 405 from the server means
// the collection already exists and is treated as success. Parent
// collections are not created; callers create them outermost first.
func (c *Client) CreateDirectory(ctx context.Context, remotePath string) error {
	req, err := c.newRequest(ctx, "MKCOL", remotePath, nil)
	if err != nil {
		return err
	}
	resp, err := c.send(req, remotePath)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusMethodNotAllowed ||
		(resp.StatusCode >= 200 && resp.StatusCode <= 299) {
		drain(resp)
		return nil
	}
	return newRequestError("MKCOL", remotePath, resp)
}

// ListDirectory fetches the immediate children of remotePath via PROPFIND
// Depth 1. The entry for the directory itself is filtered out; the rest
// keep the server's document order.
func (c *Client) ListDirectory(ctx context.Context, remotePath string) ([]Entry, error) {
	propfindBody := "<d:propfind xmlns:d='DAV:'><d:allprop/></d:propfind>"
	req, err := c.newRequest(ctx, "PROPFIND", remotePath, strings.NewReader(propfindBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/xml;charset=UTF-8")
	req.Header.Set("Accept", "application/xml,text/xml")
	req.Header.Set("Depth", "1")

	resp, err := c.send(req, remotePath)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusMultiStatus {
		return nil, newRequestError("PROPFIND", remotePath, resp)
	}

	data, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read PROPFIND response: %w", err)
	}

	ms, err := parseMultistatus(data)
	if err != nil {
		return nil, err
	}
	return c.entriesFrom(ms, remotePath), nil
}

// entriesFrom maps a multistatus body onto Entry values, skipping the
// requested collection's own response element.
func (c *Client) entriesFrom(ms *multistatus, remotePath string) []Entry {
	selfPath := c.davPath
	if trimmed := strings.Trim(remotePath, "/"); trimmed != "" {
		selfPath += "/" + trimmed
	}

	entries := make([]Entry, 0, len(ms.Responses))
	for _, r := range ms.Responses {
		href := r.Href
		if decoded, err := url.PathUnescape(href); err == nil {
			href = decoded
		}
		href = strings.TrimSuffix(href, "/")
		if href == "" || href == selfPath {
			continue
		}

		relPath := href
		if strings.HasPrefix(href, c.davPath) {
			relPath = href[len(c.davPath):]
		}
		name := href[strings.LastIndex(href, "/")+1:]

		entries = append(entries, Entry{
			Name:        name,
			Path:        relPath,
			IsDir:       r.isCollection(),
			Size:        r.ContentLength,
			ModTime:     r.LastModified.Time,
			ETag:        strings.Trim(r.ETag, `"`),
			ContentType: r.ContentType,
		})
	}
	return entries
}

// Delete removes the resource at remotePath. It returns true when the
// server deleted it and false when the resource was already absent (404).
// Directories are deleted recursively by the server.
func (c *Client) Delete(ctx context.Context, remotePath string) (bool, error) {
	req, err := c.newRequest(ctx, http.MethodDelete, remotePath, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.send(req, remotePath)
	if err != nil {
		return false, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		drain(resp)
		return false, nil
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		drain(resp)
		return true, nil
	default:
		return false, newRequestError(http.MethodDelete, remotePath, resp)
	}
}

func (c *Client) newRequest(ctx context.Context, method, remotePath string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BuildURL(remotePath), body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.SetBasicAuth(c.username, c.password)
	return req, nil
}

func (c *Client) send(req *http.Request, remotePath string) (*http.Response, error) {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, remotePath, err)
	}
	logging.L().Debug("webdav request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
	)
	return resp, nil
}

func newRequestError(method, remotePath string, resp *http.Response) *RequestError {
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return &RequestError{
		Method:     method,
		Path:       remotePath,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
