package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/parthubhe/DeepFakeStudio/internal/config"
	"github.com/parthubhe/DeepFakeStudio/internal/logging"
	"github.com/parthubhe/DeepFakeStudio/internal/mask"
)

const userAgent = "DFStudio-Go/0.1.0"

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to the processing backend over HTTP. All methods take a
// context and perform a single request/response round trip.
type Client struct {
	baseURL string
	token   string
	client  HTTPDoer
	logger  *slog.Logger
}

// NewClient constructs a backend client from configuration.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	timeout := time.Duration(cfg.Backend.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.Backend.BaseURL, "/"),
		token:   cfg.Backend.APIToken,
		client:  &http.Client{Timeout: timeout},
		logger:  logging.NewComponentLogger(logger, "backend"),
	}
}

// NewClientWithDoer constructs a client over a custom HTTP backend, used by tests.
func NewClientWithDoer(baseURL, token string, doer HTTPDoer) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  doer,
		logger:  logging.NewNop(),
	}
}

// Projects lists the project identifiers known to the backend.
func (c *Client) Projects(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.doJSON(ctx, http.MethodGet, "/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Project fetches the job profile and per-clip status for one project.
func (c *Client) Project(ctx context.Context, project string) (*Project, error) {
	var out Project
	if err := c.doJSON(ctx, http.MethodGet, "/project/"+url.PathEscape(project), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status fetches the process-wide job status.
func (c *Client) Status(ctx context.Context) (*GlobalStatus, error) {
	var out GlobalStatus
	if err := c.doJSON(ctx, http.MethodGet, "/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Frame asks the backend to extract one frame of a clip and returns its URL.
func (c *Client) Frame(ctx context.Context, project, clip string, frame int) (*FrameResponse, error) {
	path := fmt.Sprintf("/frame/%s/%s?frame=%d", url.PathEscape(project), url.PathEscape(clip), frame)
	var out FrameResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoadMask fetches the saved point set for one pass. A miss surfaces as
// ErrNotFound; callers on editor paths treat that as "no prior mask".
func (c *Client) LoadMask(ctx context.Context, project, clip string, pass int) (mask.PointSet, error) {
	path := fmt.Sprintf("/mask/load/%s/%s/%d", url.PathEscape(project), url.PathEscape(clip), pass)
	var out mask.PointSet
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return mask.PointSet{}, err
	}
	return out.Normalized(), nil
}

// SaveMask persists the point set for one pass.
func (c *Client) SaveMask(ctx context.Context, project, clip string, pass int, points mask.PointSet) error {
	path := fmt.Sprintf("/mask/save/%s/%s/%d", url.PathEscape(project), url.PathEscape(clip), pass)
	return c.doJSON(ctx, http.MethodPost, path, points.Normalized(), nil)
}

// ResetMask discards the persisted mask for one pass.
func (c *Client) ResetMask(ctx context.Context, project, clip string, pass int) error {
	path := fmt.Sprintf("/mask/reset/%s/%s/%d", url.PathEscape(project), url.PathEscape(clip), pass)
	return c.doJSON(ctx, http.MethodPost, path, nil, nil)
}

// QueueClip submits one clip for processing. The backend handles all passes
// of the clip together; masks must already be saved.
func (c *Client) QueueClip(ctx context.Context, project string, clip ClipState) error {
	return c.doJSON(ctx, http.MethodPost, "/queue/clip/"+url.PathEscape(project), clip, nil)
}

// QueueAll submits every eligible clip of a project. When clips lack required
// masks the backend answers with a structured error which is returned as a
// *QueueAllError carrying the missing entries verbatim.
func (c *Client) QueueAll(ctx context.Context, project string) (*QueueAllResult, error) {
	var out QueueAllResult
	if err := c.doJSON(ctx, http.MethodPost, "/queue/all/"+url.PathEscape(project), nil, &out); err != nil {
		return nil, err
	}
	if out.Status == "error" {
		return nil, &QueueAllError{Message: out.Message, Missing: out.Missing}
	}
	return &out, nil
}

// Stop requests cancellation of in-flight and queued processing. There is no
// local rollback; status polling reflects the new state.
func (c *Client) Stop(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/stop", nil, nil)
}

// ResetProject discards generated outputs for a project while keeping masks.
func (c *Client) ResetProject(ctx context.Context, project string) error {
	return c.doJSON(ctx, http.MethodPost, "/reset/"+url.PathEscape(project), nil, nil)
}

// Stitch triggers server-side concatenation and returns the download URL.
func (c *Client) Stitch(ctx context.Context, project string) (*StitchResponse, error) {
	var out StitchResponse
	if err := c.doJSON(ctx, http.MethodPost, "/stitch/"+url.PathEscape(project), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckCharacters reports which custom character references are uploaded.
func (c *Client) CheckCharacters(ctx context.Context) (*CharacterStatus, error) {
	var out CharacterStatus
	if err := c.doJSON(ctx, http.MethodGet, "/characters/check", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadCharacter uploads a custom character reference image.
func (c *Client) UploadCharacter(ctx context.Context, name string, file io.Reader, filename string) (*UploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy upload payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize upload form: %w", err)
	}

	path := "/character/upload/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.applyStandardHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: upload character: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, statusError(http.MethodPost, path, resp.StatusCode, string(payload))
	}

	var out UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

// AssetURL returns the absolute URL of a custom character reference image.
func (c *Client) AssetURL(name string) string {
	return c.ResolveURL(fmt.Sprintf("/assets/custom_%s.png", name))
}

// ResolveURL turns a backend-relative path (as returned by frame and stitch
// endpoints) into an absolute URL.
func (c *Client) ResolveURL(ref string) string {
	if ref == "" {
		return ""
	}
	if strings.Contains(ref, "://") {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return c.baseURL + ref
}

// FetchBytes downloads a backend-served resource such as a frame image.
func (c *Client) FetchBytes(ctx context.Context, ref string) ([]byte, error) {
	target := c.ResolveURL(ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.applyStandardHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", ErrTransient, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, statusError(http.MethodGet, target, resp.StatusCode, string(payload))
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.applyStandardHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrTransient, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return statusError(method, path, resp.StatusCode, string(payload))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) applyStandardHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
