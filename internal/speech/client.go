// Package speech talks to the remote dialogue-extraction, translation and
// speech-synthesis service. All calls are fallible and governed by the
// client's retry policy.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/veilcut/veilcut/internal/logging"
	"github.com/veilcut/veilcut/internal/subtitle"
)

// Span is one dialogue span returned by extraction.
type Span struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Client is an HTTP client for the speech service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retry      RetryPolicy
	cacheDir   string
	logger     *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.retry = p }
}

// WithHTTPClient substitutes the transport, used by tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCacheDir sets where synthesized audio artifacts are written.
func WithCacheDir(dir string) Option {
	return func(c *Client) { c.cacheDir = dir }
}

// WithLogger attaches a logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a speech service client.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("speech service base URL is required")
	}

	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		retry:      DefaultRetryPolicy(),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cacheDir == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil || cacheDir == "" {
			cacheDir = os.TempDir()
		}
		c.cacheDir = filepath.Join(cacheDir, "veilcut", "voice")
	}
	return c, nil
}

type spanPayload struct {
	StartMs int64  `json:"start_ms"`
	EndMs   int64  `json:"end_ms"`
	Text    string `json:"text"`
}

type extractResponse struct {
	Spans []spanPayload `json:"spans"`
}

// ExtractDialogue uploads an audio file and returns the ordered dialogue
// spans the service recognized in it.
func (c *Client) ExtractDialogue(ctx context.Context, audioPath string) ([]Span, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return nil, fmt.Errorf("audio file not readable: %w", err)
	}

	var spans []Span
	err := c.retry.Do(ctx, func() error {
		body, contentType, err := multipartFile(audioPath)
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(
			ctx, http.MethodPost, c.baseURL+"/v1/dialogue", body,
		)
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", contentType)
		c.authorize(req)

		var resp extractResponse
		if err := c.doJSON(req, &resp); err != nil {
			return err
		}

		spans = spans[:0]
		for _, s := range resp.Spans {
			spans = append(spans, Span{
				Start: time.Duration(s.StartMs) * time.Millisecond,
				End:   time.Duration(s.EndMs) * time.Millisecond,
				Text:  s.Text,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("dialogue extraction failed: %w", err)
	}

	c.logger.Infow("dialogue extracted", "spans", len(spans))
	return spans, nil
}

// Entries converts extracted spans to subtitle entries with fresh ids.
func Entries(spans []Span) []subtitle.Entry {
	entries := make([]subtitle.Entry, 0, len(spans))
	for _, s := range spans {
		entries = append(entries, subtitle.Entry{
			ID:           subtitle.NewID(),
			StartTime:    s.Start,
			EndTime:      s.End,
			OriginalText: s.Text,
		})
	}
	return entries
}

type translateRequest struct {
	Text      string `json:"text"`
	Direction string `json:"direction"`
}

type translateResponse struct {
	Text string `json:"text"`
}

// Translate sends text with a style/direction parameter and returns the
// translated text.
func (c *Client) Translate(ctx context.Context, text, direction string) (string, error) {
	payload, err := json.Marshal(translateRequest{Text: text, Direction: direction})
	if err != nil {
		return "", err
	}

	var result string
	err = c.retry.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(
			ctx, http.MethodPost, c.baseURL+"/v1/translate",
			bytes.NewReader(payload),
		)
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		c.authorize(req)

		var resp translateResponse
		if err := c.doJSON(req, &resp); err != nil {
			return err
		}
		result = resp.Text
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}
	return result, nil
}

type synthesizeRequest struct {
	Text      string `json:"text"`
	Direction string `json:"direction"`
}

// Synthesize requests speech for text and writes the returned audio into
// the cache. The returned path is the opaque audio ref entries carry.
func (c *Client) Synthesize(ctx context.Context, text, direction string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("cannot synthesize empty text")
	}

	payload, err := json.Marshal(synthesizeRequest{Text: text, Direction: direction})
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(c.cacheDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create voice cache dir: %w", err)
	}
	outPath := filepath.Join(c.cacheDir, uuid.NewString()+".mp3")

	err = c.retry.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(
			ctx, http.MethodPost, c.baseURL+"/v1/speech",
			bytes.NewReader(payload),
		)
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		c.authorize(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return responseError(resp)
		}

		out, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create voice artifact: %w", err)
		}
		defer out.Close()

		if _, err := io.Copy(out, resp.Body); err != nil {
			return fmt.Errorf("failed to write voice artifact: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("speech synthesis failed: %w", err)
	}

	return outPath, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{
			StatusCode: http.StatusBadRequest,
			Message:    fmt.Sprintf("malformed response: %v", err),
		}
	}
	return nil
}

func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    string(bytes.TrimSpace(body)),
	}
}

func multipartFile(path string) (io.Reader, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("media", filepath.Base(path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return &buf, writer.FormDataContentType(), nil
}
