package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/og-negotiator/pkg/logging"
	"github.com/rs/zerolog"
)

// maxImageBytes caps the size of a rendered image read from the service.
const maxImageBytes = 16 << 20

// RemoteConfig configures the render service client.
type RemoteConfig struct {
	// URL receives a POST with a JSON renderRequest and answers image bytes.
	URL string

	// UserAgent is sent with every request.
	UserAgent string

	// Timeout bounds a single HTTP attempt.
	Timeout time.Duration

	// Retry controls backoff between attempts.
	Retry RetryConfig
}

// DefaultRemoteConfig returns a configuration for url.
func DefaultRemoteConfig(url string) RemoteConfig {
	return RemoteConfig{
		URL:       url,
		UserAgent: "og-negotiator/0.1.0",
		Timeout:   20 * time.Second,
		Retry:     DefaultRetryConfig(),
	}
}

// renderRequest is the wire body sent to the render service.
type renderRequest struct {
	HTML string `json:"html"`
	Options
}

// Remote renders through an HTTP render service.
type Remote struct {
	httpClient *http.Client
	config     RemoteConfig
	logger     zerolog.Logger
}

// NewRemote creates a render service client.
func NewRemote(cfg RemoteConfig) (*Remote, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("render service url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}

	return &Remote{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logging.NewLogger("render-remote"),
	}, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (r *Remote) SetHTTPClient(client *http.Client) {
	r.httpClient = client
}

// Render posts html to the render service and returns the image bytes.
// 5xx, 429 and network errors are retried; 4xx errors are not.
func (r *Remote) Render(ctx context.Context, html string, opts Options) ([]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(renderRequest{HTML: html, Options: opts})
	if err != nil {
		return nil, fmt.Errorf("marshal render request: %w", err)
	}

	var img []byte
	err = retryWithBackoff(ctx, r.config.Retry, func() (ErrorClass, error) {
		data, class, attemptErr := r.attempt(ctx, payload)
		if attemptErr != nil {
			return class, attemptErr
		}
		img = data
		return "", nil
	})
	if err != nil {
		return nil, err
	}

	return img, nil
}

func (r *Remote) attempt(ctx context.Context, payload []byte) ([]byte, ErrorClass, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.config.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, ErrorClassClient, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/png")
	if r.config.UserAgent != "" {
		req.Header.Set("User-Agent", r.config.UserAgent)
	}

	start := time.Now()
	resp, err := r.httpClient.Do(req)
	if err != nil {
		renderRequestsTotal.WithLabelValues("network_error").Inc()
		r.logger.Warn().Err(err).Str("url", r.config.URL).Msg("Render request failed")
		return nil, ErrorClassNetwork, &RenderError{
			ErrorClass: ErrorClassNetwork,
			Message:    "request failed",
			Err:        err,
		}
	}
	defer resp.Body.Close()

	renderRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if class := classifyStatus(resp.StatusCode); class != "" {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		r.logger.Warn().
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Render service error")
		return nil, class, &RenderError{
			StatusCode: resp.StatusCode,
			ErrorClass: class,
			Message:    string(bytes.TrimSpace(detail)),
		}
	}

	img, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, ErrorClassNetwork, &RenderError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Message:    "read response body",
			Err:        err,
		}
	}

	r.logger.Debug().
		Int("status", resp.StatusCode).
		Int("bytes", len(img)).
		Dur("duration", time.Since(start)).
		Msg("Rendered remotely")

	return img, "", nil
}
