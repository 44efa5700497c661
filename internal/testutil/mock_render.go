// Package testutil provides testing utilities for og-server.
package testutil

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// RenderRequest is the body a render service receives.
type RenderRequest struct {
	HTML   string `json:"html"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// MockRenderResponse defines one scripted render service response.
type MockRenderResponse struct {
	StatusCode int
	Body       []byte
	Delay      time.Duration
}

// MockRenderService is a configurable render service for testing. Scripted
// responses are served in order; once they run out every request gets a
// solid PNG of the requested size.
type MockRenderService struct {
	server *httptest.Server

	mu           sync.Mutex
	queue        []MockRenderResponse
	requestCount int
	lastRequest  RenderRequest
}

// NewMockRenderService starts a mock render service.
func NewMockRenderService() *MockRenderService {
	mock := &MockRenderService{}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the render endpoint.
func (m *MockRenderService) URL() string {
	return m.server.URL + "/render"
}

// Close shuts down the mock server.
func (m *MockRenderService) Close() {
	m.server.Close()
}

// Enqueue scripts the next responses.
func (m *MockRenderService) Enqueue(responses ...MockRenderResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, responses...)
}

// RequestCount returns the number of render requests received.
func (m *MockRenderService) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount
}

// LastRequest returns the most recent decoded request.
func (m *MockRenderService) LastRequest() RenderRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

func (m *MockRenderService) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/render" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.requestCount++
	m.lastRequest = req
	var scripted *MockRenderResponse
	if len(m.queue) > 0 {
		scripted = &m.queue[0]
		m.queue = m.queue[1:]
	}
	m.mu.Unlock()

	if scripted != nil {
		if scripted.Delay > 0 {
			time.Sleep(scripted.Delay)
		}
		w.WriteHeader(scripted.StatusCode)
		w.Write(scripted.Body)
		return
	}

	if req.Width <= 0 || req.Height <= 0 {
		http.Error(w, "invalid size", http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(SolidPNG(req.Width, req.Height))
}

// SolidPNG encodes a width x height PNG filled with one color.
func SolidPNG(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill := color.RGBA{R: 0x00, G: 0x66, B: 0xcc, A: 0xff}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, fill)
		}
	}

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// NewServerErrorResponse creates a 503 Service Unavailable response.
func NewServerErrorResponse() MockRenderResponse {
	return MockRenderResponse{
		StatusCode: http.StatusServiceUnavailable,
		Body:       []byte(`{"error": "renderer busy"}`),
	}
}

// NewBadRequestResponse creates a 400 Bad Request response.
func NewBadRequestResponse() MockRenderResponse {
	return MockRenderResponse{
		StatusCode: http.StatusBadRequest,
		Body:       []byte(`{"error": "unsupported layout"}`),
	}
}
