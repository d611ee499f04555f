// Package testutils provides fakes shared by wellchat tests.
package testutils

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// DeltaLine renders a text delta event as an SSE data line.
func DeltaLine(text string) string {
	payload, _ := json.Marshal(map[string]string{
		"type":  "response.output_text.delta",
		"delta": text,
	})
	return "data: " + string(payload) + "\n"
}

// SSEBody renders deltas as a complete streamed response ending with the
// [DONE] sentinel.
func SSEBody(deltas ...string) string {
	var sb strings.Builder
	sb.WriteString(`data: {"type":"response.created","response":{"id":"resp_test","status":"in_progress"}}` + "\n\n")
	for _, d := range deltas {
		sb.WriteString(DeltaLine(d))
		sb.WriteString("\n")
	}
	sb.WriteString(`data: {"type":"response.completed","response":{"id":"resp_test","status":"completed","usage":{"input_tokens":5,"output_tokens":3,"total_tokens":8}}}` + "\n\n")
	sb.WriteString("data: [DONE]\n\n")
	return sb.String()
}

// RecordedRequest is what MockResponsesServer saw for one request.
type RecordedRequest struct {
	Header http.Header
	Path   string
	Body   map[string]any
}

// MockResponsesServer is a fake Responses API endpoint that answers every
// request with the queued replies in order, repeating the last one.
type MockResponsesServer struct {
	*httptest.Server

	mu       sync.Mutex
	replies  []MockReply
	requests []RecordedRequest
}

// MockReply is one scripted response.
type MockReply struct {
	Status int
	Body   string
}

// NewMockResponsesServer starts a server replying with replies. With no
// replies it streams a single "ok" delta.
func NewMockResponsesServer(replies ...MockReply) *MockResponsesServer {
	m := &MockResponsesServer{replies: replies}
	if len(m.replies) == 0 {
		m.replies = []MockReply{{Status: http.StatusOK, Body: SSEBody("ok")}}
	}

	m.Server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// Requests returns a copy of every request seen so far.
func (m *MockResponsesServer) Requests() []RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]RecordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *MockResponsesServer) handle(w http.ResponseWriter, r *http.Request) {
	rec := RecordedRequest{Header: r.Header.Clone(), Path: r.URL.Path}
	data, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(data, &rec.Body)

	m.mu.Lock()
	idx := len(m.requests)
	m.requests = append(m.requests, rec)
	reply := m.replies[min(idx, len(m.replies)-1)]
	m.mu.Unlock()

	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	if status == http.StatusOK {
		w.Header().Set("Content-Type", "text/event-stream")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, reply.Body)
}
