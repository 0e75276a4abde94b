package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/helixml/briefer"
	"github.com/helixml/briefer/infrastructure/api"
	"github.com/helixml/briefer/infrastructure/provider"
	"github.com/helixml/briefer/infrastructure/queue"
)

const callbackSecret = "e2e-secret"

// TestServer runs the full HTTP stack against a fake OpenAI-compatible
// upstream and, optionally, a fake push queue that replays jobs to the
// worker routes.
type TestServer struct {
	t          *testing.T
	client     *briefer.Client
	httpServer *httptest.Server
	ai         *fakeAI
	queue      *fakeQueue
}

// NewTestServer creates a server that generates inline.
func NewTestServer(t *testing.T, reply string) *TestServer {
	return newTestServer(t, reply, false)
}

// NewQueuedTestServer creates a server whose submissions go through the
// fake push queue.
func NewQueuedTestServer(t *testing.T, reply string) *TestServer {
	return newTestServer(t, reply, true)
}

func newTestServer(t *testing.T, reply string, queued bool) *TestServer {
	t.Helper()

	ts := &TestServer{t: t, ai: newFakeAI(t, reply)}

	// The callback URL must be known before the client exists, so the
	// server starts with a handler that is filled in below.
	var handler http.Handler
	ts.httpServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}))

	opts := []briefer.Option{
		briefer.WithSQLite(":memory:"),
		briefer.WithOpenAIConfig(provider.OpenAIConfig{
			APIKey:  "sk-test",
			BaseURL: ts.ai.server.URL + "/v1",
		}),
		briefer.WithCallbackSecret(callbackSecret),
	}
	if queued {
		ts.queue = newFakeQueue(t)
		opts = append(opts,
			briefer.WithQueue(queue.Config{
				URL:            ts.queue.server.URL,
				Token:          "qstash-token",
				CallbackSecret: callbackSecret,
			}),
			briefer.WithCallbackBaseURL(ts.httpServer.URL),
		)
	}

	client, err := briefer.New(opts...)
	if err != nil {
		t.Fatalf("create briefer client: %v", err)
	}
	ts.client = client

	apiServer := api.NewAPIServer(client, nil)
	apiServer.MountRoutes()
	server := api.NewServer(":0", client.Logger())
	server.Router().Mount("/", apiServer.Router())
	handler = server.Router()

	t.Cleanup(ts.Close)
	return ts
}

// URL returns the base URL of the test server.
func (ts *TestServer) URL() string {
	return ts.httpServer.URL
}

// Close shuts down the test server.
func (ts *TestServer) Close() {
	if ts.queue != nil {
		ts.queue.wait()
	}
	ts.httpServer.Close()
	_ = ts.client.Close()
}

// GET performs a GET request and returns the response.
func (ts *TestServer) GET(path string) *http.Response {
	ts.t.Helper()
	resp, err := http.Get(ts.URL() + path)
	if err != nil {
		ts.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// POST performs a POST request with a JSON body and returns the response.
func (ts *TestServer) POST(path string, body any) *http.Response {
	ts.t.Helper()
	jsonBody, err := json.Marshal(body)
	if err != nil {
		ts.t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(ts.URL()+path, "application/json", bytes.NewReader(jsonBody))
	if err != nil {
		ts.t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// DELETE performs a DELETE request and returns the response.
func (ts *TestServer) DELETE(path string) *http.Response {
	ts.t.Helper()
	req, err := http.NewRequest(http.MethodDelete, ts.URL()+path, nil)
	if err != nil {
		ts.t.Fatalf("create DELETE request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ts.t.Fatalf("DELETE %s: %v", path, err)
	}
	return resp
}

// DecodeJSON decodes the response body as JSON into v.
func (ts *TestServer) DecodeJSON(resp *http.Response, v any) {
	ts.t.Helper()
	defer func() {
		_ = resp.Body.Close()
	}()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		ts.t.Fatalf("decode response: %v", err)
	}
}

// RequireStatus fails the test with the response body when the status differs.
// The body is left unread on success.
func (ts *TestServer) RequireStatus(resp *http.Response, want int) {
	ts.t.Helper()
	if resp.StatusCode != want {
		ts.t.Fatalf("status = %d, want %d: %s", resp.StatusCode, want, ts.ReadBody(resp))
	}
}

// ReadBody reads and returns the response body as a string.
func (ts *TestServer) ReadBody(resp *http.Response) string {
	ts.t.Helper()
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		ts.t.Fatalf("read body: %v", err)
	}
	return string(body)
}

// fakeAI answers chat completions with a fixed reply and records the
// prompts it was sent.
type fakeAI struct {
	server  *httptest.Server
	calls   atomic.Int64
	mu      sync.Mutex
	prompts []string
}

func newFakeAI(t *testing.T, reply string) *fakeAI {
	t.Helper()
	f := &fakeAI{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		f.calls.Add(1)

		var body struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		for _, m := range body.Messages {
			f.prompts = append(f.prompts, m.Content)
		}
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-e2e",
			"object":  "chat.completion",
			"created": 0,
			"model":   "gpt-3.5-turbo",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAI) sawPrompt(substr string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.prompts {
		if strings.Contains(p, substr) {
			return true
		}
	}
	return false
}

// fakeQueue accepts publish requests and immediately replays each job to
// its callback URL with the forwarded secret, ignoring the delay.
type fakeQueue struct {
	server    *httptest.Server
	inflight  sync.WaitGroup
	mu        sync.Mutex
	delays    []string
	callbacks []int
}

func newFakeQueue(t *testing.T) *fakeQueue {
	t.Helper()
	f := &fakeQueue{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target := strings.TrimPrefix(r.URL.Path, "/v2/publish/")
		if target == r.URL.Path || r.Header.Get("Authorization") != "Bearer qstash-token" {
			http.Error(w, "bad publish request", http.StatusBadRequest)
			return
		}
		body, _ := io.ReadAll(r.Body)
		secret := r.Header.Get(queue.HeaderForwardPrefix + queue.HeaderCallbackSecret)

		f.mu.Lock()
		f.delays = append(f.delays, r.Header.Get(queue.HeaderDelay))
		f.mu.Unlock()

		f.inflight.Add(1)
		go f.deliver(target, secret, body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"msg_e2e"}`))
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeQueue) deliver(target, secret string, body []byte) {
	defer f.inflight.Done()

	req, err := http.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		f.record(0)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(queue.HeaderCallbackSecret, secret)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		f.record(0)
		return
	}
	_ = resp.Body.Close()
	f.record(resp.StatusCode)
}

func (f *fakeQueue) record(status int) {
	f.mu.Lock()
	f.callbacks = append(f.callbacks, status)
	f.mu.Unlock()
}

func (f *fakeQueue) wait() {
	f.inflight.Wait()
}

func (f *fakeQueue) snapshot() (delays []string, callbacks []int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.delays...), append([]int(nil), f.callbacks...)
}
