package provider

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// CachingTransport replays successful POST responses from disk. Entries are
// keyed by SHA-256 of URL and request body, so identical prompts are only
// sent upstream once. Other methods pass straight through.
type CachingTransport struct {
	inner http.RoundTripper
	dir   string
}

type cacheEntry struct {
	StatusCode int         `json:"status_code"`
	Header     http.Header `json:"header"`
	Body       []byte      `json:"body"`
}

// NewCachingTransport creates the cache directory and returns a transport
// wrapping inner, or http.DefaultTransport when inner is nil.
func NewCachingTransport(dir string, inner http.RoundTripper) (*CachingTransport, error) {
	if inner == nil {
		inner = http.DefaultTransport
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &CachingTransport{inner: inner, dir: dir}, nil
}

// RoundTrip implements http.RoundTripper. Cache read and write failures
// fall back to the inner transport.
func (t *CachingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodPost || req.Body == nil {
		return t.inner.RoundTrip(req)
	}

	body, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, err
	}
	req.Body = io.NopCloser(bytes.NewReader(body))

	path := filepath.Join(t.dir, cacheKey(req.URL.String(), body)+".json")
	if entry, ok := load(path); ok {
		return &http.Response{
			Status:        http.StatusText(entry.StatusCode),
			StatusCode:    entry.StatusCode,
			Proto:         "HTTP/1.1",
			ProtoMajor:    1,
			ProtoMinor:    1,
			Header:        entry.Header,
			Body:          io.NopCloser(bytes.NewReader(entry.Body)),
			ContentLength: int64(len(entry.Body)),
			Request:       req,
		}, nil
	}

	resp, err := t.inner.RoundTrip(req)
	if err != nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, err
	}

	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}
	store(path, cacheEntry{StatusCode: resp.StatusCode, Header: resp.Header, Body: respBody})

	resp.Body = io.NopCloser(bytes.NewReader(respBody))
	return resp, nil
}

func cacheKey(url string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(url))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func load(path string) (cacheEntry, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cacheEntry{}, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return cacheEntry{}, false
	}
	return entry, true
}

func store(path string, entry cacheEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return
	}
	_ = os.Rename(tmp, path)
}
