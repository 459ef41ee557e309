package streammagic

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// recordedRequest is what a test server saw
type recordedRequest struct {
	Path   string
	Query  string
	Header http.Header
}

// deviceServer serves canned JSON bodies per path and records requests
type deviceServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

func newDeviceServer(t *testing.T, handler http.HandlerFunc) *deviceServer {
	t.Helper()
	ds := &deviceServer{}
	ds.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ds.mu.Lock()
		ds.requests = append(ds.requests, recordedRequest{Path: r.URL.Path, Query: r.URL.RawQuery, Header: r.Header.Clone()})
		ds.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(ds.Close)
	return ds
}

func (ds *deviceServer) host() string {
	return ds.Listener.Addr().String()
}

func (ds *deviceServer) recorded() []recordedRequest {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	out := make([]recordedRequest, len(ds.requests))
	copy(out, ds.requests)
	return out
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func newTestClient(t *testing.T, host string, opts ...Option) *Client {
	t.Helper()
	c, err := NewClient(host, opts...)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNewClient_Defaults(t *testing.T) {
	c := newTestClient(t, " 192.168.1.20 ")

	if c.Host() != "192.168.1.20" {
		t.Errorf("Host() = %q, want 192.168.1.20", c.Host())
	}
	if c.Timeout() != DefaultTimeout {
		t.Errorf("Timeout() = %v, want %v", c.Timeout(), DefaultTimeout)
	}
	if !c.OwnsTransport() {
		t.Error("client without WithHTTPClient should own its transport")
	}
	if c.retry.Enabled() {
		t.Error("retries should be off by default")
	}
}

func TestNewClient_InvalidHost(t *testing.T) {
	for _, host := range []string{"", "  ", "http://192.168.1.20", "192.168.1.20/smoip", "a b"} {
		_, err := NewClient(host)
		if !IsValidationError(err) {
			t.Errorf("NewClient(%q) error = %v, want validation error", host, err)
		}
	}
}

func TestNewClient_Options(t *testing.T) {
	hc := &http.Client{}
	c := newTestClient(t, "192.168.1.20",
		WithHTTPClient(hc),
		WithTimeout(5*time.Second),
		WithTimeout(-1),
		WithUserAgent("custom/1.0"),
	)

	if c.OwnsTransport() {
		t.Error("client with WithHTTPClient must not own the transport")
	}
	if c.Timeout() != 5*time.Second {
		t.Errorf("Timeout() = %v, want 5s", c.Timeout())
	}
	if c.userAgent != "custom/1.0" {
		t.Errorf("userAgent = %q", c.userAgent)
	}
}

func TestExecute_URLAndHeaders(t *testing.T) {
	ds := newDeviceServer(t, jsonHandler(`{"data":{}}`))
	c := newTestClient(t, ds.host())

	if _, err := c.execute(context.Background(), "", "/smoip/zone/state", "zone=ZONE1&power=true"); err != nil {
		t.Fatalf("execute() error = %v", err)
	}

	reqs := ds.recorded()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	req := reqs[0]
	if req.Path != "/smoip/zone/state" || req.Query != "zone=ZONE1&power=true" {
		t.Errorf("request = %s?%s", req.Path, req.Query)
	}
	if ua := req.Header.Get("User-Agent"); !strings.HasPrefix(ua, "StreamMagicGo/") {
		t.Errorf("User-Agent = %q, want StreamMagicGo/<version>", ua)
	}
	accept := req.Header.Get("Accept")
	if !strings.Contains(accept, "application/json") || !strings.Contains(accept, "text/plain") {
		t.Errorf("Accept = %q, want JSON and plain text", accept)
	}
	if req.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID should be set")
	}
}

func TestExecute_InvalidPath(t *testing.T) {
	c := newTestClient(t, "192.168.1.20")

	for _, path := range []string{"", "smoip/system/info"} {
		if _, err := c.execute(context.Background(), "GET", path, ""); !IsValidationError(err) {
			t.Errorf("execute(%q) error = %v, want validation error", path, err)
		}
	}
}

func TestExecute_NonSuccessStatus(t *testing.T) {
	ds := newDeviceServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"code":500}`)
	})
	c := newTestClient(t, ds.host())

	_, err := c.GetInfo(context.Background())
	if !IsConnectionError(err) {
		t.Fatalf("error = %v, want connection error", err)
	}
	e, _ := AsError(err)
	if e.Reason != ReasonHTTPStatus || e.StatusCode != 500 {
		t.Errorf("error = %+v, want HTTP 500", e)
	}
	if e.Body != `{"code":500}` {
		t.Errorf("Body = %q", e.Body)
	}
}

func TestExecute_ContentTypeMismatch(t *testing.T) {
	ds := newDeviceServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "<html>hi</html>")
	})
	c := newTestClient(t, ds.host())

	_, err := c.GetState(context.Background())
	if !IsProtocolError(err) {
		t.Fatalf("error = %v, want protocol error", err)
	}
	e, _ := AsError(err)
	if e.ContentType != "text/html" {
		t.Errorf("ContentType = %q, want text/html", e.ContentType)
	}
	if e.Body != "<html>hi</html>" {
		t.Errorf("Body = %q, want raw text", e.Body)
	}
}

func TestExecute_ContentTypeWithParameters(t *testing.T) {
	ds := newDeviceServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "Application/JSON; charset=utf-8")
		_, _ = io.WriteString(w, stateJSON)
	})
	c := newTestClient(t, ds.host())

	if _, err := c.GetState(context.Background()); err != nil {
		t.Errorf("GetState() error = %v", err)
	}
}

func TestExecute_MalformedJSON(t *testing.T) {
	ds := newDeviceServer(t, jsonHandler(`{"data":`))
	c := newTestClient(t, ds.host())

	_, err := c.GetInfo(context.Background())
	e, ok := AsError(err)
	if !ok || e.Kind != KindProtocol || e.Reason != ReasonMalformedJSON {
		t.Errorf("error = %v, want malformed JSON protocol error", err)
	}
}

func TestExecute_TimeoutThenRecover(t *testing.T) {
	var calls atomic.Int32
	ds := newDeviceServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		jsonHandler(stateJSON)(w, r)
	})
	c := newTestClient(t, ds.host(), WithTimeout(50*time.Millisecond))

	_, err := c.GetState(context.Background())
	if !IsConnectionError(err) || !IsTimeout(err) {
		t.Fatalf("first call error = %v, want connection timeout", err)
	}

	// The client stays usable after a timeout
	state, err := c.GetState(context.Background())
	if err != nil {
		t.Fatalf("second call error = %v", err)
	}
	if state.VolumePercent != 40 {
		t.Errorf("VolumePercent = %d, want 40", state.VolumePercent)
	}
}

func TestExecute_ConnectionRefused(t *testing.T) {
	ds := newDeviceServer(t, jsonHandler(`{}`))
	host := ds.host()
	ds.Close()

	c := newTestClient(t, host, WithTimeout(2*time.Second))
	_, err := c.GetInfo(context.Background())
	if !IsConnectionError(err) {
		t.Errorf("error = %v, want connection error", err)
	}
}

func TestClose_OwnedReleasesOnce(t *testing.T) {
	c, err := NewClient("192.168.1.20")
	if err != nil {
		t.Fatal(err)
	}

	var released int
	c.session.release = func() { released++ }

	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if released != 1 {
		t.Errorf("owned transport released %d times, want 1", released)
	}
}

func TestClose_ExternalNeverReleased(t *testing.T) {
	ds := newDeviceServer(t, jsonHandler(infoJSON))
	hc := &http.Client{}

	c, err := NewClient(ds.host(), WithHTTPClient(hc))
	if err != nil {
		t.Fatal(err)
	}
	var released int
	c.session.release = func() { released++ }

	_ = c.Close()
	_ = c.Close()
	if released != 0 {
		t.Errorf("external transport released %d times, want 0", released)
	}

	// The caller's client still works
	resp, err := hc.Get(ds.URL + "/smoip/system/info")
	if err != nil {
		t.Fatalf("external client unusable after Close: %v", err)
	}
	resp.Body.Close()
}

func TestClose_RejectsFurtherCalls(t *testing.T) {
	ds := newDeviceServer(t, jsonHandler(infoJSON))
	c := newTestClient(t, ds.host())
	_ = c.Close()

	_, err := c.GetInfo(context.Background())
	e, ok := AsError(err)
	if !ok || e.Reason != ReasonClosed {
		t.Errorf("error = %v, want closed", err)
	}
	if len(ds.recorded()) != 0 {
		t.Error("no request should be sent after Close")
	}
}

func TestClose_Concurrent(t *testing.T) {
	c, err := NewClient("192.168.1.20")
	if err != nil {
		t.Fatal(err)
	}
	var released atomic.Int32
	c.session.release = func() { released.Add(1) }

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Close()
		}()
	}
	wg.Wait()

	if released.Load() != 1 {
		t.Errorf("released %d times, want 1", released.Load())
	}
}

func TestTracer_ReceivesExchange(t *testing.T) {
	ds := newDeviceServer(t, jsonHandler(infoJSON))

	var mu sync.Mutex
	var got []Exchange
	c := newTestClient(t, ds.host(), WithTracer(TracerFunc(func(ex Exchange) {
		mu.Lock()
		got = append(got, ex)
		mu.Unlock()
	})))

	if _, err := c.GetInfo(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(got) != 1 {
		t.Fatalf("tracer got %d exchanges, want 1", len(got))
	}
	ex := got[0]
	if ex.StatusCode != 200 || ex.Attempt != 1 || ex.Error != "" {
		t.Errorf("exchange = %+v", ex)
	}
	if ex.RequestID != ds.recorded()[0].Header.Get("X-Request-ID") {
		t.Error("exchange RequestID should match the X-Request-ID header")
	}
	if !strings.HasSuffix(ex.URL, "/smoip/system/info") {
		t.Errorf("URL = %q", ex.URL)
	}
}

func TestExecute_ContextCanceled(t *testing.T) {
	ds := newDeviceServer(t, jsonHandler(infoJSON))
	c := newTestClient(t, ds.host())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetInfo(ctx)
	e, ok := AsError(err)
	if !ok || e.Reason != ReasonCanceled {
		t.Errorf("error = %v, want canceled", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("error should wrap context.Canceled")
	}
}

func TestExecute_ResponseTooLarge(t *testing.T) {
	ds := newDeviceServer(t, jsonHandler(`{"data":"`+strings.Repeat("x", maxResponseBytes)+`"}`))
	c := newTestClient(t, ds.host())

	_, err := c.GetInfo(context.Background())
	e, ok := AsError(err)
	if !ok || e.Kind != KindProtocol || e.Reason != ReasonResponseTooLarge {
		t.Fatalf("error = %v, want response too large", err)
	}
	if e.Body != "" {
		t.Errorf("Body should not be kept, got %d bytes", len(e.Body))
	}
}

func TestExecute_LargeErrorBodyKeepsStatus(t *testing.T) {
	ds := newDeviceServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, strings.Repeat("e", maxResponseBytes+10))
	})
	c := newTestClient(t, ds.host())

	_, err := c.GetInfo(context.Background())
	e, ok := AsError(err)
	if !ok || e.Reason != ReasonHTTPStatus || e.StatusCode != 500 {
		t.Fatalf("error = %v, want HTTP 500", err)
	}
	if len(e.Body) != maxResponseBytes {
		t.Errorf("len(Body) = %d, want %d", len(e.Body), maxResponseBytes)
	}
	if !e.Retryable {
		t.Error("5xx should stay retryable")
	}
}
