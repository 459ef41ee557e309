package streammagic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/muurk/streammagic/internal/logging"
)

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 4 << 20

// execute performs one logical request (with retries, if enabled) and returns
// the decoded JSON body as a tree of map[string]any, []any, string, bool,
// json.Number and nil.
func (c *Client) execute(ctx context.Context, method, path, query string) (any, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	if method == "" {
		method = http.MethodGet
	}

	// One deadline covers every attempt and backoff wait
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	return c.withRetry(ctx, func(attempt int) (any, error) {
		return c.attempt(ctx, method, path, query, attempt)
	})
}

// requestURL builds http://<host><path>?<query>
func (c *Client) requestURL(path, query string) string {
	u := url.URL{
		Scheme:   "http",
		Host:     c.host,
		Path:     path,
		RawQuery: query,
	}
	return u.String()
}

// attempt performs a single HTTP exchange, bounded by the call deadline and
// the retry policy's AttemptTimeout when set.
func (c *Client) attempt(ctx context.Context, method, path, query string, attempt int) (any, error) {
	hc, ok := c.session.acquire()
	if !ok {
		return nil, errClosed(c.host)
	}

	if c.retry.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.retry.AttemptTimeout)
		defer cancel()
	}

	ex := Exchange{
		RequestID: uuid.New().String(),
		Time:      time.Now(),
		Method:    method,
		URL:       c.requestURL(path, query),
		Attempt:   attempt,
	}
	c.log.Debug("Sending request", logging.RequestFields(ex.RequestID, ex.Method, ex.URL, ex.Attempt)...)

	result, err := c.roundTrip(ctx, hc, &ex)

	ex.Duration = time.Since(ex.Time)
	if err != nil {
		ex.Error = err.Error()
		fields := append(logging.ResponseFields(ex.RequestID, ex.StatusCode, ex.ContentType, ex.Duration), logging.ErrorField(err))
		if e, ok := AsError(err); ok {
			ex.ErrorKind = e.Kind.String()
			if e.Body != "" {
				fields = append(fields, logging.BodyField(e.Body))
			}
		}
		c.log.Debug("Request failed", fields...)
	} else {
		c.log.Debug("Response received", logging.ResponseFields(ex.RequestID, ex.StatusCode, ex.ContentType, ex.Duration)...)
	}
	c.tracer.Trace(ex)

	return result, err
}

func (c *Client) roundTrip(ctx context.Context, hc *http.Client, ex *Exchange) (any, error) {
	req, err := http.NewRequestWithContext(ctx, ex.Method, ex.URL, nil)
	if err != nil {
		return nil, NewValidationError("host", "cannot build request URL: "+err.Error())
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-Request-ID", ex.RequestID)

	resp, err := hc.Do(req)
	if err != nil {
		return nil, ClassifyNetworkError(err, c.host)
	}
	defer func() { _ = resp.Body.Close() }()

	ex.StatusCode = resp.StatusCode
	ex.ContentType = resp.Header.Get("Content-Type")

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		e := ClassifyNetworkError(err, c.host)
		e.Message = "failed to read response body: " + e.Message
		return nil, e
	}
	tooLarge := len(body) > maxResponseBytes
	if tooLarge {
		body = body[:maxResponseBytes]
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := NewHTTPStatusError(resp.StatusCode, string(body))
		e.Host = c.host
		return nil, e
	}

	if tooLarge {
		e := NewResponseTooLargeError(ex.ContentType, maxResponseBytes)
		e.Host = c.host
		return nil, e
	}

	if !strings.Contains(strings.ToLower(ex.ContentType), "application/json") {
		e := NewContentTypeError(ex.ContentType, string(body))
		e.Host = c.host
		return nil, e
	}

	return decodeJSON(body, ex.ContentType)
}

// decodeJSON parses exactly one JSON value, keeping numbers exact.
func decodeJSON(body []byte, contentType string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, NewMalformedJSONError(contentType, string(body), err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, NewMalformedJSONError(contentType, string(body), errors.New("trailing data after JSON value"))
	}
	return v, nil
}
