package indicator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// HTTPPublisher posts frames to the gateway's REST endpoint. It is the fallback path
// when the websocket is down.
type HTTPPublisher struct {
	baseURL string
	token   string
	http    *fasthttp.Client

	timeout  time.Duration
	retryMax int
}

type HTTPOption func(*HTTPPublisher)

func WithHTTPTimeout(d time.Duration) HTTPOption {
	return func(p *HTTPPublisher) { p.timeout = d }
}

func WithHTTPRetry(max int) HTTPOption {
	return func(p *HTTPPublisher) { p.retryMax = max }
}

func WithHTTPToken(token string) HTTPOption {
	return func(p *HTTPPublisher) { p.token = strings.TrimSpace(token) }
}

func NewHTTPPublisher(baseURL string, opts ...HTTPOption) *HTTPPublisher {
	p := &HTTPPublisher{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &fasthttp.Client{ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second, MaxConnsPerHost: 16},
		timeout:  5 * time.Second,
		retryMax: 3,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish posts f to <base>/frames, retrying transport errors and 5xx/429 replies.
func (p *HTTPPublisher) Publish(ctx context.Context, f Frame) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()
	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(p.baseURL + "/frames")
	req.Header.SetContentType("application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
	req.SetBody(payload)

	attempts := p.retryMax
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := p.http.DoDeadline(req, resp, p.deadline(ctx))
		if err == nil {
			status := resp.StatusCode()
			if status >= 200 && status < 300 {
				return nil
			}
			err = fmt.Errorf("indicator gateway: status=%d body=%s", status, truncate(string(resp.Body()), 256))
			if !shouldRetryStatus(status) {
				return err
			}
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
			return lastErr
		}
	}
	if lastErr == nil {
		lastErr = errors.New("indicator gateway: unknown error")
	}
	return lastErr
}

func (p *HTTPPublisher) deadline(ctx context.Context) time.Time {
	own := time.Now().Add(p.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(own) {
		return dl
	}
	return own
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func shouldRetryStatus(status int) bool {
	return status == fasthttp.StatusTooManyRequests || status >= 500
}

// backoffDuration doubles from 100ms and stops growing after the sixth attempt.
func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return 100 * time.Millisecond * time.Duration(1<<(attempt-1))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
