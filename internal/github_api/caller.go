// Gói githubapi cung cấp một caller cho GitHub API.
// Caller chịu trách nhiệm thực hiện yêu cầu API qua một connection pool chia sẻ,
// xác thực bằng mã thông báo truy cập nếu được cung cấp, và phân loại phản hồi
// thành thành công / lỗi tạm thời / lỗi kết thúc.

package githubapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/thep200/github-harvester/cfg"
	"github.com/thep200/github-harvester/internal/limiter"
	"github.com/thep200/github-harvester/pkg/log"
)

type Caller struct {
	Logger   log.Logger
	Config   *cfg.Config
	Governor *limiter.Governor
	throttle *limiter.Throttle
	client   *http.Client
}

// Response là phản hồi đã phân loại thành công từ API
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func NewCaller(logger log.Logger, config *cfg.Config) *Caller {
	timeout := time.Duration(config.GithubApi.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// Connection pool dùng chung cho tất cả worker
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Caller{
		Logger:   logger,
		Config:   config,
		Governor: limiter.NewGovernor(logger, config),
		throttle: limiter.NewThrottle(config.GithubApi.RequestsPerSecond, config.GithubApi.BurstSize),
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Send thực hiện request với retry: tối đa MaxRetries lần cho lỗi tạm thời,
// backoff nhân đôi sau mỗi lần, bắt đầu từ SuggestedDelay hoặc BaseDelayMs,
// trần tại MaxDelayMs. Hết lượt thử thì chuyển thành FatalError.
func (c *Caller) Send(ctx context.Context, method, url string) (*Response, error) {
	maxRetries := c.Config.GithubApi.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 5
	}
	baseDelay := time.Duration(c.Config.GithubApi.BaseDelayMs) * time.Millisecond
	if baseDelay <= 0 {
		baseDelay = 2 * time.Second
	}
	maxDelay := time.Duration(c.Config.GithubApi.MaxDelayMs) * time.Millisecond
	if maxDelay <= 0 {
		maxDelay = 60 * time.Second
	}

	var lastErr error
	delay := time.Duration(0)

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if delay > 0 {
			c.Logger.Warn(ctx, "Thử lại %s lần %d/%d sau %v: %v", url, attempt, maxRetries, delay, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		resp, err := c.send(ctx, method, url)
		if err == nil {
			return resp, nil
		}

		retryErr, ok := err.(*RetryableError)
		if !ok {
			// Lỗi kết thúc, propagate ngay
			return nil, err
		}
		lastErr = err

		// Backoff cho lần tiếp theo
		if delay == 0 {
			delay = retryErr.SuggestedDelay
			if delay <= 0 {
				delay = baseDelay
			}
		} else {
			delay *= 2
		}
		if delay > maxDelay {
			delay = maxDelay
		}
	}

	return nil, &FatalError{
		Reason: fmt.Sprintf("đã thử %d lần không thành công: %v", maxRetries, lastErr),
	}
}

// send thực hiện đúng một request: chờ throttle và governor, gọi API,
// cập nhật governor từ header rồi phân loại kết quả
func (c *Caller) send(ctx context.Context, method, url string) (*Response, error) {
	if err := c.throttle.Wait(ctx); err != nil {
		return nil, err
	}
	if err := c.Governor.Acquire(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, &FatalError{Reason: fmt.Sprintf("cannot build request: %v", err)}
	}

	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.Config.GithubApi.AccessToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("token %s", c.Config.GithubApi.AccessToken))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Reason: fmt.Sprintf("network error: %v", err)}
	}
	defer resp.Body.Close()

	c.Governor.Observe(resp.Header)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RetryableError{Reason: fmt.Sprintf("cannot read response body: %v", err)}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &Response{
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       body,
		}, nil
	}

	return nil, c.classify(resp)
}

// classify phân loại một phản hồi không thành công
func (c *Caller) classify(resp *http.Response) error {
	status := resp.StatusCode

	// Rate limit: 429, hoặc 403 kèm quota = 0
	if status == http.StatusTooManyRequests ||
		(status == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0") {
		return &RetryableError{
			Reason:         fmt.Sprintf("rate limit exceeded (status %d)", status),
			SuggestedDelay: c.suggestedDelay(resp.Header),
		}
	}

	// Lỗi server tạm thời
	if status >= 500 {
		return &RetryableError{Reason: fmt.Sprintf("server error: %s", resp.Status)}
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &FatalError{Status: status, Reason: "credential không hợp lệ hoặc không đủ quyền"}
	case http.StatusNotFound:
		return &FatalError{Status: status, Reason: "resource not found"}
	default:
		return &FatalError{Status: status, Reason: fmt.Sprintf("unexpected response: %s", resp.Status)}
	}
}

// suggestedDelay ước lượng thời gian chờ từ header Retry-After hoặc X-RateLimit-Reset
func (c *Caller) suggestedDelay(header http.Header) time.Duration {
	if retryAfter, err := strconv.Atoi(header.Get("Retry-After")); err == nil && retryAfter > 0 {
		return time.Duration(retryAfter) * time.Second
	}
	if resetEpoch, err := strconv.ParseInt(header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		if wait := time.Until(time.Unix(resetEpoch, 0)); wait > 0 {
			return wait
		}
	}
	return 0
}
