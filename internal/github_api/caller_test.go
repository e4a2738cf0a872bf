package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/github-harvester/cfg"
	"github.com/thep200/github-harvester/pkg/log"
)

func newTestCaller(t *testing.T, apiURL string) *Caller {
	t.Helper()

	loader, err := cfg.NewMockLoader()
	require.NoError(t, err)
	config, err := loader.Load()
	require.NoError(t, err)

	// Backoff ngắn để test chạy nhanh
	config.GithubApi.ApiUrl = apiURL
	config.GithubApi.AccessToken = "test-token"
	config.GithubApi.MaxRetries = 3
	config.GithubApi.BaseDelayMs = 1
	config.GithubApi.MaxDelayMs = 10
	config.GithubApi.RequestsPerSecond = 1000
	config.GithubApi.BurstSize = 1000

	logger, err := log.NewNopLogger()
	require.NoError(t, err)
	return NewCaller(logger, config)
}

func okHeader(w http.ResponseWriter) {
	w.Header().Set("X-RateLimit-Remaining", "100")
	w.Header().Set("X-RateLimit-Limit", "5000")
	w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(time.Hour).Unix()))
}

func TestSend_SetsAuthHeaders(t *testing.T) {
	var gotAuth, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		okHeader(w)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestCaller(t, server.URL)
	_, err := c.Send(context.Background(), http.MethodGet, server.URL+"/users/octocat")
	require.NoError(t, err)

	assert.Equal(t, "token test-token", gotAuth)
	assert.Equal(t, "application/vnd.github.v3+json", gotAccept)
}

func TestSend_RetriesServerErrorThenSucceeds(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		okHeader(w)
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := newTestCaller(t, server.URL)
	resp, err := c.Send(context.Background(), http.MethodGet, server.URL+"/flaky")
	require.NoError(t, err)

	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSend_ExhaustedRetriesBecomeFatal(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		okHeader(w)
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestCaller(t, server.URL)
	_, err := c.Send(context.Background(), http.MethodGet, server.URL+"/broken")

	require.Error(t, err)
	// Đúng số lần thử đã cấu hình, không hơn không kém
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.True(t, IsFatal(err))
	assert.False(t, IsRetryable(err))
}

func TestSend_NotFoundIsFatalWithoutRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		okHeader(w)
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestCaller(t, server.URL)
	_, err := c.Send(context.Background(), http.MethodGet, server.URL+"/missing")

	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.True(t, IsNotFound(err))
}

func TestSend_UnauthorizedIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		okHeader(w)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := newTestCaller(t, server.URL)
	_, err := c.Send(context.Background(), http.MethodGet, server.URL+"/private")

	require.Error(t, err)
	assert.True(t, IsAuthorization(err))
}

func TestClassify_RateLimitForbiddenIsRetryable(t *testing.T) {
	// 403 kèm quota 0 là rate limit chứ không phải lỗi quyền
	resp := &http.Response{
		StatusCode: http.StatusForbidden,
		Header:     http.Header{},
	}
	resp.Header.Set("X-RateLimit-Remaining", "0")
	resp.Header.Set("Retry-After", "7")

	c := newTestCaller(t, "http://unused")
	err := c.classify(resp)

	require.True(t, IsRetryable(err))
	var re *RetryableError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 7*time.Second, re.SuggestedDelay)
}

func TestClassify_ForbiddenWithQuotaLeftIsFatal(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusForbidden,
		Header:     http.Header{},
		Status:     "403 Forbidden",
	}
	resp.Header.Set("X-RateLimit-Remaining", "55")

	c := newTestCaller(t, "http://unused")
	err := c.classify(resp)

	assert.True(t, IsAuthorization(err))
	assert.False(t, IsRetryable(err))
}

func TestFetchPage_FollowsLinkHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		okHeader(w)
		if r.URL.Query().Get("page") == "2" {
			json.NewEncoder(w).Encode([]map[string]interface{}{{"login": "carol"}})
			return
		}
		w.Header().Set("Link",
			fmt.Sprintf(`<%s/users/x/followers?page=2>; rel="next", <%s/users/x/followers?page=2>; rel="last"`,
				"http://"+r.Host, "http://"+r.Host))
		json.NewEncoder(w).Encode([]map[string]interface{}{{"login": "alice"}, {"login": "bob"}})
	}))
	defer server.Close()

	c := newTestCaller(t, server.URL)

	page, err := c.FetchPage(context.Background(), server.URL+"/users/x/followers")
	require.NoError(t, err)
	require.Len(t, page.Records, 2)
	require.NotEmpty(t, page.NextURL, "must follow rel=next from Link header")

	page2, err := c.FetchPage(context.Background(), page.NextURL)
	require.NoError(t, err)
	require.Len(t, page2.Records, 1)
	assert.Equal(t, "carol", page2.Records[0]["login"])
	assert.Empty(t, page2.NextURL, "last page has no rel=next")
}

func TestUserExists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		okHeader(w)
		if r.URL.Path == "/users/octocat" {
			w.Write([]byte(`{"login":"octocat"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestCaller(t, server.URL)

	ok, err := c.UserExists(context.Background(), "octocat")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.UserExists(context.Background(), "nobody-here")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGovernorObservesEveryResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "77")
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(time.Hour).Unix()))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestCaller(t, server.URL)
	_, err := c.Send(context.Background(), http.MethodGet, server.URL+"/anything")
	require.NoError(t, err)

	assert.Equal(t, 77, c.Governor.State().Remaining)
	assert.Equal(t, 5000, c.Governor.State().Limit)
}
