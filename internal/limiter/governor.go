// Gói limiter quản lý quota của GitHub API.
// Governor theo dõi các header X-RateLimit-* từ phản hồi API và chặn các
// request mới khi quota đã cạn, đến khi qua thời điểm reset.

package limiter

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/thep200/github-harvester/cfg"
	"github.com/thep200/github-harvester/pkg/log"
)

// RateState là snapshot về quota hiện tại
type RateState struct {
	Remaining int
	Limit     int
	Reset     time.Time
}

// Governor giữ một RateState chia sẻ giữa tất cả worker.
// Mọi thay đổi state đều đi qua mutex, không component nào khác được đụng trực tiếp.
type Governor struct {
	Logger log.Logger
	Config *cfg.Config

	mu       sync.Mutex
	observed bool
	state    RateState
}

func NewGovernor(logger log.Logger, config *cfg.Config) *Governor {
	return &Governor{
		Logger: logger,
		Config: config,
	}
}

// Observe cập nhật RateState từ header của một phản hồi API.
// Header không parse được thì giữ nguyên state cũ.
func (g *Governor) Observe(header http.Header) {
	remaining, errRemaining := strconv.Atoi(header.Get("X-RateLimit-Remaining"))
	if errRemaining != nil {
		return
	}
	if remaining < 0 {
		remaining = 0
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.observed = true
	g.state.Remaining = remaining

	if limit, err := strconv.Atoi(header.Get("X-RateLimit-Limit")); err == nil {
		g.state.Limit = limit
	}
	if resetEpoch, err := strconv.ParseInt(header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		g.state.Reset = time.Unix(resetEpoch, 0)
	}
}

// Acquire chặn caller cho đến khi còn quota, sau đó trừ tạm 1 đơn vị
// (sẽ được hiệu chỉnh lại ở lần Observe tiếp theo). Chỉ fail khi context bị hủy.
func (g *Governor) Acquire(ctx context.Context) error {
	for {
		g.mu.Lock()
		// Chưa từng thấy header nào thì cho đi luôn, request đầu tiên sẽ Observe
		if !g.observed || g.state.Remaining > 0 {
			if g.observed {
				g.state.Remaining--
			}
			g.mu.Unlock()
			return nil
		}

		// Quota đã hết, tính thời gian chờ đến reset
		wait := time.Until(g.state.Reset)
		reset := g.state.Reset
		g.mu.Unlock()

		if wait <= 0 {
			// Đã qua thời điểm reset nhưng chưa có Observe mới, cho đi để
			// request tiếp theo cập nhật lại state
			g.mu.Lock()
			g.state.Remaining = 0
			g.observed = false
			g.mu.Unlock()
			return nil
		}

		maxWait := time.Duration(g.Config.GithubApi.MaxWaitMin) * time.Minute
		if maxWait > 0 && wait > maxWait {
			g.Logger.Warn(ctx, "Rate limit hit! Thời gian chờ %v vượt ngưỡng %v, reset lúc %s",
				wait.Round(time.Second), maxWait, reset.Format(time.RFC3339))
		} else {
			g.Logger.Info(ctx, "Quota đã hết, chờ %v đến %s", wait.Round(time.Second), reset.Format(time.RFC3339))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// State trả về bản sao của RateState hiện tại
func (g *Governor) State() RateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}
