package limiter

import (
	"context"

	"golang.org/x/time/rate"
)

// Throttle giới hạn số lượng request trong 1 giây bằng token bucket,
// đứng trước Governor để không dồn request vào API quá nhanh.
type Throttle struct {
	limiter *rate.Limiter
}

func NewThrottle(requestsPerSecond, burst int) *Throttle {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 10
	}
	if burst <= 0 {
		burst = requestsPerSecond
	}
	return &Throttle{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Wait chặn đến khi có token cho request tiếp theo
func (t *Throttle) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// Allow kiểm tra xem có thể thực hiện request mới ngay hay không
func (t *Throttle) Allow() bool {
	return t.limiter.Allow()
}
