package githubapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// RetryableError là lỗi tạm thời (mạng, 5xx, rate limit), caller được phép
// thử lại với backoff. SuggestedDelay là thời gian chờ gợi ý cho lần thử đầu.
type RetryableError struct {
	Reason         string
	SuggestedDelay time.Duration
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable: %s", e.Reason)
}

// FatalError là lỗi kết thúc, không thử lại (auth, not found, hết lượt retry)
type FatalError struct {
	Reason string
	Status int
}

func (e *FatalError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("fatal (status %d): %s", e.Status, e.Reason)
	}
	return fmt.Sprintf("fatal: %s", e.Reason)
}

func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

func IsNotFound(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe) && fe.Status == http.StatusNotFound
}

func IsAuthorization(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe) &&
		(fe.Status == http.StatusUnauthorized || fe.Status == http.StatusForbidden)
}
