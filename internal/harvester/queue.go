package harvester

import (
	"sync"
)

// workQueue là hàng đợi page URL cho một job, an toàn cho nhiều worker.
// Queue tự đóng khi rỗng và không còn worker nào đang xử lý, vì continuation
// token chỉ được phát hiện từ trang trước đó.
type workQueue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	items    []string
	inflight int
	closed   bool
}

func newWorkQueue(seed string) *workQueue {
	q := &workQueue{
		items: []string{seed},
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push thêm một URL mới được phát hiện vào queue
func (q *workQueue) Push(url string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, url)
	q.cond.Signal()
}

// Pop lấy unit of work tiếp theo, chặn đến khi có item hoặc queue kết thúc.
// Trả về false khi không còn work nào nữa.
func (q *workQueue) Pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		if q.inflight == 0 {
			// Queue rỗng và không còn trang nào đang fetch: kết thúc
			q.closed = true
			q.cond.Broadcast()
			return "", false
		}
		q.cond.Wait()
	}

	if len(q.items) == 0 {
		return "", false
	}

	url := q.items[0]
	q.items = q.items[1:]
	q.inflight++
	return url, true
}

// Finish báo một unit of work đã xử lý xong
func (q *workQueue) Finish() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.inflight--
	if q.inflight == 0 && len(q.items) == 0 {
		q.closed = true
		q.cond.Broadcast()
		return
	}
	q.cond.Signal()
}

// Close hủy toàn bộ work còn lại trong queue (fatal failure hoặc abandon)
func (q *workQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.items = nil
	q.cond.Broadcast()
}
