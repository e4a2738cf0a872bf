package harvester

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkQueue_SelfClosesWhenDrained(t *testing.T) {
	q := newWorkQueue("page1")

	url, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, "page1", url)

	// Trang này phát hiện trang tiếp theo
	q.Push("page2")
	q.Finish()

	url, ok = q.Pop()
	require.True(t, ok)
	assert.Equal(t, "page2", url)

	// Trang cuối, không push gì thêm
	q.Finish()

	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestWorkQueue_PopBlocksWhileWorkInFlight(t *testing.T) {
	q := newWorkQueue("page1")

	_, ok := q.Pop()
	require.True(t, ok)

	// Worker thứ hai chặn ở Pop vì trang đang bay có thể đẻ thêm trang
	got := make(chan string, 1)
	go func() {
		url, ok := q.Pop()
		if ok {
			got <- url
		} else {
			got <- ""
		}
	}()

	q.Push("page2")
	q.Finish()

	assert.Equal(t, "page2", <-got)
}

func TestWorkQueue_CloseCancelsWaiters(t *testing.T) {
	q := newWorkQueue("page1")
	_, ok := q.Pop()
	require.True(t, ok)

	var wg sync.WaitGroup
	results := make(chan bool, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := q.Pop()
			results <- ok
		}()
	}

	q.Close()
	wg.Wait()
	close(results)

	for ok := range results {
		assert.False(t, ok)
	}

	// Push sau Close là no-op
	q.Push("late")
	_, ok = q.Pop()
	assert.False(t, ok)
}
