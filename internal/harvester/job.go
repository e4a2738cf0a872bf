package harvester

import (
	"sync"
	"sync/atomic"
)

// Status là trạng thái terminal của một HarvestJob
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// HarvestJob là aggregate cho một lần harvest: target, counters và trạng thái.
// Job thuộc sở hữu của harvester trong suốt vòng đời, caller chỉ đọc.
type HarvestJob struct {
	Target FetchTarget

	mu         sync.RWMutex
	status     Status
	reason     string
	exportPath string

	pagesFetched      int32
	recordsNormalized int32
	recordsDropped    int32

	abandoned   chan struct{}
	abandonOnce sync.Once
	failOnce    sync.Once
}

func NewJob(target FetchTarget) *HarvestJob {
	return &HarvestJob{
		Target:    target,
		status:    StatusRunning,
		abandoned: make(chan struct{}),
	}
}

// fail ghi nhận lỗi fatal đầu tiên, các lỗi sau bị bỏ qua
func (j *HarvestJob) fail(reason string) {
	j.failOnce.Do(func() {
		j.mu.Lock()
		j.status = StatusFailed
		j.reason = reason
		j.mu.Unlock()
	})
}

func (j *HarvestJob) complete(exportPath string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status == StatusRunning {
		j.status = StatusCompleted
		j.exportPath = exportPath
	}
}

func (j *HarvestJob) Status() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status
}

// Reason là lý do thất bại, rỗng khi job chưa fail
func (j *HarvestJob) Reason() string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.reason
}

// ExportPath là đường dẫn file export, chỉ có giá trị khi job completed
func (j *HarvestJob) ExportPath() string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.exportPath
}

func (j *HarvestJob) PagesFetched() int {
	return int(atomic.LoadInt32(&j.pagesFetched))
}

func (j *HarvestJob) RecordsNormalized() int {
	return int(atomic.LoadInt32(&j.recordsNormalized))
}

// RecordsDropped đếm số bản ghi bị bỏ qua vì thiếu field bắt buộc
// hoặc detail không còn tồn tại
func (j *HarvestJob) RecordsDropped() int {
	return int(atomic.LoadInt32(&j.recordsDropped))
}

func (j *HarvestJob) addPage() {
	atomic.AddInt32(&j.pagesFetched, 1)
}

func (j *HarvestJob) addRecord() {
	atomic.AddInt32(&j.recordsNormalized, 1)
}

func (j *HarvestJob) addDropped() {
	atomic.AddInt32(&j.recordsDropped, 1)
}

// Abandon dừng việc lên lịch work mới, các request đang bay được drain
// chứ không bị force-kill
func (j *HarvestJob) Abandon() {
	j.abandonOnce.Do(func() {
		close(j.abandoned)
	})
}

func (j *HarvestJob) Abandoned() <-chan struct{} {
	return j.abandoned
}

func (j *HarvestJob) isAbandoned() bool {
	select {
	case <-j.abandoned:
		return true
	default:
		return false
	}
}
