package harvester

// Progress là một bản tin tiến độ fire-and-forget cho UI bên ngoài
type Progress struct {
	Phase             string `json:"phase"`
	PagesFetched      int    `json:"pages_fetched"`
	RecordsNormalized int    `json:"records_normalized"`
}

// notify đẩy một bản tin tiến độ không chặn: consumer chậm thì bản tin
// cũ nhất bị drop thay vì backpressure lên crawl
func (h *Harvester) notify(p Progress) {
	select {
	case h.progress <- p:
		return
	default:
	}

	// Channel đầy, bỏ bản tin cũ nhất rồi thử lại một lần
	select {
	case <-h.progress:
	default:
	}
	select {
	case h.progress <- p:
	default:
	}
}

// Progress trả về channel tiến độ cho consumer bên ngoài
func (h *Harvester) Progress() <-chan Progress {
	return h.progress
}
