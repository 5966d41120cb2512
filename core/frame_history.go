package core

import "sync"

type frameHistory struct {
	mu    sync.Mutex
	items []FrameRecord
	head  int
	count int
}

func newFrameHistory(capacity int) frameHistory {
	if capacity < 1 {
		capacity = defaultFrameHistoryCapacity
	}
	return frameHistory{items: make([]FrameRecord, capacity)}
}

func (h *frameHistory) Add(record FrameRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.items) == 0 {
		return
	}

	h.items[h.head] = record
	h.head = (h.head + 1) % len(h.items)
	if h.count < len(h.items) {
		h.count++
	}
}

// Recent returns up to limit records, newest first. limit <= 0 returns all.
func (h *frameHistory) Recent(limit int) []FrameRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return nil
	}

	if limit <= 0 || limit > h.count {
		limit = h.count
	}

	out := make([]FrameRecord, 0, limit)
	for i := range limit {
		idx := (h.head - 1 - i + len(h.items)) % len(h.items)
		out = append(out, h.items[idx])
	}
	return out
}

func (h *frameHistory) Last() (FrameRecord, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return FrameRecord{}, false
	}

	idx := (h.head - 1 + len(h.items)) % len(h.items)
	return h.items[idx], true
}
