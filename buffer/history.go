package buffer

const defaultHistoryLimit = 64

// History remembers the selection sets replaced by scope expansion so they
// can be restored one step at a time.
type History struct {
	entries [][]Selection
	limit   int
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return &History{limit: limit}
}

// Push records a copy of sels. The oldest entry is dropped past the limit.
func (h *History) Push(sels []Selection) {
	entry := make([]Selection, len(sels))
	copy(entry, sels)
	h.entries = append(h.entries, entry)
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
}

// Pop returns the most recent selection set.
func (h *History) Pop() ([]Selection, bool) {
	if len(h.entries) == 0 {
		return nil, false
	}
	top := h.entries[len(h.entries)-1]
	h.entries = h.entries[:len(h.entries)-1]
	return top, true
}

func (h *History) Clear() {
	h.entries = h.entries[:0]
}

func (h *History) Len() int {
	return len(h.entries)
}
