package utils

// Window is the bounded slice of a growing on-chain sequence that a
// collection view shows: always the most recent Size items.
type Window struct {
	Offset uint64 `json:"offset"`
	Size   int    `json:"size"`
}

// ComputeWindow bounds a sequence of total items by cap. The window always
// covers [Offset, Offset+Size) — the tail of the sequence — so views show
// the most recent items. total=0 yields an empty window, not an error.
func ComputeWindow(total uint64, cap int) Window {
	if cap < 0 {
		cap = 0
	}
	size := total
	if uint64(cap) < total {
		size = uint64(cap)
	}
	return Window{
		Offset: total - size,
		Size:   int(size),
	}
}

// IDs enumerates the identifiers covered by the window, in index order.
func (w Window) IDs() []uint64 {
	ids := make([]uint64, w.Size)
	for i := range ids {
		ids[i] = w.Offset + uint64(i)
	}
	return ids
}

// Reverse flips a slice in place. Collection views reverse index order into
// recency order as a fixed display contract.
func Reverse[T any](items []T) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
