package progress

import (
	"sync"
)

type updateBuffer struct {
	mu      sync.Mutex
	pending []*SenderUpdate
}

func newUpdateBuffer() *updateBuffer {
	return &updateBuffer{}
}

func (b *updateBuffer) Add(update *SenderUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, update)
}

func (b *updateBuffer) Flush() []*SenderUpdate {
	b.mu.Lock()
	defer b.mu.Unlock()

	flushed := b.pending
	b.pending = nil // reset
	return flushed
}

func (b *updateBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
