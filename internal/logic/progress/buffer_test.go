package progress

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateBuffer(t *testing.T) {
	b := newUpdateBuffer()
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.Flush())

	b.Add(&SenderUpdate{Signature: "sig1", Network: "mainnet", Sender: "A"})
	b.Add(&SenderUpdate{Signature: "sig2", Network: "mainnet", Sender: "B"})
	assert.Equal(t, 2, b.Len())

	flushed := b.Flush()
	assert.Len(t, flushed, 2)
	assert.Equal(t, "sig1", flushed[0].Signature)

	// Flush 后缓冲清空
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.Flush())
}

func TestUpdateBuffer_Concurrent(t *testing.T) {
	b := newUpdateBuffer()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b.Add(&SenderUpdate{Signature: "sig", Network: "devnet", Sender: "X"})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800, b.Len())
	assert.Len(t, b.Flush(), 800)
}
