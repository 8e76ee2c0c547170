package debounce

import (
	"sync"
	"time"
)

// Batcher collects items and hands them over together once no new item
// has arrived for delay
type Batcher[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	handle  func([]T)
	batch   []T
	timer   *time.Timer
	seq     uint64
	stopped bool
}

// NewBatcher creates a batcher that calls handle with each batch
func NewBatcher[T any](delay time.Duration, handle func([]T)) *Batcher[T] {
	return &Batcher[T]{delay: delay, handle: handle}
}

// Add queues item and restarts the quiet period
func (b *Batcher[T]) Add(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return
	}
	b.batch = append(b.batch, item)
	if b.timer != nil {
		b.timer.Stop()
	}
	b.seq++
	seq := b.seq
	b.timer = time.AfterFunc(b.delay, func() { b.fire(seq) })
}

func (b *Batcher[T]) fire(seq uint64) {
	b.mu.Lock()
	if seq != b.seq {
		b.mu.Unlock()
		return
	}
	batch := b.take()
	b.mu.Unlock()

	if len(batch) > 0 {
		b.handle(batch)
	}
}

// take must be called with mu held
func (b *Batcher[T]) take() []T {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.seq++
	batch := b.batch
	b.batch = nil
	return batch
}

// Len returns the number of queued items
func (b *Batcher[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.batch)
}

// Flush hands over the queued items now
func (b *Batcher[T]) Flush() {
	b.mu.Lock()
	batch := b.take()
	b.mu.Unlock()

	if len(batch) > 0 {
		b.handle(batch)
	}
}

// Stop flushes what is queued and rejects further items
func (b *Batcher[T]) Stop() {
	b.mu.Lock()
	b.stopped = true
	batch := b.take()
	b.mu.Unlock()

	if len(batch) > 0 {
		b.handle(batch)
	}
}
