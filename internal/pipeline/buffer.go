package pipeline

import "sync"

// eventBuffer is an unbounded-in-practice queue between the pollers and
// the consume loop. It grows by doubling once it crosses 70% occupancy,
// so a burst of polled events never blocks a sweep; the delivery queue
// downstream is where backpressure actually happens.
type eventBuffer[T any] struct {
	mu       sync.Mutex
	cond     *sync.Cond
	buf      []T
	head     int
	tail     int
	count    int
	capacity int
	closed   bool

	totalIn  int64
	totalOut int64
	resizes  int
}

func newEventBuffer[T any](initialCapacity int) *eventBuffer[T] {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	b := &eventBuffer[T]{
		buf:      make([]T, initialCapacity),
		capacity: initialCapacity,
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// push enqueues an item, growing first when the buffer is near full.
// Returns false once the buffer is closed.
func (b *eventBuffer[T]) push(item T) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false
	}

	threshold := (b.capacity * 70) / 100
	if threshold < 1 {
		threshold = 1
	}
	if b.count+1 >= threshold {
		b.grow()
	}

	b.buf[b.tail] = item
	b.tail = (b.tail + 1) % b.capacity
	b.count++
	b.totalIn++

	b.cond.Signal()
	return true
}

// pop blocks until an item is available or the buffer is closed and
// drained.
func (b *eventBuffer[T]) pop() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.count == 0 && !b.closed {
		b.cond.Wait()
	}

	if b.count == 0 {
		var zero T
		return zero, false
	}

	item := b.buf[b.head]
	var zero T
	b.buf[b.head] = zero
	b.head = (b.head + 1) % b.capacity
	b.count--
	b.totalOut++

	return item, true
}

// close stops intake. Consumers drain remaining items, then pop
// reports closed.
func (b *eventBuffer[T]) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.cond.Broadcast()
}

func (b *eventBuffer[T]) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// grow doubles capacity and re-linearizes the ring. Lock held.
func (b *eventBuffer[T]) grow() {
	newBuf := make([]T, b.capacity*2)

	if b.count > 0 {
		if b.head < b.tail {
			copy(newBuf, b.buf[b.head:b.tail])
		} else {
			n := copy(newBuf, b.buf[b.head:])
			copy(newBuf[n:], b.buf[:b.tail])
		}
	}

	b.buf = newBuf
	b.head = 0
	b.tail = b.count
	b.capacity = len(newBuf)
	b.resizes++
}
