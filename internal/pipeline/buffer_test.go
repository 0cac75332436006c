package pipeline

import (
	"sync"
	"testing"
)

func TestBufferOrdering(t *testing.T) {
	b := newEventBuffer[int](4)
	for i := 0; i < 3; i++ {
		if !b.push(i) {
			t.Fatalf("push %d failed", i)
		}
	}
	for i := 0; i < 3; i++ {
		got, ok := b.pop()
		if !ok || got != i {
			t.Fatalf("pop = %d,%v want %d", got, ok, i)
		}
	}
}

func TestBufferGrowsPastInitialCapacity(t *testing.T) {
	b := newEventBuffer[int](2)
	for i := 0; i < 100; i++ {
		if !b.push(i) {
			t.Fatalf("push %d failed", i)
		}
	}
	if b.len() != 100 {
		t.Fatalf("len = %d, want 100", b.len())
	}
	for i := 0; i < 100; i++ {
		got, ok := b.pop()
		if !ok || got != i {
			t.Fatalf("pop = %d,%v want %d", got, ok, i)
		}
	}
	if b.resizes == 0 {
		t.Fatal("expected at least one resize")
	}
}

func TestBufferCloseDrains(t *testing.T) {
	b := newEventBuffer[int](4)
	b.push(1)
	b.push(2)
	b.close()

	if b.push(3) {
		t.Fatal("push accepted after close")
	}

	if got, ok := b.pop(); !ok || got != 1 {
		t.Fatalf("pop = %d,%v", got, ok)
	}
	if got, ok := b.pop(); !ok || got != 2 {
		t.Fatalf("pop = %d,%v", got, ok)
	}
	if _, ok := b.pop(); ok {
		t.Fatal("pop reported data after drain")
	}
}

func TestBufferCloseWakesBlockedPop(t *testing.T) {
	b := newEventBuffer[int](4)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, ok := b.pop(); ok {
			t.Error("blocked pop returned data from an empty closed buffer")
		}
	}()

	b.close()
	wg.Wait()
}

func TestBufferConcurrentProducers(t *testing.T) {
	b := newEventBuffer[int](4)

	const producers, perProducer = 8, 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				b.push(i)
			}
		}()
	}
	wg.Wait()

	if b.len() != producers*perProducer {
		t.Fatalf("len = %d, want %d", b.len(), producers*perProducer)
	}
}
