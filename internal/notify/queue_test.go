package notify

import (
	"sync"
	"testing"
	"time"
)

func TestQueue_FIFO(t *testing.T) {
	q := newQueue[int](2)

	for i := 0; i < 5; i++ {
		if !q.push(i) {
			t.Fatalf("push(%d) returned false", i)
		}
	}
	if q.len() != 5 {
		t.Errorf("len() = %d, want 5", q.len())
	}
	if q.grown == 0 {
		t.Error("queue should have grown past initial capacity")
	}

	for i := 0; i < 5; i++ {
		v, ok := q.pop()
		if !ok || v != i {
			t.Fatalf("pop() = %d, %v; want %d, true", v, ok, i)
		}
	}
}

func TestQueue_GrowAfterWrap(t *testing.T) {
	q := newQueue[int](3)

	q.push(1)
	q.push(2)
	q.pop()
	q.push(3)
	q.push(4) // wraps
	q.push(5) // grows while wrapped

	want := []int{2, 3, 4, 5}
	for _, w := range want {
		v, _ := q.pop()
		if v != w {
			t.Fatalf("pop() = %d, want %d", v, w)
		}
	}
}

func TestQueue_CloseDrainsThenStops(t *testing.T) {
	q := newQueue[string](4)
	q.push("a")
	q.close()

	if q.push("b") {
		t.Error("push after close should return false")
	}
	if v, ok := q.pop(); !ok || v != "a" {
		t.Errorf("pop() = %q, %v; want a, true", v, ok)
	}
	if _, ok := q.pop(); ok {
		t.Error("pop() on closed empty queue should return false")
	}
}

func TestQueue_PopBlocksUntilPush(t *testing.T) {
	q := newQueue[int](1)

	var wg sync.WaitGroup
	var got int
	wg.Add(1)
	go func() {
		defer wg.Done()
		got, _ = q.pop()
	}()

	time.Sleep(20 * time.Millisecond)
	q.push(7)
	wg.Wait()

	if got != 7 {
		t.Errorf("got %d, want 7", got)
	}
}
