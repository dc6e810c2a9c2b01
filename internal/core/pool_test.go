// ABOUTME: Tests for the fixed-width worker pool
// ABOUTME: Counting, width clamping, and the concurrency ceiling
package core

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_CountsResults(t *testing.T) {
	pool := NewPool(4)
	boom := errors.New("boom")

	var tasks []func() error
	for i := 0; i < 10; i++ {
		fail := i%3 == 0
		tasks = append(tasks, func() error {
			if fail {
				return boom
			}
			return nil
		})
	}

	ok, failed := pool.Run(tasks)
	if ok != 6 || failed != 4 {
		t.Errorf("Run() = (%d, %d), want (6, 4)", ok, failed)
	}
}

func TestPool_EmptyTasks(t *testing.T) {
	ok, failed := NewPool(8).Run(nil)
	if ok != 0 || failed != 0 {
		t.Errorf("Run(nil) = (%d, %d), want (0, 0)", ok, failed)
	}
}

func TestPool_WidthClamped(t *testing.T) {
	if w := NewPool(0).Width(); w != 1 {
		t.Errorf("Width() = %d, want 1", w)
	}
	if w := NewPool(-5).Width(); w != 1 {
		t.Errorf("Width() = %d, want 1", w)
	}
}

func TestPool_BoundsConcurrency(t *testing.T) {
	const width = 3
	pool := NewPool(width)

	var running, peak int64
	tasks := make([]func() error, 20)
	for i := range tasks {
		tasks[i] = func() error {
			n := atomic.AddInt64(&running, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt64(&running, -1)
			return nil
		}
	}

	ok, failed := pool.Run(tasks)
	if ok != 20 || failed != 0 {
		t.Fatalf("Run() = (%d, %d), want (20, 0)", ok, failed)
	}
	if peak > width {
		t.Errorf("peak concurrency = %d, want <= %d", peak, width)
	}
}

func TestPool_WidthOneIsSequential(t *testing.T) {
	pool := NewPool(1)

	var order []int
	tasks := make([]func() error, 5)
	for i := range tasks {
		n := i
		tasks[i] = func() error {
			order = append(order, n)
			return nil
		}
	}

	pool.Run(tasks)
	for i, n := range order {
		if n != i {
			t.Fatalf("order = %v, want sequential dispatch at width 1", order)
		}
	}
}
