// ABOUTME: Fixed-width worker pool for enrichment dispatch
// ABOUTME: A failed task never aborts its siblings
package core

import "sync"

// Pool runs tasks across a fixed number of goroutines
type Pool struct {
	width int
}

// NewPool creates a pool of the given width, clamped to at least 1
func NewPool(width int) *Pool {
	if width < 1 {
		width = 1
	}
	return &Pool{width: width}
}

// Width returns the pool's goroutine count
func (p *Pool) Width() int { return p.width }

// Run executes every task and blocks until all finish, returning how many
// succeeded and how many returned an error
func (p *Pool) Run(tasks []func() error) (ok, failed int) {
	if len(tasks) == 0 {
		return 0, 0
	}

	queue := make(chan func() error, len(tasks))
	for _, task := range tasks {
		queue <- task
	}
	close(queue)

	results := make(chan error, len(tasks))
	var wg sync.WaitGroup
	for i := 0; i < p.width; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range queue {
				results <- task()
			}
		}()
	}
	wg.Wait()
	close(results)

	for err := range results {
		if err != nil {
			failed++
		} else {
			ok++
		}
	}
	return ok, failed
}
