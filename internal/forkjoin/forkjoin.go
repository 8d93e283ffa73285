// Package forkjoin runs groups of independent tasks in parallel under a shared
// worker budget and waits for all of them to finish.
//
// A Scheduler never blocks waiting for a free worker: when the budget is
// exhausted the forking goroutine runs the task itself. This keeps nested
// Run calls (a task that forks its own sub-tasks) free of deadlocks no matter
// how deep the recursion goes.
package forkjoin

import (
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Scheduler bounds the number of goroutines running forked tasks.
type Scheduler struct {
	workers int

	// tokens holds workers-1 slots; the goroutine calling Run is the
	// remaining worker. Nil when workers <= 1.
	tokens *semaphore.Weighted
}

// New returns a Scheduler with the given worker budget. A budget <= 0 uses
// runtime.GOMAXPROCS(0). A budget of 1 runs every task inline, in order.
func New(workers int) *Scheduler {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	s := &Scheduler{workers: workers}
	if workers > 1 {
		s.tokens = semaphore.NewWeighted(int64(workers - 1))
	}
	return s
}

// Workers returns the worker budget.
func (s *Scheduler) Workers() int {
	return s.workers
}

// IsSequential reports whether every task runs inline on the caller.
func (s *Scheduler) IsSequential() bool {
	return s.tokens == nil
}

// Run executes tasks and returns after all of them have completed.
//
// Every task but the last is offered to a new goroutine if a worker token is
// free, otherwise it runs inline before the next one is considered. The last
// task always runs on the caller. Tasks must not depend on each other's
// results: they may run in any order, including simultaneously. Everything a
// task wrote is visible to the caller once Run returns.
func (s *Scheduler) Run(tasks ...func()) {
	if len(tasks) == 0 {
		return
	}
	last := len(tasks) - 1
	if s.tokens == nil {
		for _, task := range tasks {
			task()
		}
		return
	}

	var wg sync.WaitGroup
	for _, task := range tasks[:last] {
		if s.tokens.TryAcquire(1) {
			wg.Go(func() {
				defer s.tokens.Release(1)
				task()
			})
			continue
		}
		task()
	}
	tasks[last]()
	wg.Wait()
}
