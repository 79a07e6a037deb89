package place

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// ExecMode selects how a graph run is scheduled.
type ExecMode int

const (
	// ExecParallel runs ready tasks on a shared worker pool.
	ExecParallel ExecMode = iota
	// ExecSequential walks the node set in deterministic topological order
	// on the calling goroutine. Same nodes, same results; useful for
	// debugging.
	ExecSequential
)

// Executor runs a task graph to completion. Run is synchronous: it does not
// return until every node has executed, so an iteration is atomic from the
// driver's viewpoint.
type Executor struct {
	mode    ExecMode
	workers int
}

// NewExecutor creates an executor. workers <= 0 defaults to NumCPU.
func NewExecutor(mode ExecMode, workers int) *Executor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Executor{mode: mode, workers: workers}
}

// Run executes every node of the graph once.
func (e *Executor) Run(g *Graph) {
	if e.mode == ExecSequential {
		// Builder emits nodes in topological order, so id order is a valid
		// sequential schedule.
		for i := range g.nodes {
			g.nodes[i].r.run()
		}
		return
	}
	e.runParallel(g)
}

func (e *Executor) runParallel(g *Graph) {
	n := len(g.nodes)
	if n == 0 {
		return
	}

	// Per-run predecessor counts; the graph template itself is never
	// mutated, so runs can reuse one graph back to back.
	pending := make([]int32, n)
	ready := make(chan int, n)
	for id := range g.nodes {
		pending[id] = int32(len(g.nodes[id].preds))
		if pending[id] == 0 {
			ready <- id
		}
	}

	var wg sync.WaitGroup
	wg.Add(n)

	workers := e.workers
	if workers > n {
		workers = n
	}
	for w := 0; w < workers; w++ {
		go func() {
			for id := range ready {
				g.nodes[id].r.run()
				for _, s := range g.succs[id] {
					if atomic.AddInt32(&pending[s], -1) == 0 {
						ready <- s
					}
				}
				wg.Done()
			}
		}()
	}

	wg.Wait()
	close(ready)
}
