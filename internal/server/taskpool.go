package server

import (
	"runtime"

	"github.com/panjf2000/ants/v2"
)

// constructionPool bounds the concurrency used to build Worker endpoints in
// Supervisor.Start; it is never touched once a Worker's main loop starts, so
// it cannot violate the shared-nothing discipline of the datapath.
var constructionPool, _ = ants.NewPool(runtime.NumCPU())

// submitConstruction runs task on the bounded pool and returns a done
// channel closed once task has returned.
func submitConstruction(task func()) <-chan struct{} {
	done := make(chan struct{})
	if err := constructionPool.Submit(func() {
		defer close(done)
		task()
	}); err != nil {
		// Pool exhaustion during Start only: fall back to running
		// inline rather than losing the work.
		task()
		close(done)
	}
	return done
}
