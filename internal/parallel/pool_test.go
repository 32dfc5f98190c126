package parallel

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestWorkerPool_RunsAllTasks(t *testing.T) {
	p := NewWorkerPool(4)
	defer p.Stop()

	var counter atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		if !p.Submit(func() {
			defer wg.Done()
			counter.Add(1)
		}) {
			t.Fatal("Submit returned false on a running pool")
		}
	}
	wg.Wait()
	if counter.Load() != 100 {
		t.Fatalf("ran %d tasks, want 100", counter.Load())
	}
}

func TestWorkerPool_DefaultWorkers(t *testing.T) {
	p := NewWorkerPool(0)
	defer p.Stop()
	if p.Workers() <= 0 {
		t.Fatalf("Workers() = %d", p.Workers())
	}
}

func TestWorkerPool_SubmitAfterStop(t *testing.T) {
	p := NewWorkerPool(2)
	p.Stop()
	if p.Submit(func() {}) {
		t.Fatal("Submit accepted work after Stop")
	}
	// Stop is idempotent.
	p.Stop()
}
