package sim

import (
	"log/slog"
	"math/rand"
	"sync"
)

// parallelThreshold is the minimum agent count to use the worker pool.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// workerScratch holds per-worker state. Each worker owns its RNG so random
// turns never contend on a shared source.
type workerScratch struct {
	rng *rand.Rand
}

// workChunk represents a contiguous range of agents for a worker to process.
type workChunk struct {
	start, end int
}

// parallelState holds the worker pool that runs sense+move each tick.
type parallelState struct {
	scratches  []workerScratch
	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newParallelState(numWorkers int, seed int64) *parallelState {
	if numWorkers < 1 {
		numWorkers = 1
	}
	scratches := make([]workerScratch, numWorkers)
	for i := range scratches {
		scratches[i].rng = rand.New(rand.NewSource(seed + int64(i)*7919 + 1))
	}
	return &parallelState{
		numWorkers: numWorkers,
		scratches:  scratches,
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(s *Simulation) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(s, i)
	}
	slog.Debug("sim workers started", "workers", p.numWorkers)
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
	slog.Debug("sim workers stopped", "workers", p.numWorkers)
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(s *Simulation, workerID int) {
	defer p.wg.Done()
	scratch := &p.scratches[workerID]

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			s.computeChunk(chunk.start, chunk.end, scratch)
			p.doneChan <- struct{}{}
		}
	}
}

// partition splits n agents into at most workers contiguous chunks.
func partition(n, workers int) []workChunk {
	if n <= 0 || workers < 1 {
		return nil
	}
	chunkSize := (n + workers - 1) / workers

	chunks := make([]workChunk, 0, workers)
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		chunks = append(chunks, workChunk{start: start, end: end})
	}
	return chunks
}

// computeParallel dispatches one chunk per worker and waits for all of them.
// Returning is the barrier: every deposit of the tick has landed.
func (s *Simulation) computeParallel(n int) {
	// Ensure workers are running
	if !s.parallel.running {
		s.parallel.startWorkers(s)
	}

	chunks := partition(n, s.parallel.numWorkers)
	for _, c := range chunks {
		s.parallel.workChan <- c
	}

	// Wait for all chunks to complete
	for range chunks {
		<-s.parallel.doneChan
	}
}

// computeChunk runs sense then move for agents [i0, i1).
// Reads come from the immutable tick snapshot; each agent writes only its own
// result slot and its deposit into the shared field.
func (s *Simulation) computeChunk(i0, i1 int, scratch *workerScratch) {
	for i := i0; i < i1; i++ {
		a := s.snapshots[i]
		a.Sense(&s.env, &s.params, i, scratch.rng)
		a.Move(s.field, &s.params)
		s.results[i] = a
	}
}

// stopParallelWorkers should be called when shutting down the simulation.
func (s *Simulation) stopParallelWorkers() {
	if s.parallel != nil {
		s.parallel.stopWorkers()
	}
}
