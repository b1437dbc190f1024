package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

var ErrPoolStopped = errors.New("worker pool stopped")

type Job func(ctx context.Context)

// Pool runs jobs on a fixed number of goroutines fed by a bounded backlog.
// When the backlog is full the submitting goroutine runs the job itself.
type Pool struct {
	workerCount int
	jobChan     chan Job
	wg          sync.WaitGroup
	log         zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	started bool
	stopped bool
}

func NewPool(workerCount, queueSize int, log zerolog.Logger) *Pool {
	if workerCount <= 0 {
		workerCount = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		workerCount: workerCount,
		jobChan:     make(chan Job, queueSize),
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true

	p.log.Info().Int("worker_count", p.workerCount).Int("queue_size", cap(p.jobChan)).Msg("starting worker pool")
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Submit queues job, or runs it on the caller when the backlog is full.
func (p *Pool) Submit(job Job) error {
	p.mu.RLock()
	if p.stopped {
		p.mu.RUnlock()
		return ErrPoolStopped
	}
	select {
	case p.jobChan <- job:
		p.mu.RUnlock()
		return nil
	default:
	}
	p.wg.Add(1)
	p.mu.RUnlock()

	p.log.Warn().Msg("worker pool queue full, running job on caller")
	defer p.wg.Done()
	p.run(job)
	return nil
}

// Stop stops accepting jobs and waits for queued and running jobs. If ctx
// ends first, running jobs see their context canceled and Stop returns
// ctx.Err().
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	close(p.jobChan)
	p.mu.Unlock()

	p.log.Info().Msg("stopping worker pool")

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.log.Info().Msg("worker pool stopped")
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		p.log.Warn().Msg("worker pool drain timed out, running jobs canceled")
		return ctx.Err()
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	log := p.log.With().Int("worker_id", id).Logger()
	log.Debug().Msg("worker started")

	for job := range p.jobChan {
		p.run(job)
	}
	log.Debug().Msg("worker stopping due to closed job channel")
}

func (p *Pool) run(job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Msg("job panicked")
		}
	}()
	job(p.ctx)
}
