package worker

func (p *WorkerPool[T]) Start() {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(p.ctx, i)
	}
	p.logger.Infof("%s pool: started %d workers", p.name, p.numWorkers)
}

// Submit enqueues job without blocking. It reports false when the buffer is
// full or the pool is stopped.
func (p *WorkerPool[T]) Submit(job T) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return false
	}
	select {
	case p.jobs <- job:
		return true
	default:
		return false
	}
}

// Stop stops accepting jobs, lets workers drain what is buffered and waits.
func (p *WorkerPool[T]) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
	p.logger.Infof("%s pool: all workers stopped", p.name)
}
