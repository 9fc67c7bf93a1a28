package worker

import "context"

// worker drains jobs until the channel is closed or the pool is cancelled.
func (p *WorkerPool[T]) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			p.logger.Debugf("%s worker %d: context cancelled, exiting", p.name, id)
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.handle(ctx, id, job)
		}
	}
}
