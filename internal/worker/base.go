package worker

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Handler processes one job. It runs on a pool goroutine.
type Handler[T any] func(ctx context.Context, workerID int, job T)

// WorkerPool runs a fixed set of goroutines over a bounded job buffer.
type WorkerPool[T any] struct {
	name       string
	jobs       chan T
	handle     Handler[T]
	numWorkers int
	logger     *logrus.Logger

	mu     sync.RWMutex
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWorkerPool[T any](name string, numWorkers, bufSize int, handle Handler[T], logger *logrus.Logger) *WorkerPool[T] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool[T]{
		name:       name,
		jobs:       make(chan T, bufSize),
		handle:     handle,
		numWorkers: numWorkers,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}
