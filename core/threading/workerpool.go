package threading

import (
	"fmt"
	"strconv"
	"time"
)

// ErrProcessTimeout is returned by WorkerPool to indicate that there were no free goroutines during some period of time.
var ErrProcessTimeout = fmt.Errorf("process error: timed out")

type (
	WorkerPool struct {
		workers chan struct{}
		tasks   chan Task
	}
)

func NewWorkerPool(maxWorkerNum int, bufferSize int, spawnWorkerNum int) *WorkerPool {
	if spawnWorkerNum <= 0 && bufferSize > 0 {
		panic("dead queue configuration detected")
	}
	if spawnWorkerNum > maxWorkerNum {
		panic("spawn worker num larger than max worker num")
	}

	wp := &WorkerPool{
		workers: make(chan struct{}, maxWorkerNum),
		tasks:   make(chan Task, bufferSize),
	}

	for i := 0; i < spawnWorkerNum; i++ {
		wp.workers <- struct{}{}
		NewWorker(strconv.Itoa(len(wp.workers)), wp.tasks, nil)
	}

	return wp
}

// Submit hands the task to an idle worker, spawning one while under the worker cap.
func (wp *WorkerPool) Submit(task Task) TaskCancelFunc {
	cancel, _ := wp.process(task, nil)
	return cancel
}

// SubmitTimeout is Submit failing with ErrProcessTimeout when no worker takes the task in time.
func (wp *WorkerPool) SubmitTimeout(timeout time.Duration, task Task) (TaskCancelFunc, error) {
	return wp.process(task, time.After(timeout))
}

func (wp *WorkerPool) process(task Task, timeout <-chan time.Time) (TaskCancelFunc, error) {
	cancel := func() bool {
		if bt, ok := task.(interface{ Cancel() bool }); ok {
			return bt.Cancel()
		}
		return false
	}

	select {
	case <-timeout:
		return nil, ErrProcessTimeout

	case wp.tasks <- task:
		return cancel, nil

	case wp.workers <- struct{}{}:
		NewWorker(strconv.Itoa(len(wp.workers)), wp.tasks, task)
		return cancel, nil
	}
}
