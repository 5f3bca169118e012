package threading

import "github.com/omerfarukorc/ulog-analysis/core/logger"

type Worker struct {
	ID string
}

// NewWorker starts a goroutine draining taskChan, optionally running firstTask before the loop.
func NewWorker(workerID string, taskChan chan Task, firstTask Task) *Worker {
	w := &Worker{
		ID: workerID,
	}

	GoSafe(func() {
		if firstTask != nil && !firstTask.IsIgnoreable() {
			firstTask.Process()
			firstTask.Complete()
			firstTask = nil // cut off reference
		}

		for task := range taskChan {
			if task.IsIgnoreable() {
				logger.Debug("task (ID: %s) has been canceled or done", task.GetID())
				continue
			}
			task.Process()
			task.Complete()
		}
	})
	return w
}
