package threading

import (
	"runtime"
	"strconv"
	"sync"
	"testing"
)

var (
	wg             sync.WaitGroup
	taskNum        int = 100000
	bufferSize     int = runtime.NumCPU() * 1000
	maxWorkerNum   int = runtime.NumCPU() * 3
	spawnWorkerNum int = runtime.NumCPU() * 2
)

type mockedTask struct {
	BaseTask
}

func newMockedTask(id string) *mockedTask {
	return &mockedTask{BaseTask{ID: id}}
}

func (t *mockedTask) Process() {
	wg.Done()
}

func BenchmarkWorkerPool(b *testing.B) {
	wp := NewWorkerPool(maxWorkerNum, bufferSize, spawnWorkerNum)
	for i := 0; i < b.N; i++ {
		wg.Add(taskNum)
		for taskIndex := 0; taskIndex < taskNum; taskIndex++ {
			wp.Submit(newMockedTask(strconv.Itoa(taskIndex)))
		}
		wg.Wait()
	}
}

func TestWorkerPool(t *testing.T) {
	wp := NewWorkerPool(maxWorkerNum, bufferSize, spawnWorkerNum)
	wg.Add(taskNum)
	for taskIndex := 0; taskIndex < taskNum; taskIndex++ {
		wp.Submit(newMockedTask(strconv.Itoa(taskIndex)))
	}
	wg.Wait()
}

func TestTaskCancel(t *testing.T) {
	wp := NewWorkerPool(maxWorkerNum, bufferSize, spawnWorkerNum)
	wg.Add(taskNum)
	for taskIndex := 0; taskIndex < taskNum; taskIndex++ {
		cancel := wp.Submit(newMockedTask(strconv.Itoa(taskIndex)))
		if taskIndex%20000 == 0 {
			if cancel() {
				wg.Done()
			}
		}
	}
	wg.Wait()
}
