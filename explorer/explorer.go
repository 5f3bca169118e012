// Package explorer is the analytical core of the tool: it keeps a bounded
// in-memory cache of parsed logs over the file store and answers topic, field,
// series, statistics and vehicle-info queries against them.
package explorer

import (
	"container/heap"
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/omerfarukorc/ulog-analysis/core/logger"
	"github.com/omerfarukorc/ulog-analysis/core/threading"
	"github.com/omerfarukorc/ulog-analysis/store"
	"github.com/omerfarukorc/ulog-analysis/ulog"
)

type (
	cachedLog struct {
		name     string
		log      *ulog.ULog
		callTime time.Time
	}

	logEntry struct {
		index int
		log   *cachedLog

		// ready is closed once the owning goroutine finished parsing,
		// err carries its outcome for the goroutines that waited.
		ready chan struct{}
		err   error
	}

	logHeap []*logEntry

	// Explorer serves queries against parsed logs. Parsed logs are cached,
	// least recently used ones are evicted once the cache is full.
	Explorer struct {
		cacheSize int
		maxPoints int
		logCache  sync.Map
		heap      logHeap
		store     *store.Store
		catalog   *store.Catalog
		pool      *threading.WorkerPool

		mu sync.Mutex
	}
)

func NewExplorer(s *store.Store, catalog *store.Catalog, cacheSize uint, maxPoints int) *Explorer {
	if cacheSize == 0 {
		cacheSize = 1
	}
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}

	workers := runtime.NumCPU()
	return &Explorer{
		cacheSize: int(cacheSize),
		maxPoints: maxPoints,
		heap:      make(logHeap, 0),
		store:     s,
		catalog:   catalog,
		pool:      threading.NewWorkerPool(workers, workers*4, workers),
	}
}

// Store exposes the underlying file store.
func (e *Explorer) Store() *store.Store {
	return e.store
}

// Catalog exposes the metadata catalog.
func (e *Explorer) Catalog() *store.Catalog {
	return e.catalog
}

// Open returns the parsed log for a stored file, through the cache or by
// parsing it from the store. Concurrent misses for the same file share a
// single parse: the first caller reserves the cache slot, the rest wait on it.
func (e *Explorer) Open(name string) (*ulog.ULog, error) {
	if val, loaded := e.logCache.Load(name); loaded {
		return e.await(val.(*logEntry))
	}

	entry := &logEntry{index: -1, ready: make(chan struct{})}
	if val, loaded := e.logCache.LoadOrStore(name, entry); loaded {
		return e.await(val.(*logEntry))
	}

	data, err := e.store.Read(name)
	if err == nil {
		var u *ulog.ULog
		if u, err = ulog.Parse(data); err != nil {
			err = fmt.Errorf("failed to parse log %s: %v", name, err)
		} else {
			if u.Truncated {
				logger.Warn("log %s is truncated, decoded prefix is served", name)
			}
			entry.log = &cachedLog{name: name, log: u, callTime: time.Now()}
		}
	}
	if err != nil {
		entry.err = err
		e.logCache.Delete(name)
		close(entry.ready)
		return nil, err
	}

	e.activate(entry)
	close(entry.ready)
	return entry.log.log, nil
}

func (e *Explorer) await(entry *logEntry) (*ulog.ULog, error) {
	<-entry.ready
	if entry.err != nil {
		return nil, entry.err
	}
	e.touch(entry)
	return entry.log.log, nil
}

// Prewarm parses a log on the worker pool so the first query hits the cache.
func (e *Explorer) Prewarm(name string) threading.TaskCancelFunc {
	return e.pool.Submit(&parseTask{
		BaseTask: threading.BaseTask{ID: "prewarm-" + name},
		explorer: e,
		name:     name,
	})
}

// Index parses one stored log and records its metadata in the catalog.
func (e *Explorer) Index(ctx context.Context, name string) error {
	info, err := e.store.Stat(name)
	if err != nil {
		return err
	}
	u, err := e.Open(name)
	if err != nil {
		return err
	}

	vehicle, _ := u.Info["sys_name"].(string)
	_, err = e.catalog.Upsert(ctx, store.LogRecord{
		FileName:   name,
		SizeBytes:  info.Size,
		DurationS:  u.DurationSeconds(),
		TopicCount: len(u.DataList()),
		Vehicle:    vehicle,
		UploadedAt: info.ModTime,
	})
	return err
}

// ActiveLogNum reports the number of logs currently cached.
func (e *Explorer) ActiveLogNum() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.heap)
}

func (e *Explorer) touch(entry *logEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	entry.log.callTime = time.Now()
	if entry.index >= 0 && entry.index < len(e.heap) {
		heap.Fix(&e.heap, entry.index)
	}
}

func (e *Explorer) activate(entry *logEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()

	heap.Push(&e.heap, entry)

	// shrink to the cache size, evicting the least recently used logs
	for len(e.heap) > e.cacheSize {
		oldest := heap.Pop(&e.heap).(*logEntry)
		// delete the map entry only if it is still the one we popped; a
		// newer entry for the same name must survive its predecessor
		if val, ok := e.logCache.Load(oldest.log.name); ok && val == oldest {
			e.logCache.Delete(oldest.log.name)
		}
		logger.Debug("evicted log %s from cache", oldest.log.name)
	}
}

type parseTask struct {
	threading.BaseTask
	explorer *Explorer
	name     string
}

func (t *parseTask) Process() {
	if _, err := t.explorer.Open(t.name); err != nil {
		logger.Error("prewarm of %s failed: %v", t.name, err)
	}
}

func (h logHeap) Len() int           { return len(h) }
func (h logHeap) Less(i, j int) bool { return h[i].log.callTime.Before(h[j].log.callTime) }
func (h logHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *logHeap) Push(x any)        { e := x.(*logEntry); e.index = len(*h); *h = append(*h, e) }

func (h *logHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}
