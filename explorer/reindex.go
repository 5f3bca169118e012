package explorer

import (
	"context"
	"sync"

	"github.com/omerfarukorc/ulog-analysis/core/logger"
	"github.com/omerfarukorc/ulog-analysis/core/queue"
)

// Reindex walks the store and refreshes the catalog entry of every stored
// log through a producer/consumer queue. It blocks until the walk is done.
func (e *Explorer) Reindex(ctx context.Context, consumers int) error {
	files, err := e.store.List()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return nil
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}

	q := queue.NewQueue("catalog-reindex",
		func() (queue.Producer[string], error) {
			return &fileProducer{names: names}, nil
		},
		func() (queue.Consumer[string], error) {
			return &indexConsumer{ctx: ctx, explorer: e}, nil
		},
	)
	q.SetNumProducer(1)
	if consumers <= 0 {
		consumers = 2
	}
	q.SetNumConsumer(consumers)
	q.Start()

	logger.Info("catalog reindex finished for %d log(s)", len(names))
	return nil
}

type fileProducer struct {
	mu    sync.Mutex
	names []string
}

func (p *fileProducer) Produce() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.names) == 0 {
		return "", false
	}
	name := p.names[0]
	p.names = p.names[1:]
	return name, true
}

type indexConsumer struct {
	ctx      context.Context
	explorer *Explorer
}

func (c *indexConsumer) Consume(name string) error {
	if err := c.explorer.Index(c.ctx, name); err != nil {
		logger.Error("failed to index %s: %v", name, err)
		return err
	}
	return nil
}
