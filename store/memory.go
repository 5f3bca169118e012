package store

import (
	"context"
	"fmt"
	"maps"
	"sync"
)

// MemoryRepository is the in-process IRepository used when no MongoDB catalog
// is configured, and by tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	tables map[string]map[string]map[string]any
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tables: make(map[string]map[string]map[string]any)}
}

func (r *MemoryRepository) Create(ctx context.Context, table string, record map[string]any) (string, error) {
	id, ok := record["_id"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("record needs a string _id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tables[table] == nil {
		r.tables[table] = make(map[string]map[string]any)
	}
	r.tables[table][id] = maps.Clone(record)
	return id, nil
}

func (r *MemoryRepository) ReadOne(ctx context.Context, table string, filter map[string]any) (map[string]any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, record := range r.tables[table] {
		if matches(record, filter) {
			return maps.Clone(record), nil
		}
	}
	return nil, fmt.Errorf("no record matching %v in %s", filter, table)
}

func (r *MemoryRepository) ReadAll(ctx context.Context, table string, filter map[string]any) ([]map[string]any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []map[string]any
	for _, record := range r.tables[table] {
		if matches(record, filter) {
			out = append(out, maps.Clone(record))
		}
	}
	return out, nil
}

func (r *MemoryRepository) Update(ctx context.Context, table string, filter map[string]any, update map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.tables[table] {
		if !matches(record, filter) {
			continue
		}
		if set, ok := update["$set"].(map[string]any); ok {
			maps.Copy(record, set)
		}
		return nil
	}
	return fmt.Errorf("no record matching %v in %s", filter, table)
}

func (r *MemoryRepository) Delete(ctx context.Context, table string, filter map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, record := range r.tables[table] {
		if matches(record, filter) {
			delete(r.tables[table], id)
			return nil
		}
	}
	return nil
}

func (r *MemoryRepository) Count(ctx context.Context, table string, filter map[string]any) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, record := range r.tables[table] {
		if matches(record, filter) {
			n++
		}
	}
	return n, nil
}

func matches(record, filter map[string]any) bool {
	for k, v := range filter {
		if record[k] != v {
			return false
		}
	}
	return true
}
