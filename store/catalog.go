package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const catalogTable = "logs"

type (
	// IRepository is the persistence boundary of the catalog. Implemented by
	// the in-memory repository here and the MongoDB repository in store/mongo.
	IRepository interface {
		Create(ctx context.Context, table string, record map[string]any) (string, error)
		ReadOne(ctx context.Context, table string, filter map[string]any) (map[string]any, error)
		ReadAll(ctx context.Context, table string, filter map[string]any) ([]map[string]any, error)
		Update(ctx context.Context, table string, filter map[string]any, update map[string]any) error
		Delete(ctx context.Context, table string, filter map[string]any) error
		Count(ctx context.Context, table string, filter map[string]any) (int64, error)
	}

	// LogRecord is the catalog entry for one stored log file.
	LogRecord struct {
		ID         string    `json:"id"`
		FileName   string    `json:"file_name"`
		SizeBytes  int64     `json:"size_bytes"`
		DurationS  float64   `json:"duration_s"`
		TopicCount int       `json:"topic_count"`
		Vehicle    string    `json:"vehicle"`
		UploadedAt time.Time `json:"uploaded_at"`
	}

	// Catalog records log metadata in a repository.
	Catalog struct {
		repo IRepository
	}
)

func NewCatalog(repo IRepository) *Catalog {
	return &Catalog{repo: repo}
}

// Upsert records the metadata of one log file, replacing an existing entry
// for the same file name.
func (c *Catalog) Upsert(ctx context.Context, rec LogRecord) (string, error) {
	filter := map[string]any{"file_name": rec.FileName}

	existing, err := c.repo.ReadOne(ctx, catalogTable, filter)
	if err == nil && existing != nil {
		update := map[string]any{"$set": map[string]any{
			"size_bytes":  rec.SizeBytes,
			"duration_s":  rec.DurationS,
			"topic_count": rec.TopicCount,
			"vehicle":     rec.Vehicle,
			"uploaded_at": rec.UploadedAt,
		}}
		if err := c.repo.Update(ctx, catalogTable, filter, update); err != nil {
			return "", fmt.Errorf("failed to update catalog entry for %s: %v", rec.FileName, err)
		}
		id, _ := existing["_id"].(string)
		return id, nil
	}

	id := "log-" + uuid.New().String()
	record := map[string]any{
		"_id":         id,
		"file_name":   rec.FileName,
		"size_bytes":  rec.SizeBytes,
		"duration_s":  rec.DurationS,
		"topic_count": rec.TopicCount,
		"vehicle":     rec.Vehicle,
		"uploaded_at": rec.UploadedAt,
	}
	if _, err := c.repo.Create(ctx, catalogTable, record); err != nil {
		return "", fmt.Errorf("failed to create catalog entry for %s: %v", rec.FileName, err)
	}
	return id, nil
}

// Get looks up the catalog entry of one file.
func (c *Catalog) Get(ctx context.Context, fileName string) (LogRecord, error) {
	record, err := c.repo.ReadOne(ctx, catalogTable, map[string]any{"file_name": fileName})
	if err != nil || record == nil {
		return LogRecord{}, fmt.Errorf("no catalog entry for %s: %v", fileName, err)
	}
	return recordToLog(record), nil
}

// All returns every catalog entry.
func (c *Catalog) All(ctx context.Context) ([]LogRecord, error) {
	records, err := c.repo.ReadAll(ctx, catalogTable, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %v", err)
	}
	out := make([]LogRecord, 0, len(records))
	for _, r := range records {
		out = append(out, recordToLog(r))
	}
	return out, nil
}

// Remove deletes the entry of one file.
func (c *Catalog) Remove(ctx context.Context, fileName string) error {
	return c.repo.Delete(ctx, catalogTable, map[string]any{"file_name": fileName})
}

// Count returns the number of cataloged logs.
func (c *Catalog) Count(ctx context.Context) (int64, error) {
	return c.repo.Count(ctx, catalogTable, map[string]any{})
}

func recordToLog(record map[string]any) LogRecord {
	rec := LogRecord{}
	rec.ID, _ = record["_id"].(string)
	rec.FileName, _ = record["file_name"].(string)
	rec.Vehicle, _ = record["vehicle"].(string)

	switch v := record["size_bytes"].(type) {
	case int64:
		rec.SizeBytes = v
	case int32:
		rec.SizeBytes = int64(v)
	case int:
		rec.SizeBytes = int64(v)
	case float64:
		rec.SizeBytes = int64(v)
	}
	switch v := record["duration_s"].(type) {
	case float64:
		rec.DurationS = v
	case float32:
		rec.DurationS = float64(v)
	}
	switch v := record["topic_count"].(type) {
	case int:
		rec.TopicCount = v
	case int32:
		rec.TopicCount = int(v)
	case int64:
		rec.TopicCount = int(v)
	case float64:
		rec.TopicCount = int(v)
	}
	switch v := record["uploaded_at"].(type) {
	case time.Time:
		rec.UploadedAt = v
	}
	return rec
}
