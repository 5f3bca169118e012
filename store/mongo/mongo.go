// Package mongo implements the catalog repository on top of MongoDB for
// deployments that want the log catalog to survive restarts.
package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/omerfarukorc/ulog-analysis/core/logger"
)

type MongoRepository struct {
	client *MongoClient
	db     *mongo.Database
}

func NewMongoRepository(client *MongoClient) *MongoRepository {
	return &MongoRepository{client: client, db: client.Database}
}

func (r *MongoRepository) timeoutCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(r.client.Config.Timeout)*time.Second)
}

func (r *MongoRepository) Create(ctx context.Context, table string, record map[string]any) (string, error) {
	coll := r.db.Collection(table)
	ctx, cancel := r.timeoutCtx(ctx)
	defer cancel()

	res, err := coll.InsertOne(ctx, bson.M(record))
	if err != nil {
		logger.Error("insert failed: %v", err)
		return "", err
	}
	id, _ := res.InsertedID.(string)
	return id, nil
}

func (r *MongoRepository) ReadOne(ctx context.Context, table string, filter map[string]any) (map[string]any, error) {
	coll := r.db.Collection(table)
	ctx, cancel := r.timeoutCtx(ctx)
	defer cancel()

	var result map[string]any
	err := coll.FindOne(ctx, bson.M(filter)).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, mongo.ErrNoDocuments
	}
	if err != nil {
		logger.Error("query failed: %v", err)
		return nil, err
	}
	return normalize(result), nil
}

func (r *MongoRepository) ReadAll(ctx context.Context, table string, filter map[string]any) ([]map[string]any, error) {
	coll := r.db.Collection(table)
	ctx, cancel := r.timeoutCtx(ctx)
	defer cancel()

	cursor, err := coll.Find(ctx, bson.M(filter))
	if err != nil {
		logger.Error("query failed: %v", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []map[string]any
	if err = cursor.All(ctx, &results); err != nil {
		logger.Error("failed to decode results: %v", err)
		return nil, err
	}

	for i, result := range results {
		results[i] = normalize(result)
	}
	return results, nil
}

func (r *MongoRepository) Update(ctx context.Context, table string, filter map[string]any, update map[string]any) error {
	coll := r.db.Collection(table)
	ctx, cancel := r.timeoutCtx(ctx)
	defer cancel()

	_, err := coll.UpdateOne(ctx, bson.M(filter), bson.M(update))
	if err != nil {
		logger.Error("update failed: %v", err)
		return err
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, table string, filter map[string]any) error {
	coll := r.db.Collection(table)
	ctx, cancel := r.timeoutCtx(ctx)
	defer cancel()

	_, err := coll.DeleteOne(ctx, bson.M(filter))
	if err != nil {
		logger.Error("delete failed: %v", err)
		return err
	}
	return nil
}

func (r *MongoRepository) Count(ctx context.Context, table string, filter map[string]any) (int64, error) {
	coll := r.db.Collection(table)
	ctx, cancel := r.timeoutCtx(ctx)
	defer cancel()

	n, err := coll.CountDocuments(ctx, bson.M(filter))
	if err != nil {
		logger.Error("count failed: %v", err)
		return 0, err
	}
	return n, nil
}

func (r *MongoRepository) EnsureIndexes(ctx context.Context, table string, indexes []mongo.IndexModel) error {
	coll := r.db.Collection(table)
	ctx, cancel := r.timeoutCtx(ctx)
	defer cancel()

	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Error("index creation failed: %v", err)
		return err
	}
	return nil
}

// normalize converts driver-specific decoded values back into plain Go types
// so callers never see bson primitives.
func normalize(record map[string]any) map[string]any {
	for k, v := range record {
		switch t := v.(type) {
		case primitive.DateTime:
			record[k] = t.Time()
		case primitive.A:
			record[k] = []any(t)
		}
	}
	return record
}
