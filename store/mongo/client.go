package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/omerfarukorc/ulog-analysis/config"
	"github.com/omerfarukorc/ulog-analysis/core/logger"
)

type MongoClient struct {
	Client   *mongo.Client
	Database *mongo.Database
	Config   config.MongoConfig
}

// Connect dials MongoDB with exponential backoff.
func Connect(cfg config.MongoConfig) (*MongoClient, error) {
	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(time.Duration(cfg.Timeout) * time.Second).
		SetMaxPoolSize(100)

	var client *mongo.Client

	retry := backoff.NewExponentialBackOff()
	retry.MaxElapsedTime = 30 * time.Second
	err := backoff.Retry(func() error {
		var err error
		client, err = mongo.Connect(context.Background(), clientOptions)
		if err != nil {
			return err
		}
		return client.Ping(context.Background(), nil)
	}, retry)

	if err != nil {
		return nil, fmt.Errorf("failed to connect MongoDB at %s: %v", cfg.URI, err)
	}

	logger.Info("MongoDB connection successful: %s", cfg.URI)
	return &MongoClient{
		Client:   client,
		Database: client.Database(cfg.Database),
		Config:   cfg,
	}, nil
}

func (m *MongoClient) Close() {
	if m.Client != nil {
		if err := m.Client.Disconnect(context.Background()); err != nil {
			logger.Error("failed to close MongoDB connection: %v", err)
		}
	}
}
