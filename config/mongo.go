package config

import (
	"github.com/spf13/viper"

	"github.com/omerfarukorc/ulog-analysis/core/logger"
)

type MongoConfig struct {
	Enabled  bool
	URI      string
	Database string
	Timeout  int
}

func LoadMongoConfig() MongoConfig {
	viper.AutomaticEnv() // enable overwrite envs

	// default
	viper.SetDefault("mongo.enabled", false)
	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "ulogdb")
	viper.SetDefault("mongo.timeout", 10)

	if err := viper.ReadInConfig(); err != nil {
		logger.Debug("no config file found, use default configuration: %v", err)
	}

	return MongoConfig{
		Enabled:  viper.GetBool("mongo.enabled"),
		URI:      viper.GetString("mongo.uri"),
		Database: viper.GetString("mongo.database"),
		Timeout:  viper.GetInt("mongo.timeout"),
	}
}
