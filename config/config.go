package config

import (
	"net"
	"strconv"

	"github.com/spf13/viper"

	"github.com/omerfarukorc/ulog-analysis/core/logger"
)

type (
	// ServerConfig describes the local HTTP endpoint the explorer binds to.
	ServerConfig struct {
		Host string
		Port int
	}

	// StoreConfig describes where uploaded logs are kept.
	StoreConfig struct {
		Dir string
	}

	// CacheConfig bounds the number of parsed logs held in memory.
	CacheConfig struct {
		Size      uint
		MaxPoints int
	}
)

// URL returns the local address the browser is pointed at.
func (c ServerConfig) URL() string {
	return "http://" + c.Addr()
}

func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func LoadServerConfig() ServerConfig {
	viper.AutomaticEnv() // enable overwrite envs

	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", 8050)

	if err := viper.ReadInConfig(); err != nil {
		logger.Debug("no config file found, use default configuration: %v", err)
	}

	return ServerConfig{
		Host: viper.GetString("server.host"),
		Port: viper.GetInt("server.port"),
	}
}

func LoadStoreConfig() StoreConfig {
	viper.AutomaticEnv() // enable overwrite envs

	viper.SetDefault("store.dir", "uploaded_ulogs")

	if err := viper.ReadInConfig(); err != nil {
		logger.Debug("no config file found, use default configuration: %v", err)
	}

	return StoreConfig{
		Dir: viper.GetString("store.dir"),
	}
}

func LoadCacheConfig() CacheConfig {
	viper.AutomaticEnv() // enable overwrite envs

	viper.SetDefault("cache.size", 4)
	viper.SetDefault("cache.maxpoints", 2000)

	if err := viper.ReadInConfig(); err != nil {
		logger.Debug("no config file found, use default configuration: %v", err)
	}

	return CacheConfig{
		Size:      viper.GetUint("cache.size"),
		MaxPoints: viper.GetInt("cache.maxpoints"),
	}
}
