// Package config defines the indexer's CLI flags, their environment
// variable aliases, and defaults, per spec.md §6.
package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iotaledger/stardust-indexer-go/internal/reader"
)

// Config is the fully-resolved set of flags/env values for start-indexer.
type Config struct {
	LogLevel string

	PoolSize              int
	ConnectionTimeoutSecs int
	EnableWAL             bool

	RestAPIAddress string
	MetricsAddress string

	RemoteStoreURL                     string
	CheckpointProgressFile             string
	DownloadQueueSize                  int
	CheckpointProcessingBatchDataLimit int64
	ResetDB                            bool
	PackageIDs                         []string

	ObjectsDBURL       string
	ProgressStoreDBURL string
}

// BindFlags registers start-indexer's flags on cmd and aliases each to the
// environment variable spec.md §6 names, via viper.
func BindFlags(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.Flags()

	flags.String("log-level", "INFO", "log level (env LOG_LEVEL)")
	flags.Int("pool-size", 20, "DB connection pool size setting; each store opens a single connection regardless (env DB_POOL_SIZE)")
	flags.Int("connection-timeout-secs", 30, "connection acquire + busy-timeout seconds (env DB_CONNECTION_TIMEOUT_SECS)")
	flags.Bool("enable-wal", false, "enable WAL journal mode")
	flags.String("rest-api-address", "0.0.0.0:3000", "HTTP bind address (env REST_API_SOCKET_ADDRESS)")
	flags.String("metrics-address", "0.0.0.0:9184", "metrics bind address")
	flags.String("remote-store-url", "https://checkpoints.mainnet.iota.io", "checkpoint source URL")
	flags.String("checkpoint-progress-file", "checkpoint_progress.json", "local checkpoint progress cache file")
	flags.Int("download-queue-size", 200, "reader back-pressure window (env DOWNLOAD_QUEUE_SIZE)")
	flags.Int64("checkpoint-processing-batch-data-limit", reader.DefaultDataLimit, "max aggregate checkpoint bytes in flight (env CHECKPOINT_PROCESSING_BATCH_DATA_LIMIT)")
	flags.Bool("reset-db", false, "revert and reapply the objects DB migrations before starting")
	flags.StringSlice("package-id", nil, "originating package id to filter on (repeatable)")

	_ = v.BindPFlags(flags)

	v.SetEnvPrefix("")
	v.BindEnv("log-level", "LOG_LEVEL")
	v.BindEnv("pool-size", "DB_POOL_SIZE")
	v.BindEnv("connection-timeout-secs", "DB_CONNECTION_TIMEOUT_SECS")
	v.BindEnv("rest-api-address", "REST_API_SOCKET_ADDRESS")
	v.BindEnv("download-queue-size", "DOWNLOAD_QUEUE_SIZE")
	v.BindEnv("checkpoint-processing-batch-data-limit", "CHECKPOINT_PROCESSING_BATCH_DATA_LIMIT")
	v.BindEnv("objects-db-url", "OBJECTS_DB_URL")
	v.BindEnv("progress-store-db-url", "PROGRESS_STORE_DB_URL")
}

// Load reads the bound flags/env into a Config, failing if the two
// required database URLs are absent.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		LogLevel:                           v.GetString("log-level"),
		PoolSize:                           v.GetInt("pool-size"),
		ConnectionTimeoutSecs:              v.GetInt("connection-timeout-secs"),
		EnableWAL:                          v.GetBool("enable-wal"),
		RestAPIAddress:                     v.GetString("rest-api-address"),
		MetricsAddress:                     v.GetString("metrics-address"),
		RemoteStoreURL:                     v.GetString("remote-store-url"),
		CheckpointProgressFile:             v.GetString("checkpoint-progress-file"),
		DownloadQueueSize:                  v.GetInt("download-queue-size"),
		CheckpointProcessingBatchDataLimit: v.GetInt64("checkpoint-processing-batch-data-limit"),
		ResetDB:                            v.GetBool("reset-db"),
		PackageIDs:                         v.GetStringSlice("package-id"),
		ObjectsDBURL:                       v.GetString("objects-db-url"),
		ProgressStoreDBURL:                 v.GetString("progress-store-db-url"),
	}

	if cfg.ObjectsDBURL == "" {
		return Config{}, fmt.Errorf("OBJECTS_DB_URL is required")
	}
	if cfg.ProgressStoreDBURL == "" {
		return Config{}, fmt.Errorf("PROGRESS_STORE_DB_URL is required")
	}
	if len(cfg.PackageIDs) == 0 {
		return Config{}, fmt.Errorf("at least one --package-id is required")
	}

	return cfg, nil
}
