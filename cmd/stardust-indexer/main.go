// Command stardust-indexer runs the checkpoint indexer and its read-only
// HTTP query surface, or emits the surface's OpenAPI description.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iotaledger/stardust-indexer-go/internal/clock"
	"github.com/iotaledger/stardust-indexer-go/internal/config"
	"github.com/iotaledger/stardust-indexer-go/internal/executor"
	"github.com/iotaledger/stardust-indexer-go/internal/httpapi"
	"github.com/iotaledger/stardust-indexer-go/internal/logging"
	"github.com/iotaledger/stardust-indexer-go/internal/metrics"
	"github.com/iotaledger/stardust-indexer-go/internal/metricsapi"
	"github.com/iotaledger/stardust-indexer-go/internal/model"
	"github.com/iotaledger/stardust-indexer-go/internal/query"
	"github.com/iotaledger/stardust-indexer-go/internal/reader"
	"github.com/iotaledger/stardust-indexer-go/internal/stardust"
	"github.com/iotaledger/stardust-indexer-go/internal/store"
	"github.com/iotaledger/stardust-indexer-go/internal/supervisor"
	"github.com/iotaledger/stardust-indexer-go/internal/telemetry"
	"github.com/iotaledger/stardust-indexer-go/internal/worker"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "stardust-indexer",
		Short: "Indexes stardust-model basic/NFT outputs and serves address queries over HTTP",
	}

	root.AddCommand(newStartIndexerCmd())
	root.AddCommand(newGenerateSpecCmd())
	return root
}

func newGenerateSpecCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "generate-spec",
		Short: "Write the HTTP surface's OpenAPI document to disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := httpapi.GenerateOpenAPI()
			b, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal openapi doc: %w", err)
			}
			if err := os.MkdirAll(dirOf(out), 0o755); err != nil {
				return fmt.Errorf("create spec directory: %w", err)
			}
			if err := os.WriteFile(out, b, 0o644); err != nil {
				return fmt.Errorf("write openapi doc: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "./spec/openapi.json", "output path for the generated OpenAPI document")
	return cmd
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}

func newStartIndexerCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "start-indexer",
		Short: "Run the checkpoint sync worker and HTTP query surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStartIndexer(cmd.Context(), v)
		},
	}
	config.BindFlags(cmd, v)
	return cmd
}

func runStartIndexer(ctx context.Context, v *viper.Viper) error {
	_ = godotenv.Load()

	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logging.New(cfg.LogLevel)

	shutdownTracing := telemetry.Init("stardust-indexer")
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("tracer provider shutdown error")
		}
	}()

	packageIDs := make([]model.Address, 0, len(cfg.PackageIDs))
	for _, raw := range cfg.PackageIDs {
		addr, err := model.ParseAddress(raw)
		if err != nil {
			return fmt.Errorf("parse --package-id %q: %w", raw, err)
		}
		packageIDs = append(packageIDs, addr)
	}

	storeCfg := store.Config{
		PoolSize:              cfg.PoolSize,
		ConnectionTimeoutSecs: cfg.ConnectionTimeoutSecs,
		EnableWAL:             cfg.EnableWAL,
	}

	objectsStore, err := store.New(cfg.ObjectsDBURL, storeCfg, store.KindObjects)
	if err != nil {
		return fmt.Errorf("open objects store: %w", err)
	}
	defer objectsStore.Close()

	if cfg.ResetDB {
		log.Warn().Msg("--reset-db set: reverting and reapplying objects schema")
		if err := objectsStore.RevertAllMigrations(ctx); err != nil {
			return fmt.Errorf("revert objects migrations: %w", err)
		}
	}
	if err := objectsStore.RunMigrations(ctx); err != nil {
		return fmt.Errorf("run objects migrations: %w", err)
	}

	progressStoreDB, err := store.New(cfg.ProgressStoreDBURL, storeCfg, store.KindProgress)
	if err != nil {
		return fmt.Errorf("open progress store: %w", err)
	}
	defer progressStoreDB.Close()
	if err := progressStoreDB.RunMigrations(ctx); err != nil {
		return fmt.Errorf("run progress migrations: %w", err)
	}

	reg := metrics.New()
	clk := clock.New()

	repo := store.NewObjectsRepo(objectsStore)
	progress := store.NewProgressStore(progressStoreDB, reg)
	decoder := stardust.NewJSONDecoder()

	w := worker.New(repo, decoder, clk, reg, packageIDs, log)

	rd := newFileReader(os.Getenv("STARDUST_CHECKPOINT_FIXTURE"))
	readerOpts := reader.Options{
		BatchSize: cfg.DownloadQueueSize,
		DataLimit: cfg.CheckpointProcessingBatchDataLimit,
	}

	exec := executor.New(rd, progress, readerOpts, log)
	exec.Register("primary", w)

	basicEngine := query.New(repo, clk)
	nftEngine := query.New(repo, clk)

	httpServer := httpapi.New(httpapi.Config{BindAddress: cfg.RestAPIAddress}, basicEngine, nftEngine, repo, log)
	metricsServer := metricsapi.New(metricsapi.Config{BindAddress: cfg.MetricsAddress}, reg, log)

	sv := supervisor.New(log,
		supervisor.Subsystem{
			Name: "executor",
			Run: func(ctx context.Context) error {
				return exec.Run(ctx)
			},
		},
		supervisor.Subsystem{
			Name: "http",
			Run: func(ctx context.Context) error {
				err := httpServer.ListenAndServe()
				if errors.Is(err, http.ErrServerClosed) || ctx.Err() != nil {
					return nil
				}
				return err
			},
			Shutdown: func(ctx context.Context) error {
				return httpServer.Shutdown(ctx)
			},
		},
		supervisor.Subsystem{
			Name: "metrics",
			Run: func(ctx context.Context) error {
				err := metricsServer.ListenAndServe()
				if errors.Is(err, http.ErrServerClosed) || ctx.Err() != nil {
					return nil
				}
				return err
			},
			Shutdown: func(ctx context.Context) error {
				return metricsServer.Shutdown(ctx)
			},
		},
	)

	return sv.Run(ctx)
}
