package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"quote-server/src/cache"
	"quote-server/src/config"
	"quote-server/src/logger"
	"quote-server/src/workerpool"

	"github.com/joho/godotenv"
)

// -----------------------------------------------------------------------------

func main() {
	// 1. Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	envPath := flag.String("env", ".env", "optional dotenv file applied before the config")
	flag.Parse()

	// 2. Environment overrides (.env is optional)
	if err := godotenv.Load(*envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Printf("Error loading %s: %v\n", *envPath, err)
		os.Exit(1)
	}

	// 3. Load config
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// 4. Setup Logger
	appLogger := logger.NewLogger(conf.MConfig, conf.Name)
	defer appLogger.Sync()

	if err := setupSymbols(context.Background(), conf, appLogger); err != nil {
		appLogger.Critical("Failed to resolve symbols: %v", err)
	}
	appLogger.Info("Tracking %d symbols with source %s", len(conf.Symbols), conf.DataSource.Type)

	// 5. Setup Components
	store := cache.NewQuoteCache(cache.DefaultShardCount)

	pool, err := workerpool.NewWorkerPool(conf.Workers, appLogger.Named("WorkerPool"))
	if err != nil {
		appLogger.Critical("Failed to create worker pool: %v", err)
	}

	source := setupDataSource(conf, appLogger)
	quoteRefresher := setupRefresher(conf, source, store, appLogger)

	// 6. Lifecycle Management
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	servers := startServers(ctx, conf, store, pool, quoteRefresher, appLogger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		quoteRefresher.Run(ctx)
	}()

	// 7. Wait for a signal or a fatal server error
	select {
	case <-ctx.Done():
		appLogger.Info("Shutting down...")
	case err := <-servers.errs:
		appLogger.Error("Server failed: %v", err)
		stop()
	}

	quoteRefresher.Stop()
	servers.shutdown(appLogger)
	wg.Wait()
	pool.Stop()
	appLogger.Info("Shutdown complete.")
}
