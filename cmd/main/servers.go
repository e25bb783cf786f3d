package main

import (
	"context"
	"time"

	"quote-server/src/cache"
	"quote-server/src/config"
	"quote-server/src/grpc_quotes"
	"quote-server/src/logger"
	"quote-server/src/refresher"
	"quote-server/src/server"
	"quote-server/src/workerpool"
)

// shutdownTimeout bounds how long in-flight HTTP requests may take to drain.
const shutdownTimeout = 5 * time.Second

type runningServers struct {
	http *server.QuoteServer
	grpc *grpc_quotes.Server
	errs chan error
}

// -----------------------------------------------------------------------------

// startServers launches the HTTP server and, when grpc_port is set, the gRPC
// server. Fatal errors from either are reported on errs.
func startServers(
	ctx context.Context,
	conf *config.Config,
	store *cache.QuoteCache,
	pool *workerpool.WorkerPool,
	quoteRefresher *refresher.Refresher,
	appLogger *logger.Logger,
) *runningServers {
	rs := &runningServers{errs: make(chan error, 2)}

	// 1. HTTP + websocket stream
	rs.http = server.NewQuoteServer(conf, store, pool, quoteRefresher, appLogger.Named("QuoteServer"))
	quoteRefresher.SetListener(rs.http.Hub)

	go func() {
		if err := rs.http.Start(ctx); err != nil {
			rs.errs <- err
		}
	}()

	// 2. gRPC
	if conf.GrpcPort != 0 {
		grpcLogger := appLogger.Named("QuoteService")
		svc := grpc_quotes.NewQuoteService(store, quoteRefresher, grpcLogger)
		rs.grpc = grpc_quotes.NewServer(svc, pool, grpcLogger)

		go func() {
			if err := rs.grpc.ListenAndServe(conf.GrpcAddr()); err != nil {
				rs.errs <- err
			}
		}()
	}

	return rs
}

// -----------------------------------------------------------------------------

func (rs *runningServers) shutdown(appLogger *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := rs.http.Shutdown(ctx); err != nil {
		appLogger.Warning("HTTP shutdown: %v", err)
	}
	if rs.grpc != nil {
		rs.grpc.Stop()
	}
}
