package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solatis/bulkmsg/internal/core/api"
	"github.com/solatis/bulkmsg/internal/core/server"
	"github.com/solatis/bulkmsg/internal/customers"
	"github.com/solatis/bulkmsg/internal/lists"
	"github.com/solatis/bulkmsg/internal/messaging"
	"github.com/solatis/bulkmsg/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "0.0.0.0", "listen host")
	serveCmd.Flags().Int("http-port", 8080, "HTTP API port")
	serveCmd.Flags().Int("grpc-port", 50051, "gRPC port")
	serveCmd.Flags().String("feed-url", "", "customer CSV feed URL")
	serveCmd.Flags().String("feed-path", "", "customer CSV or XLSX file")
	serveCmd.Flags().String("storage", "memory", "list storage backend (memory, db, redis)")
	serveCmd.Flags().String("redis-addr", "localhost:6379", "Redis address for the redis backend")
	serveCmd.Flags().String("data-dir", "./data", "directory for the message journal")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	store := customers.NewStore(logger)
	src, err := feedSource(cfg.Feed)
	if err != nil {
		logger.Warn("starting with no customers", zap.Error(err))
	} else if _, err := store.Load(ctx, src); err != nil {
		logger.Warn("customer feed unavailable, starting empty", zap.Error(err))
	}

	slot, closeSlot, err := openSlot(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer closeSlot()
	saved := lists.Open(ctx, slot, logger)

	composer, err := messaging.NewComposer(messaging.Config{
		SendDelay:  cfg.Messaging.SendDelay,
		DraftDelay: cfg.Messaging.DraftDelay,
		DataDir:    cfg.Messaging.DataDir,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to open message journal: %w", err)
	}

	sessions := session.NewRegistry(store, saved, logger)

	service, err := api.NewService(api.Deps{
		Customers:      store,
		Source:         src,
		Lists:          saved,
		Sessions:       sessions,
		Composer:       composer,
		RequestTimeout: cfg.Server.RequestTimeout,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	httpServer, err := server.NewHTTPServer(&cfg.Server, service)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}
	grpcServer, err := server.NewGRPCServer(&cfg.Server, service, logger)
	if err != nil {
		return fmt.Errorf("failed to create gRPC server: %w", err)
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweepSessions(sweepCtx, sessions, cfg.Server.SessionIdle)

	logger.Info("starting bulkmsg",
		zap.String("version", Version),
		zap.String("host", cfg.Server.Host),
		zap.Int("http_port", cfg.Server.HTTPPort),
		zap.Int("grpc_port", cfg.Server.GRPCPort),
		zap.String("storage", cfg.Storage.Backend),
		zap.Int("customers", store.Len()),
	)

	errChan := make(chan error, 2)
	go func() { errChan <- httpServer.Start(ctx) }()
	go func() { errChan <- grpcServer.Start(ctx) }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		shutdown(ctx, logger, httpServer, grpcServer)
		return err
	case <-sigChan:
		logger.Info("shutting down gracefully")
		return shutdown(ctx, logger, httpServer, grpcServer)
	}
}

type stopper interface {
	Shutdown(context.Context) error
}

func shutdown(ctx context.Context, logger *zap.Logger, servers ...stopper) error {
	var first error
	for _, s := range servers {
		if err := s.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// sweepSessions expires idle sessions until ctx ends. idle <= 0 disables it.
func sweepSessions(ctx context.Context, sessions *session.Registry, idle time.Duration) {
	if idle <= 0 {
		return
	}
	ticker := time.NewTicker(idle / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions.Sweep(idle)
		}
	}
}
