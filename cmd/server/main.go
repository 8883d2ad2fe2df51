package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/greenretrofit/retrofit-backend/internal/adapter/chain"
	grpcadapter "github.com/greenretrofit/retrofit-backend/internal/adapter/grpc"
	"github.com/greenretrofit/retrofit-backend/internal/attestation"
	"github.com/greenretrofit/retrofit-backend/internal/config"
	"github.com/greenretrofit/retrofit-backend/internal/logger"
	"github.com/greenretrofit/retrofit-backend/internal/usecase/dashboard"
	"github.com/greenretrofit/retrofit-backend/internal/usecase/investment"
	"github.com/greenretrofit/retrofit-backend/internal/usecase/milestone"
	"github.com/greenretrofit/retrofit-backend/internal/usecase/reconciler"
	"github.com/greenretrofit/retrofit-backend/internal/usecase/seeder"
)

const startupTimeout = 15 * time.Second

func main() {
	// 1. Load configuration and logger
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	if err := run(cfg, zapLogger); err != nil {
		zapLogger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zapLogger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	// 2. Open the snapshot store
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			zapLogger.Warn("failed to close snapshot store", zap.Error(err))
		}
	}()
	zapLogger.Info("snapshot store ready",
		zap.String("driver", cfg.StoreDriver),
		zap.String("key", cfg.SnapshotKey),
	)

	// 3. Reconciler over the seed catalog, seeded on first start
	catalog := seeder.NewCatalog()
	repo := reconciler.NewReconciler(store, catalog, zapLogger.Named("reconciler"))
	if err := seeder.NewSeeder(store, repo, catalog).Seed(ctx); err != nil {
		return err
	}

	// 4. Initialize Services (Use Cases)
	dashboardService := dashboard.NewDashboardService(repo)
	investmentService := investment.NewInvestmentService(repo, zapLogger.Named("investment"))
	milestoneService := milestone.NewMilestoneService(repo, attestation.NewRandomGenerator(), zapLogger.Named("milestone"))

	grpcAdapter := grpcadapter.NewServer(dashboardService, investmentService, milestoneService, zapLogger.Named("grpc"))

	// 5. Optional on-chain submission
	if cfg.ChainEnabled() {
		client, err := chain.Dial(ctx, cfg.ChainRPCURL, cfg.ChainContractAddress, cfg.ChainPrivateKey, cfg.ChainID)
		if err != nil {
			return fmt.Errorf("failed to connect to chain: %w", err)
		}
		defer client.Close()
		grpcAdapter.Submitter = client
		zapLogger.Info("on-chain investments enabled",
			zap.String("contract", client.Address().Hex()),
			zap.String("sender", client.Sender().Hex()),
		)
	}

	// 6. Start gRPC Server
	interceptors := []grpclib.UnaryServerInterceptor{
		grpcadapter.LoggingInterceptor(zapLogger.Named("rpc")),
	}
	if cfg.AuthEnabled() {
		interceptors = append(interceptors, grpcadapter.AuthInterceptor(cfg.APIToken))
	} else {
		zapLogger.Warn("API_TOKEN is not set, serving the memory store without authentication")
	}
	interceptors = append(interceptors, grpcadapter.RateLimitInterceptor(
		rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		grpcadapter.MutatingMethods...,
	))
	grpcServer := grpclib.NewServer(grpclib.ChainUnaryInterceptor(interceptors...))
	grpcadapter.RegisterRetrofitServiceServer(grpcServer, grpcAdapter)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.GRPCAddr, err)
	}

	serveErr := make(chan error, 1)
	go func() {
		zapLogger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		serveErr <- grpcServer.Serve(lis)
	}()

	// Graceful shutdown
	return waitForShutdown(grpcServer, serveErr, zapLogger)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(grpcServer *grpclib.Server, serveErr <-chan error, zapLogger *zap.Logger) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-serveErr:
		return fmt.Errorf("failed to serve gRPC server: %w", err)
	case sig := <-sigChan:
		zapLogger.Info("shutting down gracefully", zap.String("signal", sig.String()))
	}

	grpcServer.GracefulStop()
	zapLogger.Info("gRPC server stopped")
	return nil
}
