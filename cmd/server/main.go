/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"club-points-ledger/internal/common"
	"club-points-ledger/internal/config"
	"club-points-ledger/internal/httpapi"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	zap.L().Info("Starting club points server",
		zap.String("db_driver", services.DbService.Driver()),
		zap.Bool("relay_enabled", services.Relay != nil))

	srv, err := httpapi.New(cfg.Server, services.ClubService, services.LedgerService)
	if err != nil {
		zap.L().Fatal("Failed to build HTTP server", zap.Error(err))
	}

	if services.Relay != nil {
		if err := services.Relay.Start(ctx); err != nil {
			zap.L().Fatal("Failed to start relay", zap.Error(err))
		}
	}
	services.Scheduler.Start()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	zap.L().Info("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
		zap.L().Info("Shutdown signal received, draining requests...")
	case err := <-serverErr:
		if err != nil {
			zap.L().Error("HTTP server stopped", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Warn("Forced shutdown after timeout", zap.Error(err))
	} else {
		zap.L().Info("HTTP server stopped gracefully")
	}
}
