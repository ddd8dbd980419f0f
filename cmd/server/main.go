package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/firefinancialservices/plugin-woocommerce/config"
	"github.com/firefinancialservices/plugin-woocommerce/internal/database"
	"github.com/firefinancialservices/plugin-woocommerce/internal/gateway"
	"github.com/firefinancialservices/plugin-woocommerce/internal/repository"
	"github.com/firefinancialservices/plugin-woocommerce/internal/router"
	"github.com/firefinancialservices/plugin-woocommerce/internal/scheduler"
	"github.com/firefinancialservices/plugin-woocommerce/internal/service"
	"github.com/firefinancialservices/plugin-woocommerce/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	zl, err := logger.New(cfg.Server.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		zl.Fatal("database", zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		zl.Fatal("migrate", zap.Error(err))
	}
	if err := database.SeedAdmin(db, cfg.Gateway.AdminEmail, cfg.Gateway.AdminPassword); err != nil {
		zl.Fatal("seed admin", zap.Error(err))
	}

	settingRepo := repository.NewSettingRepository(db)
	if err := settingRepo.SeedDefaults(gateway.Defaults(&cfg.Gateway)); err != nil {
		zl.Fatal("seed settings", zap.Error(err))
	}

	// hourly poll fallback for orders whose callback never arrived
	orderRepo := repository.NewOrderRepository(db)
	gatewaySvc := gateway.NewService(settingRepo)
	pollSvc := service.NewPollService(orderRepo, gatewaySvc, service.FireClient, cfg.Poll.CallTimeout, zl)
	sched := scheduler.New(zl)
	sched.Register("fireob-set-order-status", cfg.Poll.Interval, pollSvc.SweepPaid)
	sched.Register("fireob-set-order-status-code", cfg.Poll.Interval, pollSvc.SweepPending)
	sched.Start()

	engine := router.Setup(cfg, db, zl)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		zl.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutting down")
	sched.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Fatal("server shutdown", zap.Error(err))
	}
	fmt.Println("server stopped")
}
