package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"securevision/internal/bot"
	httpapi "securevision/internal/http"
	"securevision/internal/repository"
	"securevision/internal/service"
)

func main() {
	addr := envOr("ADDR", ":9091")
	dbPath := envOr("DATABASE_PATH", "securevision.db")

	store, err := repository.OpenSQLite(dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer store.Close()

	catalogRepo := repository.NewSQLiteCatalog(store)
	ordersRepo := repository.NewSQLiteOrders(store)
	tasksRepo := repository.NewSQLiteTasks(store)
	tx := repository.NewSQLiteTx(store)

	if err := repository.SeedCatalog(context.Background(), catalogRepo); err != nil {
		log.Fatalf("seed catalog: %v", err)
	}

	accountsSvc := service.NewAccountService(store)
	ledgerSvc := service.NewLedgerService(store, tx)
	catalogSvc := service.NewCatalogService(catalogRepo)
	checkoutSvc := service.NewCheckoutService(store, catalogRepo, ordersRepo, tx)
	paymentsSvc := service.NewPaymentService(store, ledgerSvc)
	tasksSvc := service.NewTaskService(tasksRepo)

	b := bot.New(accountsSvc, catalogSvc, checkoutSvc, paymentsSvc)
	srv := httpapi.NewServer(b, accountsSvc, catalogSvc, checkoutSvc, paymentsSvc, tasksSvc)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Engine(),
	}

	go func() {
		log.Printf("HTTP server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
