package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ride-hail-client/internal/infrastructure/config"
	httpapi "ride-hail-client/internal/interface/http"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	seed := flag.Bool("seed", true, "create demo accounts (ana, ion, mihai)")
	flag.Parse()

	cfg, err := config.LoadFromFile(*cfgPath)
	if err != nil {
		log.Fatalf("CRITICAL: load config failed: %v", err)
	}
	log.Printf("configuration loaded (BACKEND_ADDR=%s)", cfg.Backend.Addr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiServer := httpapi.NewServer(cfg.Backend, nil)
	if *seed {
		if err := apiServer.SeedDemo(ctx); err != nil {
			log.Fatalf("seed demo accounts: %v", err)
		}
		log.Printf("demo accounts ready (password %q)", httpapi.DemoPassword)
	}

	srv := &http.Server{
		Addr:              cfg.Backend.Addr,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("starting reference backend on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server stopped: %v", err)
	}
	log.Printf("server stopped")
}
