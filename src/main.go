package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack-server/src/api"
	"fintrack-server/src/auth"
	"fintrack-server/src/config"
	"fintrack-server/src/db"
	dbsql "fintrack-server/src/db/sql"
	"fintrack-server/src/query"
)

type store interface {
	db.UserStore
	query.Store
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("ERROR: DB connection failed: %v", err)
	}
	defer closeStore()

	var users db.UserStore = st
	if cfg.UserCacheSize > 0 {
		cached, err := db.NewCachedUserStore(st, cfg.UserCacheSize)
		if err != nil {
			log.Fatalf("ERROR: %v", err)
		}
		defer cached.Close()
		users = cached
	}

	authService := auth.NewService(users, []byte(cfg.JWTSecret),
		auth.WithTTL(cfg.TokenTTL),
		auth.WithHashCost(cfg.BcryptCost),
	)

	router := api.NewRouter(api.Services{
		Auth:         authService,
		Verifier:     authService,
		Transactions: query.NewEngine(st),
		CORSOrigins:  cfg.CORSAllowedOrigins,
		AccessLog:    true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Println("INFO: API server running on port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("INFO: Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("ERROR: %v", err)
		closeStore()
		os.Exit(1)
	}
	log.Println("INFO: Server stopped")
}

// openStore connects and migrates the configured backend.
func openStore(ctx context.Context, cfg config.Config) (store, func(), error) {
	switch cfg.DatabaseDriver {
	case "postgres":
		if err := dbsql.MigratePostgres(cfg.DatabaseURL); err != nil {
			return nil, nil, err
		}
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		s := dbsql.NewPostgresStore(pool)
		log.Println("INFO: Using postgres store")
		return s, s.Close, nil
	case "sqlite":
		conn, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := dbsql.MigrateSQLite(conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		s := dbsql.NewSQLiteStore(conn)
		log.Printf("INFO: Using sqlite store at %s", cfg.SQLitePath)
		return s, func() { s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}
