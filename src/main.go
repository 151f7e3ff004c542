package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"domus-server/src/api"
	"domus-server/src/config"
	"domus-server/src/db"
	"domus-server/src/events"
	"domus-server/src/finance"
	"domus-server/src/storage"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("DB migration failed: %v", err)
	}

	db.InitCache()

	var pub events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Printf("WARN: AMQP unavailable, change events disabled: %v", err)
		} else {
			pub = p
			log.Printf("INFO: Publishing change events to exchange %s", cfg.AMQPExchange)
		}
	}
	defer pub.Close()

	var avatars storage.AvatarStore
	if cfg.AvatarBucket != "" {
		store, err := storage.NewGCSAvatarStore(ctx, cfg.AvatarBucket, cfg.GoogleCredentialsFile)
		if err != nil {
			log.Fatalf("Avatar storage setup failed: %v", err)
		}
		defer store.Close()
		avatars = store
	} else {
		log.Printf("INFO: AVATAR_BUCKET not set, avatar uploads disabled")
	}

	// Router
	router := api.NewRouter(cfg, api.Deps{
		Pool:    pool,
		Engine:  finance.NewEngine(finance.DefaultFallbacks()),
		Events:  pub,
		Avatars: avatars,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Println("API server running on port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: graceful shutdown failed: %v", err)
	}
}
