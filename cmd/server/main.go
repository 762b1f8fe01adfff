package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/timetracker/internal/config"
	"github.com/iliyamo/timetracker/internal/database"
	"github.com/iliyamo/timetracker/internal/queue"
	"github.com/iliyamo/timetracker/internal/router"
	"github.com/iliyamo/timetracker/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: .env not loaded: %v", err)
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	opts := router.Options{
		Cache:      config.LoadCacheConfig(),
		RateLimit:  config.LoadRateLimitConfig(),
		Publisher:  service.NopPublisher{},
		RequestLog: true,
	}
	if rdb, err := config.NewRedisClient(ctx); err != nil {
		log.Printf("redis unavailable, rate limiting and caching disabled: %v", err)
	} else {
		defer rdb.Close()
		opts.Redis = rdb
	}

	if cfg.AMQPURL != "" {
		opts.Publisher = service.NewAMQPPublisher(cfg.AMQPURL)
		go func() {
			if err := queue.StartActivityConsumer(ctx, cfg.AMQPURL, cfg.ActivityLogDir); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("activity consumer stopped: %v", err)
			}
		}()
	} else {
		log.Printf("RABBITMQ_URL not set, activity events disabled")
	}

	e := router.New(cfg, db, opts)
	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, db=%s)", addr, cfg.Env, cfg.DBDriver)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
