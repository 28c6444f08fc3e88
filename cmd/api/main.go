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

	"github.com/joho/godotenv"

	"github.com/prepdeck/interview-coach/internal/config"
	"github.com/prepdeck/interview-coach/internal/handler"
	"github.com/prepdeck/interview-coach/internal/model/persona"
	"github.com/prepdeck/interview-coach/internal/service/classifier"
	interviewService "github.com/prepdeck/interview-coach/internal/service/interview"
	"github.com/prepdeck/interview-coach/internal/service/oracle"
	"github.com/prepdeck/interview-coach/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	personaStore := persona.NewMemoryStore(persona.Seed())
	sessionStore := store.NewMemory()

	var gen oracle.Generator = oracle.Disabled{}
	if cfg.AI.Enabled() {
		chatModel, err := cfg.AI.NewChatModel(ctx)
		if err != nil {
			log.Printf("warning: failed to initialize oracle model: %v", err)
			log.Println("continuing with deterministic fallbacks only")
		} else {
			gen = oracle.NewArk(chatModel, cfg.AI.Timeout)
			log.Println("oracle model initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, every turn will use the deterministic fallback")
	}

	svc := interviewService.NewService(sessionStore, personaStore, gen, classifier.New(gen))
	router := handler.NewRouter(svc, sessionStore)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("interview coach backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
