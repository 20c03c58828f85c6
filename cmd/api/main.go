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

	"github.com/avelier/decoychat/internal/config"
	"github.com/avelier/decoychat/internal/handler"
	"github.com/avelier/decoychat/internal/handler/preview"
	"github.com/avelier/decoychat/internal/handler/status"
	"github.com/avelier/decoychat/internal/handler/ws"
	"github.com/avelier/decoychat/internal/model/decoy"
	"github.com/avelier/decoychat/internal/service/admission"
	"github.com/avelier/decoychat/internal/service/agent"
	"github.com/avelier/decoychat/internal/service/auth"
	"github.com/avelier/decoychat/internal/service/history"
	"github.com/avelier/decoychat/internal/service/liveness"
	localeservice "github.com/avelier/decoychat/internal/service/locale"
	"github.com/avelier/decoychat/internal/service/registry"
	"github.com/avelier/decoychat/internal/service/typing"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	limiter := admission.New(admission.Config{
		RatePerWindow: cfg.Limiter.RatePerWindow,
		BurstCapacity: cfg.Limiter.BurstCapacity,
		Window:        time.Duration(cfg.Limiter.WindowSeconds) * time.Second,
		BucketMaxIdle: cfg.Limiter.BucketMaxIdle,
		PurgeInterval: cfg.Limiter.PurgeInterval,
	})

	reg := registry.New(registry.Config{
		IdleCeiling:   cfg.Session.IdleCeiling,
		SweepInterval: cfg.Session.SweepInterval,
		MaxSessions:   cfg.Session.MaxSessions,
	})

	engine := typing.NewEngine(typing.WithDelayBounds(cfg.Typing.MinDelay, cfg.Typing.MaxDelay))
	resolver := localeservice.NewResolver(cfg.Locale.Default)
	monitor := liveness.New(reg, cfg.Session.HeartbeatInterval)
	decoys := decoy.NewMemoryStore(decoy.Seed())
	transcripts := history.NewMemoryStore()

	var verifier auth.Verifier
	if cfg.Auth.Enabled() {
		verifier = auth.NewJWTVerifier(cfg.Auth.JWTSecret)
		log.Println("credential verification enabled")
	} else {
		log.Println("AUTH_JWT_SECRET not configured, admitting anonymous connections")
	}

	var responder agent.Responder = agent.NewScriptedResponder()
	if cfg.AI.Enabled() {
		llm, err := agent.NewLLMResponder(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize model-backed responder: %v", err)
			log.Println("continuing with scripted decoy replies")
		} else {
			responder = llm
			log.Println("model-backed responder initialized")
		}
	} else {
		log.Println("Ark credentials not configured, using scripted decoy replies")
	}

	go limiter.Run(ctx)
	go reg.Run(ctx)

	wsHandler := ws.New(reg, limiter, engine, resolver, decoys, transcripts, responder, verifier, monitor, cfg.Session.ReadTimeout)
	statusHandler := status.New(reg, limiter)
	previewHandler := preview.New(engine)

	router := handler.NewRouter(wsHandler, statusHandler, previewHandler, limiter)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("decoychat backend listening on %s", addr)
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
