package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"telechat/auth"
	"telechat/infrastructure/ws"
	"telechat/moderation"
	"telechat/repositories"
	"telechat/runtime"
	"telechat/runtime/workers"
)

//go:embed censored/*.txt
var censoredFS embed.FS

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so every deferred cleanup executes before the
// process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Moderation dictionaries
	wordList, err := moderation.NewLoader(censoredFS).LoadAll("censored")
	if err != nil {
		return fmt.Errorf("word list loading failed: %w", err)
	}
	log.Info("Moderation dictionaries loaded",
		"languages", wordList.Languages, "words", len(wordList.Words))
	moderator, err := moderation.NewModerator(wordList.Words, config.ModerationRune())
	if err != nil {
		return fmt.Errorf("moderator setup failed: %w", err)
	}

	// 4. Hub state & router
	registry := runtime.NewRegistry()
	membership := runtime.NewMembership()
	limiter := runtime.NewRateLimiter(config.RateLimitMax, config.RateLimitWindow)
	messages := repositories.NewMessageRepository(db, log, config.HistoryPageSize)
	consultations := repositories.NewConsultationRepository(db, log)
	status := runtime.NewStatusBroadcaster(log, registry, consultations)
	router := runtime.NewRouter(log, registry, membership, limiter,
		messages, consultations, status, moderator, config.MaxPayloadBytes)

	// 5. Background workers
	sup := workers.NewSupervisor(log)
	sup.Add(
		workers.NewLivenessMonitor(log, registry, router, config.HeartbeatInterval, config.LivenessTimeout),
		workers.NewHealthMonitor(log, registry, membership, limiter, config.HealthInterval),
	)

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sup.Run(ctx)

	// 7. HTTP server (WebSocket endpoint)
	verifier := auth.NewVerifier([]byte(config.JWTSecret))
	handler := ws.NewHandler(log, router, verifier,
		config.MaxPayloadBytes, config.LivenessTimeout, config.SendBufferSize)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET("/ws", handler.Serve)
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"connections": registry.Len()})
	})

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	srv := &http.Server{Addr: address, Handler: engine}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting chat server", "address", address, "at", time.Now().UTC())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 9. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	registry.CloseAll()
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
