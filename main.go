package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/lukinoo0/Blazefield/internal/auth"
	"github.com/lukinoo0/Blazefield/internal/config"
	"github.com/lukinoo0/Blazefield/internal/db"
	"github.com/lukinoo0/Blazefield/internal/game"
	"github.com/lukinoo0/Blazefield/internal/handlers"
	"github.com/lukinoo0/Blazefield/internal/logging"
	"github.com/lukinoo0/Blazefield/internal/profile"
	"github.com/lukinoo0/Blazefield/internal/server"
)

var (
	host     = flag.String("host", "", "Host to listen on (overrides HOST)")
	port     = flag.String("port", "", "Port to listen on (overrides PORT)")
	certFile = flag.String("cert", "", "TLS certificate file (overrides TLS_CERT)")
	keyFile  = flag.String("key", "", "TLS key file (overrides TLS_KEY)")
	useTLS   = flag.Bool("tls", false, "Enable TLS/HTTPS")
)

// CORS middleware
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Parse frontend domain from config
		frontendDomain := config.AppConfig.FrontendURL
		if idx := strings.Index(frontendDomain, "://"); idx != -1 {
			if pathIdx := strings.Index(frontendDomain[idx+3:], "/"); pathIdx != -1 {
				frontendDomain = frontendDomain[:idx+3+pathIdx]
			}
		}
		w.Header().Set("Access-Control-Allow-Origin", frontendDomain)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func applyFlags(cfg *config.Config) {
	if *host != "" {
		cfg.Host = *host
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *certFile != "" {
		cfg.TLSCert = *certFile
	}
	if *keyFile != "" {
		cfg.TLSKey = *keyFile
	}
	if *useTLS {
		cfg.UseTLS = true
	}
}

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg)

	logger := logging.New(cfg.LogLevel, cfg.LogPretty)
	if cfg.UseTLS && (cfg.TLSCert == "" || cfg.TLSKey == "") {
		logger.Fatal().Msg("TLS enabled but certificate or key file not provided. Use -cert and -key flags or TLS_CERT and TLS_KEY environment variables.")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the profile store; gameplay keeps running on memory if it is unreachable
	store, err := db.OpenProfileStore(ctx, cfg, logging.Component(logger, "db"))
	if err != nil {
		logger.Error().Err(err).Str("backend", cfg.ProfileBackend).Msg("Profile store unavailable, falling back to memory")
		store = profile.NewMemoryStore()
	}

	profileLogger := logging.Component(logger, "profile")
	profiles := profile.NewService(store, profileLogger)
	defer profiles.Close()
	worker := profile.NewWorker(profiles, config.ProfileQueueSize, profileLogger)

	var tokens game.TokenSigner
	if cfg.SecretKey != "" {
		tokens = auth.NewSigner(cfg.SecretKey, cfg.ProfileTokenTTL)
	} else {
		logger.Warn().Msg("SECRET_KEY not set, profile tokens disabled")
	}

	engine := game.NewEngine(game.Options{
		Config:   cfg.Game,
		World:    game.DefaultWorld(),
		Profiles: worker,
		Tokens:   tokens,
		Logger:   logging.Component(logger, "game"),
	})
	scheduler := game.NewScheduler(engine, cfg.Game.BroadcastInterval, cfg.Game.BotThinkInterval, logging.Component(logger, "scheduler"))

	// Create game server
	gameServer := server.NewGameServer(engine, logging.Component(logger, "server"))
	go gameServer.Run()

	loops, loopCtx := errgroup.WithContext(ctx)
	loops.Go(func() error { return worker.Run(loopCtx) })
	loops.Go(func() error { return scheduler.Run(loopCtx) })

	profileHandler := handlers.NewProfileHandler(profiles, worker, config.ProfileIOTimeout, logging.Component(logger, "http"))

	// Setup HTTP routes
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gameServer.HandleWebSocket)
	mux.HandleFunc("/health", corsMiddleware(handlers.HandleHealth))
	mux.HandleFunc("/profile", corsMiddleware(profileHandler.HandleGetProfile))
	mux.HandleFunc("/profile/reset", corsMiddleware(profileHandler.HandleResetProfile))

	// Prepare address
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)

	// Create HTTP server with proper configuration
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(mux, "blazefield"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP/HTTPS server
	go func() {
		if cfg.UseTLS {
			logger.Info().Str("addr", addr).Msg("Starting game server with TLS")
			if err := httpServer.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey); err != nil && err != http.ErrServerClosed {
				logger.Fatal().Err(err).Msg("ListenAndServeTLS error")
			}
		} else {
			logger.Info().Str("addr", addr).Msg("Starting game server")
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatal().Err(err).Msg("ListenAndServe error")
			}
		}
	}()

	scheme := "ws"
	if cfg.UseTLS {
		scheme = "wss"
	}
	logger.Info().
		Str("json", fmt.Sprintf("%s://%s/ws", scheme, addr)).
		Str("binary", fmt.Sprintf("%s://%s/ws?protocol=binary", scheme, addr)).
		Str("msgpack", fmt.Sprintf("%s://%s/ws?protocol=msgpack", scheme, addr)).
		Int("bots", cfg.Game.BotCount).
		Msg("Server started successfully")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	// Close websockets first so no session outlives the engine loops
	gameServer.Shutdown()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		logger.Info().Msg("HTTP server shut down successfully")
	}

	cancel()
	if err := loops.Wait(); err != nil {
		logger.Error().Err(err).Msg("Game loop error")
	}

	logger.Info().Msg("Server stopped")
}
