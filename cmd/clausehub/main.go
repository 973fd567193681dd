package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/clausehub/clausehub/internal/config"
	dbRedis "github.com/clausehub/clausehub/internal/db/redis"
	logpkg "github.com/clausehub/clausehub/internal/logger"
	"github.com/clausehub/clausehub/internal/metrics"
	lexicalrepo "github.com/clausehub/clausehub/internal/repository/lexical"
	vectorrepo "github.com/clausehub/clausehub/internal/repository/vector"
	chiTransport "github.com/clausehub/clausehub/internal/transport/chi"
	openaiTransport "github.com/clausehub/clausehub/internal/transport/openai"
	"github.com/clausehub/clausehub/internal/transport/rerank"
	askuc "github.com/clausehub/clausehub/internal/usecase/ask"
	healthuc "github.com/clausehub/clausehub/internal/usecase/health"
	ingestuc "github.com/clausehub/clausehub/internal/usecase/ingest"
	"github.com/clausehub/clausehub/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting clausehub API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("lexical_addrs", cfg.Lexical.Addrs),
		zap.String("vector_host", cfg.Vector.Host),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Lexical.Addrs,
		Username: cfg.Lexical.Username,
		Password: cfg.Lexical.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create lexical store", zap.Error(err))
	}
	defer store.Close()

	// Wait for the lexical backend to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Lexical.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Lexical backend not ready", zap.Error(err))
	}
	logger.Info("Connected to lexical backend")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
	})

	lexRepo := lexicalrepo.New(store, cfg.Lexical.KeyPrefix)

	vecRepo, err := vectorrepo.New(vectorrepo.Config{
		Host:       cfg.Vector.Host,
		Port:       cfg.Vector.Port,
		APIKey:     cfg.Vector.APIKey,
		UseTLS:     cfg.Vector.UseTLS,
		Collection: cfg.Vector.Collection,
		Dimensions: cfg.Vector.Dimensions,
	}, embedder)
	if err != nil {
		logger.Fatal("Failed to create vector repository", zap.Error(err))
	}
	defer func() { _ = vecRepo.Close() }()

	oracle := rerank.NewClient(&rerank.Config{
		BaseURL: cfg.Rerank.BaseURL,
		Model:   cfg.Rerank.Model,
		Timeout: time.Duration(cfg.Rerank.TimeoutSec) * time.Second,
	})

	summarizer := openaiTransport.NewSummarizer(&openaiTransport.SummarizerConfig{
		APIKey:    cfg.Summary.APIKey,
		BaseURL:   cfg.Summary.BaseURL,
		Model:     cfg.Summary.Model,
		MaxTokens: cfg.Summary.MaxTokens,
	})

	askSvc := askuc.New(lexRepo, vecRepo).
		WithOracle(oracle).
		WithSummarizer(summarizer).
		WithUniformPolicy(askuc.UniformPolicy(cfg.Search.UniformPolicy))
	ingestSvc := ingestuc.New(lexRepo, vecRepo)
	healthSvc := healthuc.New(store, vecRepo, embedder, oracle)

	server := chiTransport.NewServer(askSvc, ingestSvc, healthSvc, chiTransport.SearchLimits{
		DefaultTopK:  cfg.Search.DefaultTopK,
		MaxTopK:      cfg.Search.MaxTopK,
		DefaultAlpha: cfg.Search.DefaultAlpha,
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
