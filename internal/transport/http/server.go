package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cliptube/internal/cache"
	"cliptube/internal/config"
	"cliptube/internal/database"
	"cliptube/internal/handler"
	"cliptube/internal/queue"
	appredis "cliptube/internal/redis"
	"cliptube/internal/repository"
	"cliptube/internal/service"
	"cliptube/internal/worker"
)

// Run wires the whole application together and blocks until shutdown.
func Run() error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	redisClient, err := appredis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()
	if err := redisClient.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	reactionRepo := repository.NewReactionRepository(db)

	// Redis-backed infrastructure
	mirror := cache.NewReactionMirror(redisClient.Client)
	publisher := queue.NewPublisher(redisClient.Client)
	consumer := queue.NewConsumer(redisClient.Client)

	// Services
	userService := service.NewUserService(userRepo)
	authService := service.NewAuthService(refreshTokenRepo, cfg)
	videoService := service.NewVideoService(videoRepo)
	commentService := service.NewCommentService(commentRepo, videoRepo, userRepo, db)
	reactionService := service.NewReactionService(reactionRepo, videoRepo, commentRepo, userRepo, mirror, publisher)
	mediaService, err := service.NewMediaService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create media service: %w", err)
	}

	// Background workers keep the per-user reaction mirror in sync
	workerManager := worker.NewManager(consumer, worker.NewHandler(mirror), worker.ManagerConfig{
		WorkerCount: cfg.WorkerCount,
	})
	if err := workerManager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}
	defer workerManager.Stop()

	// Handlers and router
	router := NewRouter(RouterConfig{
		AuthHandler:     handler.NewAuthHandler(userService, authService),
		VideoHandler:    handler.NewVideoHandler(videoService),
		CommentHandler:  handler.NewCommentHandler(commentService),
		ReactionHandler: handler.NewReactionHandler(reactionService),
		MediaHandler:    handler.NewMediaHandler(mediaService),
		JWTSecret:       cfg.JWTSecret,
	})

	server := &stdhttp.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] Listening on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		log.Printf("[Server] Received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
