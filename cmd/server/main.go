package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contest_tracker/internal/api"
	"contest_tracker/internal/app/adapter"
	"contest_tracker/internal/app/service"
	"contest_tracker/internal/app/worker"
	"contest_tracker/internal/common/security"
	"contest_tracker/internal/domain/model"
	"contest_tracker/internal/domain/repository"
	"contest_tracker/internal/platform/cache"
	"contest_tracker/internal/platform/config"
	"contest_tracker/internal/platform/database"

	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize Logger
	log := logrus.New()
	log.SetLevel(logrus.InfoLevel)

	// 3. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 4. Initialize Database
	database.Connect()
	defer database.Close()
	database.EnsureSchema()
	fmt.Println("Database connected.")

	// 5. Initialize Redis (optional, caching only)
	cache.ConnectRedis()
	defer cache.CloseRedis()

	// 6. Initialize Repositories
	contestRepo := repository.NewPgContestRepository(database.DB)
	userRepo := repository.NewPgUserRepository(database.DB)

	// 7. Initialize Services
	authService := service.NewAuthService(userRepo)
	contestService := service.NewContestService(contestRepo, cache.RDB, config.AppConfig.ContestCacheTTL, log)

	sources := map[model.Platform]adapter.Source{
		model.PlatformCodechef:   adapter.NewCodechefSource(),
		model.PlatformCodeforces: adapter.NewCodeforcesSource(),
		model.PlatformLeetcode:   adapter.NewLeetcodeSource(),
	}
	ingestService := service.NewIngestService(contestRepo, sources, log)

	// 8. Seed admin account from env (if configured)
	if err := authService.EnsureAdmin(context.Background(), config.AppConfig.AdminUsername, config.AppConfig.AdminPassword); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	// 9. Start Workers (as goroutines)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	ingestWorker := worker.NewIngestWorker(ingestService, config.AppConfig.IngestInterval, log)
	go ingestWorker.Start(workerCtx)

	if config.AppConfig.YouTubeAPIKey != "" {
		feed, err := adapter.NewYouTubeFeed(context.Background(), config.AppConfig.YouTubeAPIKey)
		if err != nil {
			log.Fatalf("Failed to create YouTube client: %v", err)
		}
		playlists := map[model.Platform]string{
			model.PlatformCodechef:   config.AppConfig.CodechefPlaylist,
			model.PlatformCodeforces: config.AppConfig.CodeforcesPlaylist,
			model.PlatformLeetcode:   config.AppConfig.LeetcodePlaylist,
		}
		solutionService := service.NewSolutionService(contestRepo, feed, playlists, log)
		solutionWorker := worker.NewSolutionWorker(solutionService, config.AppConfig.SolutionInterval, log)
		go solutionWorker.Start(workerCtx)
	} else {
		log.Warn("YOUTUBE_API_KEY not set, solution video updates disabled")
	}
	fmt.Println("Background workers started.")

	// 10. Initialize Router & HTTP Server
	router := api.NewRouter(authService, contestService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 11. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")
	workerCancel() // Stop scheduling new ticks; in-flight ticks finish

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and workers stopped gracefully.")
}
