package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prompt-sharing-service/internal/activity"
	"prompt-sharing-service/internal/collaborator"
	"prompt-sharing-service/internal/comment"
	"prompt-sharing-service/internal/config"
	"prompt-sharing-service/internal/db"
	"prompt-sharing-service/internal/middleware"
	"prompt-sharing-service/internal/notification"
	"prompt-sharing-service/internal/prompt"
	"prompt-sharing-service/internal/share"
	"prompt-sharing-service/internal/version"
	"prompt-sharing-service/internal/worker"
	"prompt-sharing-service/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Connect to database
	db.ConnectDb()
	defer db.CloseDb()

	// Migrate database schema
	db.Migrate()

	// Initialize Redis cache
	cache := redis.NewCache(config.AppConfig.RedisAddress)

	// Background pool for best-effort work (audit appends, notification
	// delivery, the stale-link sweep)
	pool := worker.NewPool(4, 1000)
	defer pool.Shutdown()

	// Initialize repositories
	promptRepo := prompt.NewRepository(db.AppDb)
	shareRepo := share.NewRepository(db.AppDb)
	collabRepo := collaborator.NewRepository(db.AppDb)
	versionRepo := version.NewRepository(db.AppDb)
	activityRepo := activity.NewRepository(db.AppDb)
	notificationRepo := notification.NewRepository(db.AppDb)
	commentRepo := comment.NewRepository(db.AppDb)

	// Initialize services
	var sink *notification.WebhookClient
	if config.AppConfig.NotificationWebhookURL != "" {
		sink = notification.NewWebhookClient(
			config.AppConfig.NotificationWebhookURL,
			config.AppConfig.InternalSecret,
		)
	}

	activityService := activity.NewService(activityRepo, pool)
	notificationService := notification.NewService(notificationRepo, sink, pool, cache)
	promptService := prompt.NewService(promptRepo)
	collabService := collaborator.NewService(collabRepo, promptService, activityService, notificationService)
	shareService := share.NewService(shareRepo, promptService, collabService, activityService)
	versionService := version.NewService(versionRepo, collabService, collabService, activityService, notificationService, cache)
	commentService := comment.NewService(commentRepo, activityService, notificationService)

	// Initialize handlers
	promptHandler := prompt.NewHandler(promptService)
	shareHandler := share.NewHandler(shareService)
	collabHandler := collaborator.NewHandler(collabService)
	versionHandler := version.NewHandler(versionService)
	activityHandler := activity.NewHandler(activityService)
	notificationHandler := notification.NewHandler(notificationService)
	commentHandler := comment.NewHandler(commentService)

	// Initialize Gin router
	router := gin.Default()
	router.Use(middleware.ErrorHandler())

	// cors setting
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-User-Id", "X-User-Name"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}

	if config.AppConfig.Environment == "development" {
		// Allow all origins in development
		corsConfig.AllowAllOrigins = true
	} else {
		// Restrict origins in production
		corsConfig.AllowOrigins = []string{config.AppConfig.FrontendAddress}
	}
	router.Use(cors.New(corsConfig))

	identified := middleware.Identity(config.AppConfig.JWTSecret, true)
	// link consumption authenticates with the bearer token itself
	anonymousOk := middleware.Identity(config.AppConfig.JWTSecret, false)

	// Prompt routes
	router.POST("/prompts", identified, promptHandler.Create)
	router.GET("/prompts/:id", identified, promptHandler.Show)
	router.DELETE("/prompts/:id", identified, promptHandler.Delete)

	// Share link routes
	router.POST("/prompts/:id/share-links", identified, shareHandler.Issue)
	router.GET("/share-links/:token", anonymousOk, shareHandler.Resolve)
	router.POST("/share-links/:token/consume", anonymousOk, shareHandler.Consume)
	router.DELETE("/share-links/:token", identified, shareHandler.Revoke)
	router.GET("/shared-prompts", identified, shareHandler.ListMine)

	// Collaborator routes
	router.POST("/prompts/:id/collaborators", identified, collabHandler.Add)
	router.GET("/prompts/:id/collaborators", identified, collabHandler.List)
	router.DELETE("/prompts/:id/collaborators/:userId", identified, collabHandler.Remove)

	// Version routes
	router.POST("/prompts/:id/versions", identified, versionHandler.Commit)
	router.GET("/prompts/:id/versions", identified, versionHandler.History)
	router.GET("/prompts/:id/versions/current", identified, versionHandler.Current)

	// Activity and comment routes
	router.GET("/prompts/:id/activity", identified, activityHandler.Tail)
	router.POST("/prompts/:id/comments", identified, commentHandler.Post)
	router.GET("/prompts/:id/comments", identified, commentHandler.List)
	router.PUT("/prompts/:id/comments/:commentId/resolve", identified, commentHandler.Resolve)

	// Notification routes
	router.GET("/notifications", identified, notificationHandler.Inbox)
	router.PUT("/notifications/:id/read", identified, notificationHandler.MarkRead)

	// Internal maintenance, guarded by the shared secret
	internalOnly := middleware.InternalAuth(config.AppConfig.InternalSecret)
	router.POST("/internal/share-links/sweep", internalOnly, func(c *gin.Context) {
		n, err := shareService.ExpireStale(c.Request.Context())
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"expired": n})
	})

	// Optional stale-link sweep; expiry stays lazily enforced at resolve
	// time so correctness never depends on this loop
	stopSweep := make(chan struct{})
	if interval := config.AppConfig.LinkSweepInterval; interval > 0 {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					pool.Submit(func(ctx context.Context) error {
						n, err := shareService.ExpireStale(ctx)
						if n > 0 {
							log.Printf("Swept %d expired share links", n)
						}
						return err
					})
				case <-stopSweep:
					return
				}
			}
		}()
	}

	// Server configuration
	serverPort := config.AppConfig.ServerPort
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverPort),
		Handler: router.Handler(),
	}

	// Start server
	go func() {
		log.Printf("Server listening on port %s", serverPort)
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	close(stopSweep)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Println("Server shutdown error:", err)
	}

	<-ctx.Done()
	log.Println("Server shutdown complete")
}
