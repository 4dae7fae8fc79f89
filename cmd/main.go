package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"solar-app/internal/config"
	"solar-app/internal/handler"
	"solar-app/internal/realtime"
	"solar-app/internal/repository"
	"solar-app/internal/services"
	"solar-app/internal/stream"
	"solar-app/internal/utils"
)

func main() {
	baseCtx := context.Background()
	ctx, shutdownManager := utils.NewShutdownManager(baseCtx)
	shutdownManager.StartListening()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// MongoDB
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Mongo connection failed:", err)
	}
	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("[SHUTDOWN] Closing MongoDB connection...")
		return mongoClient.Disconnect(ctx)
	})
	db := mongoClient.Database(cfg.MongoDB)

	// Redis: change feed, typing state, token blacklist
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal("Invalid Redis URL:", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("[SHUTDOWN] Closing Redis connection...")
		return rdb.Close()
	})

	feed := stream.NewFeed(rdb)
	redisWrap := utils.WrapRedisClient(rdb)
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	guideRepo := repository.NewGuideRepository(db)
	chatRepo := repository.NewChatRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	// Services
	inviteService := services.NewInviteService(inviteRepo, userRepo)
	authService := services.NewAuthService(userRepo, inviteService, jwtUtil, redisWrap, feed)
	ticketService := services.NewTicketService(ticketRepo, feed)
	guideService := services.NewGuideService(guideRepo, feed)
	typingService := services.NewTypingService(rdb)
	chatService := services.NewChatService(chatRepo, typingService, feed)

	hub := realtime.NewHub()
	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("[SHUTDOWN] Closing websocket hub...")
		hub.Close()
		return nil
	})
	notifService := services.NewNotificationService(notifRepo, hub)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	installerHandler := handler.NewInstallerHandler(authService, inviteService, ticketService, guideService, userRepo)
	ticketHandler := handler.NewTicketHandler(ticketService, authService)
	guideHandler := handler.NewGuideHandler(guideService, authService)
	chatHandler := handler.NewChatHandler(chatService)
	notifHandler := handler.NewNotificationHandler(notifService)
	wsHandler := handler.NewWSHandler(hub, feed, authService, ticketService, guideService, chatService, notifService)

	router := gin.Default()
	authMiddleware := utils.AuthMiddleware(jwtUtil, redisWrap)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register/installer", authHandler.RegisterInstaller)
			auth.POST("/register/client", authHandler.RegisterClient)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authMiddleware, authHandler.Logout)
			auth.GET("/validate", authMiddleware, authHandler.Validate)
			auth.GET("/profile", authMiddleware, authHandler.GetProfile)
		}

		api.GET("/invite/:code/verify", installerHandler.VerifyInviteCode)

		installer := api.Group("", authMiddleware, utils.RequireRole("installer"))
		{
			installer.GET("/invite", installerHandler.GetInviteCode)
			installer.GET("/clients", installerHandler.GetClients)
			installer.GET("/stats", installerHandler.GetStats)
			installer.POST("/guides", guideHandler.Create)
			installer.PUT("/tickets/:id/progress", ticketHandler.MarkInProgress)
			installer.PUT("/tickets/:id/respond", ticketHandler.Respond)
		}

		authed := api.Group("", authMiddleware)
		{
			authed.POST("/tickets", utils.RequireRole("client"), ticketHandler.Create)
			authed.GET("/tickets", ticketHandler.List)
			authed.GET("/guides", guideHandler.List)

			chat := authed.Group("/chat/:peer")
			{
				chat.POST("/messages", chatHandler.Send)
				chat.GET("/messages", chatHandler.Messages)
				chat.POST("/read", chatHandler.MarkRead)
				chat.GET("/unread", chatHandler.Unread)
				chat.POST("/typing", chatHandler.Typing)
				chat.GET("/typing", chatHandler.PeerTyping)
			}

			authed.GET("/notifications", notifHandler.List)
			authed.POST("/notifications/:id/read", notifHandler.MarkRead)

			authed.GET("/ws", wsHandler.Serve)
		}
	}

	server := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: router,
	}

	go func() {
		log.Printf("SolarConnect backend running on %s", cfg.ServerAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("[SHUTDOWN] Shutting down HTTP server...")
		return server.Shutdown(ctx)
	})

	shutdownManager.Wait()
}
