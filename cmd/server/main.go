package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/vibehive/backend/internal/config"
	"github.com/vibehive/backend/internal/database"
	postgresrepo "github.com/vibehive/backend/internal/repository/postgres"
	"github.com/vibehive/backend/internal/service"
	"github.com/vibehive/backend/internal/transport/http/handlers"
	"github.com/vibehive/backend/internal/transport/http/middleware"
	"github.com/vibehive/backend/internal/transport/ws"
)

func main() {
	cfg := config.Load()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	log.Println("Connected to database")

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	chatRepo := postgresrepo.NewChatRepo(pool)
	discussionRepo := postgresrepo.NewDiscussionRepo(pool)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	userService := service.NewUserService(userRepo)
	chatService := service.NewChatService(chatRepo, userRepo)
	discussionService := service.NewDiscussionService(discussionRepo, userRepo)
	adminService := service.NewAdminService(userRepo, discussionRepo)

	// WebSocket hub
	hub := ws.NewHub()
	hub.SetChats(chatService)
	chatService.SetNotifier(ws.NewHubNotifier(hub))
	go hub.Run()

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	chatHandler := handlers.NewChatHandler(chatService, userService)
	discussionHandler := handlers.NewDiscussionHandler(discussionService, userService)
	adminHandler := handlers.NewAdminHandler(adminService, userService)
	uploadHandler := handlers.NewUploadHandler(cfg.CloudinaryURL)

	// Auth middleware
	auth := middleware.Auth(cfg.JWTSecret)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	// Protected - Users + profiles
	mux.Handle("GET /api/v1/me", auth(http.HandlerFunc(userHandler.Me)))
	mux.Handle("PATCH /api/v1/me", auth(http.HandlerFunc(userHandler.UpdateMe)))
	mux.Handle("GET /api/v1/users", auth(http.HandlerFunc(userHandler.Search)))
	mux.Handle("GET /api/v1/users/{username}", auth(http.HandlerFunc(userHandler.GetProfile)))
	mux.Handle("POST /api/v1/uploads/sign", auth(http.HandlerFunc(uploadHandler.SignUpload)))

	// Protected - Conversations
	mux.Handle("POST /api/v1/conversations", auth(http.HandlerFunc(chatHandler.ResolveConversation)))
	mux.Handle("GET /api/v1/conversations", auth(http.HandlerFunc(chatHandler.ListConversations)))
	mux.Handle("GET /api/v1/conversations/{id}/messages", auth(http.HandlerFunc(chatHandler.GetSession)))
	mux.Handle("POST /api/v1/conversations/{id}/messages", auth(http.HandlerFunc(chatHandler.SendMessage)))

	// Protected - Discussions
	mux.Handle("GET /api/v1/discussions", auth(http.HandlerFunc(discussionHandler.List)))
	mux.Handle("POST /api/v1/discussions", auth(http.HandlerFunc(discussionHandler.Create)))
	mux.Handle("POST /api/v1/discussions/{id}/like", auth(http.HandlerFunc(discussionHandler.Like)))
	mux.Handle("DELETE /api/v1/discussions/{id}", auth(http.HandlerFunc(discussionHandler.Delete)))
	mux.Handle("GET /api/v1/discussions/{id}/comments", auth(http.HandlerFunc(discussionHandler.ListComments)))
	mux.Handle("POST /api/v1/discussions/{id}/comments", auth(http.HandlerFunc(discussionHandler.AddComment)))

	// Protected - Admin
	mux.Handle("GET /api/v1/admin/users", auth(http.HandlerFunc(adminHandler.ListUsers)))
	mux.Handle("PATCH /api/v1/admin/users/{id}/role", auth(http.HandlerFunc(adminHandler.SetRole)))
	mux.Handle("DELETE /api/v1/admin/users/{id}", auth(http.HandlerFunc(adminHandler.DeleteUser)))
	mux.Handle("DELETE /api/v1/admin/discussions/{id}", auth(http.HandlerFunc(adminHandler.DeleteDiscussion)))

	// WebSocket (token auth via query param)
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, cfg.JWTSecret, userRepo))

	// Start server with CORS
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("Starting server on %s", addr)
	log.Fatal(http.ListenAndServe(addr, middleware.CORS(mux)))
}
