package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"cliptube/internal/handler"
	"cliptube/internal/httputil"
	authmw "cliptube/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler     *handler.AuthHandler
	VideoHandler    *handler.VideoHandler
	CommentHandler  *handler.CommentHandler
	ReactionHandler *handler.ReactionHandler
	MediaHandler    *handler.MediaHandler
	JWTSecret       string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/refresh", cfg.AuthHandler.Refresh)
	})

	// Public reads
	r.Get("/videos", cfg.VideoHandler.List)
	r.Get("/videos/{videoID}", cfg.VideoHandler.GetByID)
	r.Get("/comments", cfg.CommentHandler.ListByVideo)

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		// Current user endpoints
		r.Get("/me", cfg.AuthHandler.Me)
		r.Get("/me/reactions", cfg.ReactionHandler.GetMine)

		// Auth actions that require authentication
		r.Post("/auth/logout", cfg.AuthHandler.Logout)
		r.Post("/auth/logout-all", cfg.AuthHandler.LogoutAll)

		// Reaction toggles
		r.Post("/reactions/video", cfg.ReactionHandler.ToggleVideo)
		r.Post("/reactions/comment", cfg.ReactionHandler.ToggleComment)

		// Video and comment writes
		r.Post("/videos", cfg.VideoHandler.Create)
		r.Post("/comments", cfg.CommentHandler.Create)

		// Media endpoints (direct-to-R2 uploads)
		r.Post("/media/videos/presign", cfg.MediaHandler.PresignVideoUpload)
		r.Post("/media/thumbnails", cfg.MediaHandler.UploadThumbnail)
	})

	return r
}
