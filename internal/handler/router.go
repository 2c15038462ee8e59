/*
Package handler provides the HTTP handlers and routing setup for the coLAN server.

This file defines the main Router, applying middleware like logging, CORS, and
IP-based rate limiting before delegating requests to the specific handlers.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/KYoiRyi/coLAN/internal/configs"
	"github.com/KYoiRyi/coLAN/internal/pkg/limiter"
	"github.com/KYoiRyi/coLAN/internal/pkg/logx"
	"github.com/KYoiRyi/coLAN/internal/pkg/resp"
)

const (
	CreateRate  = 0.05
	CreateBurst = 2
	AuthRate    = 0.5
	AuthBurst   = 5
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes IP-based rate limiters, configures CORS, and applies global
// and per-route middleware.
func Router(deps *AppDeps) http.Handler {
	createLimiter := limiter.NewIPRateLimiter(rate.Limit(CreateRate), CreateBurst)
	authLimiter := limiter.NewIPRateLimiter(rate.Limit(AuthRate), AuthBurst)

	r := chi.NewRouter()

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "coLAN Server",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/rooms", HandleListRooms(deps))
		api.With(createLimiter.Middleware).Post("/rooms", HandleCreateRoom(deps))
		api.Get("/room/{roomID}", HandleGetRoom(deps))
		api.Get("/room/{roomID}/users", HandleRoomUsers(deps))

		api.Post("/join_room", HandleJoinRoom(deps))
		api.Post("/leave_room", HandleLeaveRoom(deps))
		api.Post("/heartbeat", HandleHeartbeat(deps))
		api.Get("/online_users", HandleOnlineUsers(deps))
		api.Post("/validate_username", HandleValidateUsername(deps))

		api.Get("/messages", HandleListMessages(deps))
		api.Post("/messages", HandleSendMessage(deps))

		api.Post("/upload", HandleUpload(deps))

		api.Route("/auth", func(auth chi.Router) {
			auth.Use(authLimiter.Middleware)
			auth.Post("/temp-login", HandleTempLogin(deps))
			auth.Post("/permanent-login", HandlePermanentLogin(deps))
			auth.Post("/convert-to-permanent", HandleConvertToPermanent(deps))
			auth.Post("/logout", HandleLogout(deps))
		})

		api.Get("/events", HandleEvents(deps))
	})

	// Uploaded blobs are served directly only for the local backend; the S3
	// backend hands out absolute URLs instead.
	if deps.Config.StorageBackend == configs.StorageBackendLocal {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.Config.UploadDir)))
		r.Get("/uploads/*", fileServer.ServeHTTP)
	}

	return r
}
