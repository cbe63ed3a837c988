package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	googleauth "study-assistant/internal/auth"
	"study-assistant/internal/chats"
	"study-assistant/internal/documents"
	"study-assistant/internal/scan"
	"study-assistant/internal/shared/config"
	"study-assistant/internal/shared/metrics"
	"study-assistant/internal/shared/server/middleware"
	"study-assistant/internal/shared/server/respond"
	"study-assistant/internal/users"
)

// PublicPrefixes are reachable without a session.
var PublicPrefixes = []string{"/api/v1/auth/", "/api/v1/health", "/api/v1/metrics"}

// RouterDeps carries the handlers the router mounts. Nil handlers are skipped.
type RouterDeps struct {
	Config          config.Config
	Verifier        middleware.TokenVerifier
	DocumentHandler *documents.Handler
	ScanHandler     *scan.Handler
	ChatHandler     *chats.Handler
	UserHandler     *users.Handler
	GoogleAuth      *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	if deps.Config.ObjectStoreType == "local" && deps.Config.PublicUploadsPath != "" {
		r.Static(deps.Config.PublicUploadsPath, deps.Config.LocalStoreDir)
	}

	api := r.Group("/api/v1")
	api.Use(middleware.Auth(deps.Verifier, PublicPrefixes...))
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.ScanHandler != nil {
		deps.ScanHandler.RegisterRoutes(api)
	}
	if deps.ChatHandler != nil {
		deps.ChatHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
