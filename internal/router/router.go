package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/itskys/jszs/internal/config"
	"github.com/itskys/jszs/internal/handler"
	"github.com/itskys/jszs/internal/middleware"
	"github.com/itskys/jszs/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Attempt *handler.AttemptHandler
	History *handler.HistoryHandler
	Submit  *handler.SubmitHandler
	Result  *handler.ResultHandler
	Monitor *handler.MonitorHandler
	WS      *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Admin-Key", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the public ingest routes (60 requests per minute per IP).
	ingestLimiter := middleware.NewRateLimiter(60, time.Minute)

	// ─── 1. Attempt Group (Exam Client) ────────────────────────────────
	attempts := router.Group("/api/v1/attempts")
	{
		attempts.POST("", handlers.Attempt.Start)
		attempts.GET("/:id", handlers.Attempt.State)
		attempts.POST("/:id/answers", handlers.Attempt.Answer)
		attempts.POST("/:id/tab-switch", handlers.Attempt.TabSwitch)
		attempts.POST("/:id/finish", handlers.Attempt.Finish)
	}

	// ─── 2. Student Group (Resume / History / Pending) ─────────────────
	students := router.Group("/api/v1/students/:student_id")
	{
		students.GET("/resume", handlers.Attempt.PeekResume)
		students.POST("/resume", handlers.Attempt.Resume)
		students.GET("/history", handlers.History.List)
		students.DELETE("/history", handlers.History.Clear)
		students.GET("/history/:index/snapshot", handlers.History.Snapshot)
		students.GET("/pending", handlers.Submit.Pending)
		students.POST("/pending/retry", handlers.Submit.Retry)
	}

	// ─── 3. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/attempts/:id/stream", handlers.WS.AttemptStream)
	}

	// ─── 4. Ingest Group (Public, Rate Limited) ────────────────────────
	// These two routes keep their legacy paths and bare body shapes; the
	// exam client and the monitor page post to them directly.
	ingest := router.Group("/api")
	ingest.Use(ingestLimiter.Middleware())
	{
		ingest.POST("/submit", handlers.Result.Submit)
		ingest.POST("/monitor", handlers.Monitor.Heartbeat)
	}

	// ─── 5. Admin Group (Shared Key) ───────────────────────────────────
	adminAPI := router.Group("/api")
	adminAPI.Use(middleware.RequireAdminKey(cfg.AdminKey))
	{
		adminAPI.GET("/results", handlers.Result.List)
		adminAPI.DELETE("/results/:id", handlers.Result.Delete)
		// A delete without an id is a client error, not a route miss.
		adminAPI.DELETE("/results", func(c *gin.Context) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		})
		adminAPI.GET("/monitor", handlers.Monitor.List)
	}

	return router
}
