package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/adscenter/reports/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares. Read routes
// are public; mutating report routes and account routes sit behind the
// authentication gate.
func New(reportHandler *handlers.ReportHandler, authHandler *handlers.AuthHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api")

	api.POST("/login", authHandler.Login)
	api.POST("/logout", authHandler.Logout)
	api.GET("/user", authHandler.RequireAuth(), authHandler.Me)
	api.POST("/change-password", authHandler.RequireAuth(), authHandler.ChangePassword)

	api.POST("/reports", reportHandler.Create)
	api.GET("/reports", reportHandler.List)
	api.GET("/reports/export", reportHandler.Export)
	api.GET("/reports/date/:date", reportHandler.GetByDate)
	api.GET("/reports/:id", reportHandler.Get)
	api.PUT("/reports/:id", authHandler.RequireAuth(), reportHandler.Update)
	api.DELETE("/reports/:id", authHandler.RequireAuth(), reportHandler.Delete)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
