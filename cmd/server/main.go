package main

import (
	"inkwell/internal/config"
	"inkwell/internal/db"
	"inkwell/internal/middleware"
	"inkwell/internal/router"
	"inkwell/internal/services"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	gormsessions "github.com/gin-contrib/sessions/gorm"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()
	cfg.SetupLogging()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	// Initialize Database
	database, err := db.Open(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to open database")
	}

	images, err := services.NewLocalImageStore(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to prepare upload directory")
	}

	// Initialize Gin
	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.Use(middleware.Sessions("inkwell_session", newSessionStore(cfg, database), middleware.SessionOptions(cfg.SessionMaxAge)))

	renderer, err := router.LoadTemplates(cfg.TemplatesDir)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load templates")
	}
	r.HTMLRender = renderer

	// Static Assets
	r.Static("/static", cfg.StaticDir)
	r.Static("/uploads", cfg.UploadDir)

	router.RegisterRoutes(r, router.Deps{
		DB:           database,
		Auth:         services.NewAuthService(database),
		Content:      services.NewContentService(database, images),
		Engagement:   services.NewEngagementService(database),
		DefaultOrder: services.ParsePostOrder(cfg.PostOrder, services.OrderOldest),
	})

	logrus.WithField("port", cfg.Port).Info("Inkwell server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("Server stopped")
	}
}

// newSessionStore keeps sessions in the database unless SESSION_STORE=cookie.
func newSessionStore(cfg *config.Config, database *gorm.DB) sessions.Store {
	if cfg.SessionStore == "cookie" {
		return cookie.NewStore([]byte(cfg.SessionSecret))
	}
	return gormsessions.NewStore(database, true, []byte(cfg.SessionSecret))
}
