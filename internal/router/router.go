package router

import (
	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the long-lived handles the routes are built from.
type Deps struct {
	DB           *gorm.DB
	Auth         *services.AuthService
	Content      *services.ContentService
	Engagement   *services.EngagementService
	DefaultOrder services.PostOrder
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	r.Use(middleware.LoadUser(deps.Auth))

	// Handlers
	authHandler := handlers.NewAuthHandler(deps.Auth)
	userHandler := handlers.NewUserHandler(deps.Auth)
	postHandler := handlers.NewPostHandler(deps.Content, deps.Engagement, deps.DefaultOrder)
	engagementHandler := handlers.NewEngagementHandler(deps.Engagement)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	// Public Routes
	r.GET("/", postHandler.Index)
	r.GET("/post/:id", postHandler.Detail)
	r.GET("/healthz", healthHandler.Check)

	r.GET("/register", authHandler.ShowRegister)
	r.POST("/register", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/logout", authHandler.Logout)

		authorized.GET("/edit_profile", userHandler.ShowEditProfile)
		authorized.POST("/edit_profile", userHandler.EditProfile)

		authorized.GET("/create_post", postHandler.ShowCreate)
		authorized.POST("/create_post", postHandler.Create)
		authorized.GET("/edit_post/:id", postHandler.ShowEdit)
		authorized.POST("/edit_post/:id", postHandler.Update)
		authorized.POST("/delete_post/:id", postHandler.Delete)

		authorized.POST("/like/:id", engagementHandler.Like)
		authorized.POST("/comment/:id", engagementHandler.Comment)
	}
}
