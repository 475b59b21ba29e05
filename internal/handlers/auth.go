package handlers

import (
	"net/http"

	"inkwell/internal/middleware"
	"inkwell/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	Render(c, http.StatusOK, "auth/register.html", gin.H{"Title": "Register"})
}

func (h *AuthHandler) Register(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	if _, err := h.auth.Register(c.Request.Context(), username, password); err != nil {
		handleServiceError(c, err, "/register")
		return
	}

	redirectWithFlash(c, "/login", middleware.FlashSuccess, "Registration successful! Please log in.")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", gin.H{"Title": "Log in"})
}

func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := h.auth.Authenticate(c.Request.Context(), username, password)
	if err != nil {
		handleServiceError(c, err, "/login")
		return
	}

	if err := middleware.Login(c, user); err != nil {
		handleServiceError(c, err, "/login")
		return
	}

	redirectWithFlash(c, "/", middleware.FlashSuccess, "Welcome back, "+user.Username+"!")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := middleware.Logout(c); err != nil {
		handleServiceError(c, err, "/")
		return
	}
	c.Redirect(http.StatusFound, "/")
}
