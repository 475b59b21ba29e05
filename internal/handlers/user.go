package handlers

import (
	"net/http"

	"inkwell/internal/middleware"
	"inkwell/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	auth *services.AuthService
}

func NewUserHandler(auth *services.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

// ShowEditProfile - GET /edit_profile
func (h *UserHandler) ShowEditProfile(c *gin.Context) {
	Render(c, http.StatusOK, "user/edit_profile.html", gin.H{
		"Title": "Edit profile",
		"User":  middleware.CurrentUser(c),
	})
}

// EditProfile - POST /edit_profile
// A blank password field keeps the current password.
func (h *UserHandler) EditProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	username := c.PostForm("username")
	password := c.PostForm("password")

	if err := h.auth.UpdateProfile(c.Request.Context(), user, username, password); err != nil {
		handleServiceError(c, err, "/edit_profile")
		return
	}

	redirectWithFlash(c, "/", middleware.FlashSuccess, "Profile updated.")
}
