package handlers

import (
	"errors"
	"net/http"

	"inkwell/internal/middleware"
	"inkwell/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
	}
	obj["Flashes"] = middleware.Flashes(c)
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// Error helper
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message})
}

// redirectWithFlash queues a message and sends the browser to path.
func redirectWithFlash(c *gin.Context, path, category, message string) {
	middleware.AddFlash(c, category, message)
	c.Redirect(http.StatusFound, path)
}

// handleServiceError turns the service error kinds into a flash and a
// redirect to back. Anything else is an internal failure.
func handleServiceError(c *gin.Context, err error, back string) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		switch {
		case errors.Is(err, services.ErrAuthz), errors.Is(err, services.ErrNotFound):
			// The origin form is useless here.
			redirectWithFlash(c, "/", middleware.FlashDanger, svcErr.Message)
		case errors.Is(err, services.ErrLoginRequired):
			redirectWithFlash(c, "/login", middleware.FlashInfo, svcErr.Message)
		default:
			redirectWithFlash(c, back, middleware.FlashDanger, svcErr.Message)
		}
		return
	}

	logrus.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Error("Request failed")
	RenderError(c, http.StatusInternalServerError, "Something went wrong, please try again later.")
}
