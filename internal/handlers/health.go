package handlers

import (
	"net/http"

	"inkwell/internal/db"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(gdb *gorm.DB) *HealthHandler {
	return &HealthHandler{db: gdb}
}

// Check - GET /healthz
func (h *HealthHandler) Check(c *gin.Context) {
	if err := db.Ping(c.Request.Context(), h.db); err != nil {
		logrus.WithError(err).Error("Database ping failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
