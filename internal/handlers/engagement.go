package handlers

import (
	"inkwell/internal/middleware"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

type EngagementHandler struct {
	engagement *services.EngagementService
}

func NewEngagementHandler(engagement *services.EngagementService) *EngagementHandler {
	return &EngagementHandler{engagement: engagement}
}

// Like - POST /like/:id toggles the current user's like.
func (h *EngagementHandler) Like(c *gin.Context) {
	postID := utils.StringToUint(c.Param("id"))

	state, err := h.engagement.ToggleLike(c.Request.Context(), middleware.CurrentUser(c), postID)
	if err != nil {
		handleServiceError(c, err, "/")
		return
	}

	if state == services.Liked {
		redirectWithFlash(c, "/", middleware.FlashSuccess, "You liked this post.")
	} else {
		redirectWithFlash(c, "/", middleware.FlashInfo, "Like removed.")
	}
}

// Comment - POST /comment/:id
func (h *EngagementHandler) Comment(c *gin.Context) {
	postID := utils.StringToUint(c.Param("id"))

	_, err := h.engagement.AddComment(c.Request.Context(), middleware.CurrentUser(c), postID, c.PostForm("content"))
	if err != nil {
		handleServiceError(c, err, "/")
		return
	}

	redirectWithFlash(c, "/", middleware.FlashSuccess, "Comment added!")
}
