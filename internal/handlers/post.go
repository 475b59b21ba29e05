package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"mime/multipart"
	"net/http"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	content      *services.ContentService
	engagement   *services.EngagementService
	defaultOrder services.PostOrder
}

func NewPostHandler(content *services.ContentService, engagement *services.EngagementService, defaultOrder services.PostOrder) *PostHandler {
	return &PostHandler{
		content:      content,
		engagement:   engagement,
		defaultOrder: defaultOrder,
	}
}

// postView is what the templates see for one post. Pointers keep the
// embedded Post's pointer methods reachable from templates.
type postView struct {
	models.Post
	ContentHTML template.HTML
	LikedByMe   bool
	CanEdit     bool
}

func (h *PostHandler) buildViews(c *gin.Context, posts []models.Post) ([]*postView, error) {
	user := middleware.CurrentUser(c)

	liked := map[uint]bool{}
	if user != nil {
		ids := make([]uint, len(posts))
		for i, p := range posts {
			ids[i] = p.ID
		}
		var err error
		if liked, err = h.engagement.LikedPostIDs(c.Request.Context(), user.ID, ids); err != nil {
			return nil, err
		}
	}

	views := make([]*postView, len(posts))
	for i, p := range posts {
		cacheKey := fmt.Sprintf("post:html:%d:%d", p.ID, p.UpdatedAt.UnixNano())
		views[i] = &postView{
			Post:        p,
			ContentHTML: utils.RenderMarkdownCached(cacheKey, p.Content),
			LikedByMe:   liked[p.ID],
			CanEdit:     p.IsAuthor(user),
		}
	}
	return views, nil
}

// Index - GET /
func (h *PostHandler) Index(c *gin.Context) {
	order := services.ParsePostOrder(c.Query("order"), h.defaultOrder)

	posts, err := h.content.ListPosts(c.Request.Context(), order)
	if err != nil {
		handleServiceError(c, err, "/")
		return
	}

	views, err := h.buildViews(c, posts)
	if err != nil {
		handleServiceError(c, err, "/")
		return
	}

	Render(c, http.StatusOK, "post/list.html", gin.H{
		"Title": "All posts",
		"Posts": views,
		"Order": string(order),
	})
}

// Detail - GET /post/:id
func (h *PostHandler) Detail(c *gin.Context) {
	post, err := h.content.GetPost(c.Request.Context(), utils.StringToUint(c.Param("id")))
	if err != nil {
		handleServiceError(c, err, "/")
		return
	}

	views, err := h.buildViews(c, []models.Post{*post})
	if err != nil {
		handleServiceError(c, err, "/")
		return
	}

	Render(c, http.StatusOK, "post/detail.html", gin.H{
		"Title": post.Title,
		"Post":  views[0],
	})
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "post/create.html", gin.H{"Title": "New post"})
}

// Create - POST /create_post
func (h *PostHandler) Create(c *gin.Context) {
	image, closeImage, err := imageFromForm(c)
	if err != nil {
		redirectWithFlash(c, "/create_post", middleware.FlashDanger, "Could not read the uploaded image.")
		return
	}
	defer closeImage()

	_, err = h.content.CreatePost(
		c.Request.Context(),
		middleware.CurrentUser(c),
		c.PostForm("title"),
		c.PostForm("content"),
		image,
	)
	if err != nil {
		handleServiceError(c, err, "/create_post")
		return
	}

	redirectWithFlash(c, "/", middleware.FlashSuccess, "Post created!")
}

// ShowEdit - GET /edit_post/:id
func (h *PostHandler) ShowEdit(c *gin.Context) {
	user := middleware.CurrentUser(c)
	post, err := h.content.GetPost(c.Request.Context(), utils.StringToUint(c.Param("id")))
	if err != nil {
		handleServiceError(c, err, "/")
		return
	}
	if !post.IsAuthor(user) {
		redirectWithFlash(c, "/", middleware.FlashDanger, "Access denied: you are not the author of this post")
		return
	}

	Render(c, http.StatusOK, "post/edit.html", gin.H{
		"Title": "Edit post",
		"Post":  post,
	})
}

// Update - POST /edit_post/:id
func (h *PostHandler) Update(c *gin.Context) {
	id := utils.StringToUint(c.Param("id"))

	image, closeImage, err := imageFromForm(c)
	if err != nil {
		redirectWithFlash(c, fmt.Sprintf("/edit_post/%d", id), middleware.FlashDanger, "Could not read the uploaded image.")
		return
	}
	defer closeImage()

	_, err = h.content.EditPost(
		c.Request.Context(),
		middleware.CurrentUser(c),
		id,
		c.PostForm("title"),
		c.PostForm("content"),
		image,
	)
	if err != nil {
		handleServiceError(c, err, fmt.Sprintf("/edit_post/%d", id))
		return
	}

	redirectWithFlash(c, "/", middleware.FlashSuccess, "Post updated!")
}

// Delete - POST /delete_post/:id
func (h *PostHandler) Delete(c *gin.Context) {
	id := utils.StringToUint(c.Param("id"))

	if err := h.content.DeletePost(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		handleServiceError(c, err, "/")
		return
	}

	redirectWithFlash(c, "/", middleware.FlashSuccess, "Post deleted!")
}

// imageFromForm returns nil when the form carries no file in "image".
func imageFromForm(c *gin.Context) (*services.ImageUpload, func(), error) {
	noop := func() {}

	header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, err
	}
	if header.Filename == "" || header.Size == 0 {
		return nil, noop, nil
	}

	var file multipart.File
	if file, err = header.Open(); err != nil {
		return nil, noop, err
	}

	return &services.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, func() { file.Close() }, nil
}
