package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"inkwell/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PostOrder selects how ListPosts sorts.
type PostOrder string

const (
	OrderOldest PostOrder = "oldest"
	OrderNewest PostOrder = "newest"
)

// ParsePostOrder falls back to def for anything unrecognised.
func ParsePostOrder(s string, def PostOrder) PostOrder {
	switch PostOrder(strings.ToLower(s)) {
	case OrderOldest:
		return OrderOldest
	case OrderNewest:
		return OrderNewest
	}
	return def
}

// ContentService handles post CRUD and the author-only gate.
type ContentService struct {
	db     *gorm.DB
	images ImageStore
}

func NewContentService(db *gorm.DB, images ImageStore) *ContentService {
	return &ContentService{db: db, images: images}
}

// ListPosts returns every post with its author, comments and like count.
func (s *ContentService) ListPosts(ctx context.Context, order PostOrder) ([]models.Post, error) {
	q := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Comments.User")

	if order == OrderNewest {
		q = q.Order("created_at DESC, id DESC")
	} else {
		q = q.Order("created_at ASC, id ASC")
	}

	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	if err := s.fillLikeCounts(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost loads one post with author and comments.
func (s *ContentService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Comments.User").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "Post not found")
		}
		return nil, err
	}

	posts := []models.Post{post}
	if err := s.fillLikeCounts(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// CreatePost stores a new post authored by actor. If image is not nil it is
// saved first and removed again should the insert fail.
func (s *ContentService) CreatePost(ctx context.Context, actor *models.User, title, content string, image *ImageUpload) (*models.Post, error) {
	if actor == nil {
		return nil, newError(ErrLoginRequired, "Please log in first")
	}
	if err := validatePost(title, content); err != nil {
		return nil, err
	}

	post := models.Post{
		Title:     strings.TrimSpace(title),
		Content:   content,
		AuthorID:  actor.ID,
		CreatedAt: time.Now().UTC(),
	}

	if image != nil {
		key, err := s.images.Save(ctx, image)
		if err != nil {
			return nil, err
		}
		post.ImageFilename = key
		post.ImageOriginalName = originalName(image.Filename)
	}

	if err := s.db.WithContext(ctx).Omit("Author").Create(&post).Error; err != nil {
		s.removeImage(post.ImageFilename)
		return nil, err
	}
	post.Author = *actor
	return &post, nil
}

// EditPost replaces title, content and optionally the image of a post the
// actor wrote.
func (s *ContentService) EditPost(ctx context.Context, actor *models.User, id uint, title, content string, image *ImageUpload) (*models.Post, error) {
	post, err := s.ownedPost(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := validatePost(title, content); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"title":   strings.TrimSpace(title),
		"content": content,
	}

	oldImage := post.ImageFilename
	newImage := ""
	if image != nil {
		newImage, err = s.images.Save(ctx, image)
		if err != nil {
			return nil, err
		}
		updates["image_filename"] = newImage
		updates["image_original_name"] = originalName(image.Filename)
	}

	if err := s.db.WithContext(ctx).Model(post).Updates(updates).Error; err != nil {
		s.removeImage(newImage)
		return nil, err
	}
	if newImage != "" {
		s.removeImage(oldImage)
	}
	return post, nil
}

// DeletePost removes a post the actor wrote together with its likes and
// comments, in one transaction.
func (s *ContentService) DeletePost(ctx context.Context, actor *models.User, id uint) error {
	post, err := s.ownedPost(ctx, actor, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, post.ID).Error
	})
	if err != nil {
		return err
	}

	s.removeImage(post.ImageFilename)
	return nil
}

// ownedPost applies the not-found check and then the author gate.
func (s *ContentService) ownedPost(ctx context.Context, actor *models.User, id uint) (*models.Post, error) {
	if actor == nil {
		return nil, newError(ErrLoginRequired, "Please log in first")
	}
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "Post not found")
		}
		return nil, err
	}
	if !post.IsAuthor(actor) {
		return nil, newError(ErrAuthz, "Access denied: you are not the author of this post")
	}
	return &post, nil
}

// fillLikeCounts batches one grouped count query for the page.
func (s *ContentService) fillLikeCounts(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int64
	}
	var results []countResult
	err := s.db.WithContext(ctx).Model(&models.Like{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results).Error
	if err != nil {
		return err
	}

	countMap := make(map[uint]int64, len(results))
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}
	for i := range posts {
		posts[i].LikeCount = countMap[posts[i].ID]
	}
	return nil
}

func (s *ContentService) removeImage(key string) {
	if key == "" {
		return
	}
	if err := s.images.Remove(key); err != nil {
		logrus.WithError(err).WithField("image", key).Warn("Failed to remove image")
	}
}

func validatePost(title, content string) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return newError(ErrValidation, "Title and content are required")
	}
	if len([]rune(strings.TrimSpace(title))) > 100 {
		return newError(ErrValidation, "Title must be at most 100 characters")
	}
	return nil
}
