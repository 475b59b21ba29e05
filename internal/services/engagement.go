package services

import (
	"context"
	"strings"
	"time"

	"inkwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeState is the outcome of a toggle.
type LikeState bool

const (
	NotLiked LikeState = false
	Liked    LikeState = true
)

// EngagementService handles likes and comments.
type EngagementService struct {
	db *gorm.DB
}

func NewEngagementService(db *gorm.DB) *EngagementService {
	return &EngagementService{db: db}
}

// ToggleLike flips the actor's like on a post. The delete is conditional and
// the insert ignores a conflicting row, so racing toggles never leave more
// than one like for the pair.
func (s *EngagementService) ToggleLike(ctx context.Context, actor *models.User, postID uint) (LikeState, error) {
	if actor == nil {
		return NotLiked, newError(ErrLoginRequired, "Please log in first")
	}

	state := NotLiked
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := postExists(tx, postID); err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND post_id = ?", actor.ID, postID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			state = NotLiked
			return nil
		}

		like := models.Like{
			UserID:    actor.ID,
			PostID:    postID,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Omit("User").Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
			return err
		}
		state = Liked
		return nil
	})
	return state, err
}

// AddComment attaches a non-blank comment to a post.
func (s *EngagementService) AddComment(ctx context.Context, actor *models.User, postID uint, content string) (*models.Comment, error) {
	if actor == nil {
		return nil, newError(ErrLoginRequired, "Please log in first")
	}
	if err := postExists(s.db.WithContext(ctx), postID); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, newError(ErrValidation, "Comment cannot be empty")
	}

	comment := models.Comment{
		PostID:    postID,
		UserID:    actor.ID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Omit("User").Create(&comment).Error; err != nil {
		return nil, err
	}
	comment.User = *actor
	return &comment, nil
}

// LikedPostIDs reports which of postIDs the user has liked.
func (s *EngagementService) LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) (map[uint]bool, error) {
	liked := make(map[uint]bool)
	if userID == 0 || len(postIDs) == 0 {
		return liked, nil
	}

	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

// LikeCount counts the likes on one post.
func (s *EngagementService) LikeCount(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

func postExists(db *gorm.DB, postID uint) error {
	var count int64
	if err := db.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return newError(ErrNotFound, "Post not found")
	}
	return nil
}
