package models

import (
	"time"
)

type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"size:100;not null" json:"title"`
	Content  string `gorm:"type:text;not null" json:"content"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`

	// ImageFilename is the storage key of the uploaded image, empty when the
	// post has none. ImageOriginalName is the sanitized name it was uploaded as.
	ImageFilename     string `gorm:"size:100" json:"image_filename"`
	ImageOriginalName string `gorm:"size:255" json:"image_original_name"`

	Likes     []Like    `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Comments  []Comment `gorm:"constraint:OnDelete:CASCADE;" json:"comments,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Not a column, filled in by listing queries
	LikeCount int64 `gorm:"-" json:"like_count"`
}

func (p *Post) HasImage() bool {
	return p.ImageFilename != ""
}

func (p *Post) IsAuthor(u *User) bool {
	return u != nil && p.AuthorID == u.ID
}
