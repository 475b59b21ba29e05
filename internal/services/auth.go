package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"inkwell/internal/models"
	"inkwell/internal/utils"

	"gorm.io/gorm"
)

// AuthService owns user accounts and credential checks. Binding a user to
// a browser session is done by the middleware package.
type AuthService struct {
	db *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// Register creates an account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, newError(ErrValidation, "Username and password are required")
	}
	if err := validateUsername(username); err != nil {
		return nil, err
	}

	taken, err := s.usernameTaken(ctx, username, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, newError(ErrConflict, "Username is already taken")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: username,
		Password: hash,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// Lost a race with a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newError(ErrConflict, "Username is already taken")
		}
		return nil, err
	}
	return &user, nil
}

// Authenticate checks a username/password pair.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, newError(ErrValidation, "Username and password are required")
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrAuth, "Invalid username or password")
		}
		return nil, err
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, newError(ErrAuth, "Invalid username or password")
	}
	return &user, nil
}

// CurrentUser resolves a session's user id. ok is false when no such user
// exists; err is only set for storage failures.
func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (user *models.User, ok bool, err error) {
	if userID == 0 {
		return nil, false, nil
	}
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &u, true, nil
}

// UpdateProfile renames the actor and, when newPassword is not empty,
// replaces the password hash.
func (s *AuthService) UpdateProfile(ctx context.Context, actor *models.User, newUsername, newPassword string) error {
	if actor == nil {
		return newError(ErrLoginRequired, "Please log in first")
	}
	newUsername = strings.TrimSpace(newUsername)
	if newUsername == "" {
		return newError(ErrValidation, "Username is required")
	}
	if err := validateUsername(newUsername); err != nil {
		return err
	}

	updates := make(map[string]interface{})
	if newUsername != actor.Username {
		taken, err := s.usernameTaken(ctx, newUsername, actor.ID)
		if err != nil {
			return err
		}
		if taken {
			return newError(ErrConflict, "Username is already taken")
		}
		updates["username"] = newUsername
	}

	if newPassword != "" {
		hash, err := utils.HashPassword(newPassword)
		if err != nil {
			return err
		}
		updates["password"] = hash
	}

	if len(updates) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(actor).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return newError(ErrConflict, "Username is already taken")
		}
		return err
	}
	return nil
}

// MaxUsernameLength matches the users.username column.
const MaxUsernameLength = 50

func validateUsername(username string) error {
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return newError(ErrValidation, fmt.Sprintf("Username must be at most %d characters", MaxUsernameLength))
	}
	return nil
}

func (s *AuthService) usernameTaken(ctx context.Context, username string, exceptID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? AND id <> ?", username, exceptID).
		Count(&count).Error
	return count > 0, err
}
