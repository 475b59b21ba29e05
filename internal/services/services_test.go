package services

import (
	"context"
	"path/filepath"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/db"
	"inkwell/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db         *gorm.DB
	auth       *AuthService
	content    *ContentService
	engagement *EngagementService
	uploadDir  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	gdb, err := db.Open(&config.Config{
		DatabaseDriver: "sqlite",
		DatabaseURL:    filepath.Join(dir, "test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	uploadDir := filepath.Join(dir, "uploads")
	images, err := NewLocalImageStore(uploadDir, 1<<20)
	require.NoError(t, err)

	return &testEnv{
		db:         gdb,
		auth:       NewAuthService(gdb),
		content:    NewContentService(gdb, images),
		engagement: NewEngagementService(gdb),
		uploadDir:  uploadDir,
	}
}

func (e *testEnv) mustRegister(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := e.auth.Register(context.Background(), username, "pw-"+username)
	require.NoError(t, err)
	return u
}

func (e *testEnv) mustPost(t *testing.T, author *models.User, title string) *models.Post {
	t.Helper()
	p, err := e.content.CreatePost(context.Background(), author, title, "body of "+title, nil)
	require.NoError(t, err)
	return p
}

func (e *testEnv) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := e.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
