package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngUpload(name string) *ImageUpload {
	body := "\x89PNG fake image bytes"
	return &ImageUpload{
		Filename:    name,
		ContentType: "image/png",
		Size:        int64(len(body)),
		Body:        strings.NewReader(body),
	}
}

func TestCreatePostAndList(t *testing.T) {
	env := newTestEnv(t)
	alice := env.mustRegister(t, "alice")
	before := time.Now().UTC().Add(-time.Second)

	post, err := env.content.CreatePost(context.Background(), alice, "Hello", "World", nil)

	require.NoError(t, err)
	assert.Equal(t, alice.ID, post.AuthorID)
	assert.False(t, post.HasImage())
	assert.True(t, post.CreatedAt.After(before))
	assert.Equal(t, time.UTC, post.CreatedAt.Location())

	posts, err := env.content.ListPosts(context.Background(), OrderOldest)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Hello", posts[0].Title)
	assert.Equal(t, "alice", posts[0].Author.Username)
}

func TestCreatePostValidation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.mustRegister(t, "alice")
	ctx := context.Background()

	_, err := env.content.CreatePost(ctx, alice, "", "World", nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.content.CreatePost(ctx, alice, "Hello", "   ", nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.content.CreatePost(ctx, alice, strings.Repeat("x", 101), "World", nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.content.CreatePost(ctx, nil, "Hello", "World", nil)
	assert.ErrorIs(t, err, ErrAuth)

	assert.Equal(t, int64(0), env.count(t, &models.Post{}, ""))
}

func TestCreatePostWithImage(t *testing.T) {
	env := newTestEnv(t)
	alice := env.mustRegister(t, "alice")

	post, err := env.content.CreatePost(context.Background(), alice, "Hello", "World", pngUpload("../../etc/My Cat.PNG"))

	require.NoError(t, err)
	assert.True(t, post.HasImage())
	assert.True(t, strings.HasSuffix(post.ImageFilename, ".png"))
	assert.Equal(t, "My_Cat.PNG", post.ImageOriginalName)
	assert.FileExists(t, filepath.Join(env.uploadDir, post.ImageFilename))
}

func TestLongOriginalNameIsTruncated(t *testing.T) {
	env := newTestEnv(t)
	alice := env.mustRegister(t, "alice")
	long := strings.Repeat("x", 400) + ".png"

	post, err := env.content.CreatePost(context.Background(), alice, "Hello", "World", pngUpload(long))
	require.NoError(t, err)
	assert.Len(t, post.ImageOriginalName, MaxOriginalNameLength)
	assert.True(t, strings.HasSuffix(post.ImageOriginalName, ".png"))

	edited, err := env.content.EditPost(context.Background(), alice, post.ID, "Hello", "World", pngUpload(strings.Repeat("y", 300)))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("y", MaxOriginalNameLength), edited.ImageOriginalName)

	var stored models.Post
	require.NoError(t, env.db.First(&stored, post.ID).Error)
	assert.Len(t, stored.ImageOriginalName, MaxOriginalNameLength)
}

func TestCreatePostRejectsNonImage(t *testing.T) {
	env := newTestEnv(t)
	alice := env.mustRegister(t, "alice")
	upload := &ImageUpload{Filename: "x.sh", ContentType: "text/plain", Size: 2, Body: strings.NewReader("hi")}

	_, err := env.content.CreatePost(context.Background(), alice, "Hello", "World", upload)

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, int64(0), env.count(t, &models.Post{}, ""))
}

func TestSameFilenameDoesNotOverwrite(t *testing.T) {
	env := newTestEnv(t)
	alice := env.mustRegister(t, "alice")

	p1, err := env.content.CreatePost(context.Background(), alice, "One", "1", pngUpload("cat.png"))
	require.NoError(t, err)
	p2, err := env.content.CreatePost(context.Background(), alice, "Two", "2", pngUpload("cat.png"))
	require.NoError(t, err)

	assert.NotEqual(t, p1.ImageFilename, p2.ImageFilename)
	assert.FileExists(t, filepath.Join(env.uploadDir, p1.ImageFilename))
	assert.FileExists(t, filepath.Join(env.uploadDir, p2.ImageFilename))
}

func TestGetPostNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.content.GetPost(context.Background(), 42)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEditPost(t *testing.T) {
	env := newTestEnv(t)
	alice := env.mustRegister(t, "alice")
	post, err := env.content.CreatePost(context.Background(), alice, "Hello", "World", pngUpload("a.png"))
	require.NoError(t, err)
	oldImage := post.ImageFilename

	edited, err := env.content.EditPost(context.Background(), alice, post.ID, "Hi", "There", pngUpload("b.jpg"))

	require.NoError(t, err)
	assert.Equal(t, "Hi", edited.Title)
	assert.NotEqual(t, oldImage, edited.ImageFilename)
	assert.FileExists(t, filepath.Join(env.uploadDir, edited.ImageFilename))
	assert.NoFileExists(t, filepath.Join(env.uploadDir, oldImage))

	stored, err := env.content.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "There", stored.Content)
	assert.Equal(t, "b.jpg", stored.ImageOriginalName)
}

func TestEditPostKeepsImageWithoutUpload(t *testing.T) {
	env := newTestEnv(t)
	alice := env.mustRegister(t, "alice")
	post, err := env.content.CreatePost(context.Background(), alice, "Hello", "World", pngUpload("a.png"))
	require.NoError(t, err)

	edited, err := env.content.EditPost(context.Background(), alice, post.ID, "Hello", "Again", nil)

	require.NoError(t, err)
	assert.Equal(t, post.ImageFilename, edited.ImageFilename)
	assert.FileExists(t, filepath.Join(env.uploadDir, post.ImageFilename))
}

func TestEditPostErrors(t *testing.T) {
	env := newTestEnv(t)
	alice := env.mustRegister(t, "alice")
	bob := env.mustRegister(t, "bob")
	post := env.mustPost(t, alice, "Hello")
	ctx := context.Background()

	_, err := env.content.EditPost(ctx, alice, 999, "x", "y", nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.content.EditPost(ctx, bob, post.ID, "Hacked", "y", nil)
	assert.ErrorIs(t, err, ErrAuthz)

	_, err = env.content.EditPost(ctx, alice, post.ID, "", "y", nil)
	assert.ErrorIs(t, err, ErrValidation)

	stored, err := env.content.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", stored.Title)
}

func TestDeletePostByNonAuthor(t *testing.T) {
	env := newTestEnv(t)
	alice := env.mustRegister(t, "alice")
	bob := env.mustRegister(t, "bob")
	post := env.mustPost(t, alice, "Hello")

	err := env.content.DeletePost(context.Background(), bob, post.ID)

	assert.ErrorIs(t, err, ErrAuthz)
	assert.Equal(t, int64(1), env.count(t, &models.Post{}, "id = ?", post.ID))
}

func TestDeletePostCascades(t *testing.T) {
	env := newTestEnv(t)
	alice := env.mustRegister(t, "alice")
	bob := env.mustRegister(t, "bob")
	ctx := context.Background()
	post, err := env.content.CreatePost(ctx, alice, "Hello", "World", pngUpload("a.png"))
	require.NoError(t, err)
	other := env.mustPost(t, alice, "Other")

	_, err = env.engagement.ToggleLike(ctx, bob, post.ID)
	require.NoError(t, err)
	_, err = env.engagement.ToggleLike(ctx, bob, other.ID)
	require.NoError(t, err)
	_, err = env.engagement.AddComment(ctx, bob, post.ID, "nice")
	require.NoError(t, err)

	require.NoError(t, env.content.DeletePost(ctx, alice, post.ID))

	assert.Equal(t, int64(0), env.count(t, &models.Post{}, "id = ?", post.ID))
	assert.Equal(t, int64(0), env.count(t, &models.Like{}, "post_id = ?", post.ID))
	assert.Equal(t, int64(0), env.count(t, &models.Comment{}, "post_id = ?", post.ID))
	assert.Equal(t, int64(1), env.count(t, &models.Like{}, "post_id = ?", other.ID))
	assert.NoFileExists(t, filepath.Join(env.uploadDir, post.ImageFilename))

	err = env.content.DeletePost(ctx, alice, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPostsOrder(t *testing.T) {
	env := newTestEnv(t)
	alice := env.mustRegister(t, "alice")
	first := env.mustPost(t, alice, "First")
	second := env.mustPost(t, alice, "Second")
	// Same timestamp: the id breaks the tie.
	require.NoError(t, env.db.Model(&models.Post{}).Where("id IN ?", []uint{first.ID, second.ID}).
		Update("created_at", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).Error)
	third := env.mustPost(t, alice, "Third")

	oldest, err := env.content.ListPosts(context.Background(), OrderOldest)
	require.NoError(t, err)
	newest, err := env.content.ListPosts(context.Background(), OrderNewest)
	require.NoError(t, err)

	assert.Equal(t, []uint{first.ID, second.ID, third.ID}, postIDs(oldest))
	assert.Equal(t, []uint{third.ID, second.ID, first.ID}, postIDs(newest))
}

func TestListPostsIncludesEngagement(t *testing.T) {
	env := newTestEnv(t)
	alice := env.mustRegister(t, "alice")
	bob := env.mustRegister(t, "bob")
	post := env.mustPost(t, alice, "Hello")
	ctx := context.Background()

	_, err := env.engagement.ToggleLike(ctx, alice, post.ID)
	require.NoError(t, err)
	_, err = env.engagement.ToggleLike(ctx, bob, post.ID)
	require.NoError(t, err)
	_, err = env.engagement.AddComment(ctx, bob, post.ID, "first!")
	require.NoError(t, err)
	_, err = env.engagement.AddComment(ctx, alice, post.ID, "thanks")
	require.NoError(t, err)

	posts, err := env.content.ListPosts(ctx, OrderOldest)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, int64(2), posts[0].LikeCount)
	require.Len(t, posts[0].Comments, 2)
	assert.Equal(t, "first!", posts[0].Comments[0].Content)
	assert.Equal(t, "bob", posts[0].Comments[0].User.Username)
}

func TestParsePostOrder(t *testing.T) {
	assert.Equal(t, OrderNewest, ParsePostOrder("NEWEST", OrderOldest))
	assert.Equal(t, OrderOldest, ParsePostOrder("oldest", OrderNewest))
	assert.Equal(t, OrderNewest, ParsePostOrder("", OrderNewest))
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"cat.png":             "cat.png",
		"../../etc/passwd":    "passwd",
		`C:\Users\me\pic.JPG`: "pic.JPG",
		"my holiday pic.jpeg": "my_holiday_pic.jpeg",
		"..hidden":            "hidden",
		"ünïcødé.gif":         "ncd.gif",
		"":                    "",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeFilename(in), "input %q", in)
	}
}

func TestImageStoreRejectsOversize(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalImageStore(dir, 4)
	require.NoError(t, err)

	// Size claims to be small but the body is not.
	_, err = store.Save(context.Background(), &ImageUpload{
		Filename: "a.png", ContentType: "image/png", Size: 1, Body: strings.NewReader("too many bytes"),
	})

	assert.ErrorIs(t, err, ErrValidation)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestImageStoreRemove(t *testing.T) {
	store, err := NewLocalImageStore(t.TempDir(), 1<<20)
	require.NoError(t, err)

	key, err := store.Save(context.Background(), pngUpload("a.png"))
	require.NoError(t, err)

	assert.NoError(t, store.Remove(key))
	assert.NoError(t, store.Remove(key))
	assert.NoError(t, store.Remove("../outside"))
}

func postIDs(posts []models.Post) []uint {
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}
