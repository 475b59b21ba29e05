package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdownSanitizes(t *testing.T) {
	out := string(RenderMarkdown("**bold** <script>alert(1)</script>"))

	assert.Contains(t, out, "<strong>bold</strong>")
	assert.NotContains(t, out, "<script>")
}

func TestRenderMarkdownImagesAreLazy(t *testing.T) {
	out := string(RenderMarkdown("![cat](https://example.com/cat.png)"))

	assert.Contains(t, out, `loading="lazy"`)
	assert.Contains(t, out, `referrerpolicy="no-referrer"`)
}

func TestRenderMarkdownCached(t *testing.T) {
	first := RenderMarkdownCached("test:md:1", "first")
	second := RenderMarkdownCached("test:md:1", "second")

	assert.Equal(t, first, second)
	assert.True(t, strings.Contains(string(first), "first"))
}

func TestCacheExpiry(t *testing.T) {
	c := GetCache()
	c.Set("test:ttl", "v", time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	assert.Nil(t, c.Get("test:ttl"))

	c.Set("test:live", "v", time.Minute)
	assert.Equal(t, "v", c.Get("test:live"))
	c.Delete("test:live")
	assert.Nil(t, c.Get("test:live"))
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("pw1")
	assert.NoError(t, err)
	assert.NotEqual(t, "pw1", hash)
	assert.True(t, CheckPasswordHash("pw1", hash))
	assert.False(t, CheckPasswordHash("pw2", hash))
}

func TestStringToUint(t *testing.T) {
	assert.Equal(t, uint(42), StringToUint("42"))
	assert.Equal(t, uint(0), StringToUint("-1"))
	assert.Equal(t, uint(0), StringToUint("abc"))
}
