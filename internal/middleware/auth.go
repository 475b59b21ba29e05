package middleware

import (
	"net/http"
	"strconv"

	"inkwell/internal/models"
	"inkwell/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const CheckUserKey = "user"

const sessionUserKey = "user_id"

// AuthRequired ensures a user is logged in
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			AddFlash(c, FlashInfo, "Please log in to continue.")
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoadUser retrieves user from session and sets to context
func LoadUser(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		raw := session.Get(sessionUserKey)

		if raw != nil {
			user, ok, err := auth.CurrentUser(c.Request.Context(), sessionUserID(raw))
			switch {
			case err != nil:
				// Keep the session; the request just runs anonymous.
				logrus.WithError(err).Warn("Failed to load session user")
			case ok:
				c.Set(CheckUserKey, user)
			default:
				// Account is gone, forget the stale id.
				session.Delete(sessionUserKey)
				_ = session.Save()
			}
		}
		c.Next()
	}
}

// CurrentUser is the user LoadUser resolved for this request, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if u, exists := c.Get(CheckUserKey); exists {
		if user, ok := u.(*models.User); ok {
			return user
		}
	}
	return nil
}

// Login binds user to a fresh browser session. The previous session record
// is expired first so an id handed out before login never becomes
// authenticated.
func Login(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	opts := currentSessionOptions(c)

	session.Clear()
	session.Options(expired(opts))
	if err := session.Save(); err != nil {
		return err
	}

	session.Options(opts)
	session.Set(sessionUserKey, user.ID)
	c.Set(CheckUserKey, user)
	return session.Save()
}

// Logout invalidates the session. Server-side stores delete the record.
func Logout(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(expired(currentSessionOptions(c)))
	c.Set(CheckUserKey, nil)
	return session.Save()
}

func sessionUserID(v interface{}) uint {
	switch id := v.(type) {
	case uint:
		return id
	case int:
		if id > 0 {
			return uint(id)
		}
	case int64:
		if id > 0 {
			return uint(id)
		}
	case string:
		n, err := strconv.ParseUint(id, 10, 64)
		if err == nil {
			return uint(n)
		}
	}
	return 0
}
