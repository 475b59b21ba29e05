package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const sessionOptionsKey = "session_options"

// SessionOptions are the cookie options every live session is saved with.
func SessionOptions(maxAge int) sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Sessions installs store under name with opts and remembers opts on the
// context, so Login can restore them after rotating the session.
func Sessions(name string, store sessions.Store, opts sessions.Options) gin.HandlerFunc {
	store.Options(opts)
	handler := sessions.Sessions(name, store)
	return func(c *gin.Context) {
		c.Set(sessionOptionsKey, opts)
		handler(c)
	}
}

func currentSessionOptions(c *gin.Context) sessions.Options {
	if v, ok := c.Get(sessionOptionsKey); ok {
		if opts, ok := v.(sessions.Options); ok {
			return opts
		}
	}
	return sessions.Options{Path: "/"}
}

func expired(opts sessions.Options) sessions.Options {
	opts.MaxAge = -1
	return opts
}
