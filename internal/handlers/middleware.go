package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"blogz/internal/db"
)

// publicRoutes are reachable without a session. Keys are gin route patterns.
var publicRoutes = map[string]bool{
	"/":                 true,
	"/blog":             true,
	"/login":            true,
	"/register":         true,
	"/healthz":          true,
	"/metrics":          true,
	"/static/*filepath": true,
}

// SessionGate resolves the session cookie to a user for every request and
// sends anonymous visitors of any other route to the login page.
func (h *Handler) SessionGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid, ok := h.sessions.CurrentUserID(c.Request); ok {
			u, err := h.store.UserByID(c.Request.Context(), uid)
			switch {
			case err == nil:
				c.Set(userKey, u)
			case !errors.Is(err, db.ErrNotFound):
				log.Printf("[auth] load session user %d: %v", uid, err)
			}
		}
		if currentUser(c) == nil && !publicRoutes[c.FullPath()] {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// WithRecover recovers from handler panics and answers with the error page
// instead of dropping the connection.
func (h *Handler) WithRecover() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		log.Printf("[recover] %v (%s %s)", rec, c.Request.Method, c.Request.URL.Path)
		h.render(c, http.StatusInternalServerError, "error", gin.H{"Title": "Error"})
		c.Abort()
	})
}
