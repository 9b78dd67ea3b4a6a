package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/institute-console/internal/model"
	"github.com/stemsi/institute-console/internal/response"
	"github.com/stemsi/institute-console/internal/service"
	"github.com/stemsi/institute-console/internal/session"
)

// ContextKeySession is the gin context key of the admitted session.
const ContextKeySession = "session"

// Login routes the guards redirect to.
const (
	TeacherLoginPath = "/login/teacher"
	AdminLoginPath   = "/login"
)

// CurrentSession returns the session admitted by a guard, or nil.
func CurrentSession(c *gin.Context) *model.Session {
	v, exists := c.Get(ContextKeySession)
	if !exists {
		return nil
	}
	sess, _ := v.(*model.Session)
	return sess
}

func admit(c *gin.Context, sess *model.Session) {
	c.Set(ContextKeySession, sess)
	c.Request = c.Request.WithContext(service.WithActor(c.Request.Context(), sess.Actor()))
	c.Next()
}

// RequireTeacher admits requests whose session carries a teacher login and
// redirects everything else to the teacher login before any handler runs.
func RequireTeacher(provider *session.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := provider.Current(c)
		if err != nil || sess.Teacher == nil {
			c.Redirect(http.StatusFound, TeacherLoginPath)
			c.Abort()
			return
		}
		admit(c, sess)
	}
}

// RequireAdmin admits sessions holding backend tokens. An expired access
// token is refreshed first; if that is refused the admin login is dropped.
func RequireAdmin(provider *session.Provider, auth *service.AuthService, log zerolog.Logger) gin.HandlerFunc {
	guardLog := log.With().Str("component", "admin_guard").Logger()

	return func(c *gin.Context) {
		sess, err := provider.Current(c)
		if err != nil || sess.Tokens == nil {
			c.Redirect(http.StatusFound, AdminLoginPath)
			c.Abort()
			return
		}

		changed, err := auth.EnsureFresh(c.Request.Context(), sess.Tokens)
		switch {
		case errors.Is(err, service.ErrTokenExpired):
			_ = provider.Forget(c, func(s *model.Session) { s.Tokens = nil })
			c.Redirect(http.StatusFound, AdminLoginPath)
			c.Abort()
			return
		case err != nil:
			// The backend will reject a stale token itself; the page shows that error.
			guardLog.Warn().Err(err).Msg("Token refresh failed")
		case changed:
			if err := provider.Save(c, sess); err != nil {
				guardLog.Error().Err(err).Msg("Save refreshed token failed")
			}
		}
		admit(c, sess)
	}
}

// RequireAnySession admits any logged-in session and answers 401 otherwise.
// Used by endpoints that are not pages.
func RequireAnySession(provider *session.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := provider.Current(c)
		if err != nil {
			code := response.ErrSessionRequired
			if errors.Is(err, session.ErrMalformedSession) {
				code = response.ErrSessionMalformed
			}
			response.AbortFail(c, http.StatusUnauthorized, code)
			return
		}
		admit(c, sess)
	}
}
