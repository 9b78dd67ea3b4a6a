package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/institute-console/internal/middleware"
	"github.com/stemsi/institute-console/internal/model"
	"github.com/stemsi/institute-console/internal/service"
	"github.com/stemsi/institute-console/internal/session"
	"github.com/stemsi/institute-console/internal/validator"
	"github.com/stemsi/institute-console/internal/web"
)

type adminLoginView struct {
	web.Page
	Username string
}

type teacherLoginView struct {
	web.Page
	Phone string
}

// AuthHandler serves the staff login pages and logout.
type AuthHandler struct {
	authService *service.AuthService
	provider    *session.Provider
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, provider *session.Provider, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		provider:    provider,
		log:         log.With().Str("component", "auth_handler").Logger(),
	}
}

// AdminLoginPage godoc
// GET /login
func (h *AuthHandler) AdminLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", adminLoginView{Page: newPage(c, "Admin login")})
}

// AdminLogin godoc
// POST /login
// Exchanges username and password for a backend token pair.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	view := adminLoginView{Page: newPage(c, "Admin login"), Username: c.PostForm("username")}

	var req model.AdminLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		c.HTML(invalid(&view.Page, fields), "login.html", view)
		return
	}

	pair, err := h.authService.AdminLogin(c.Request.Context(), req)
	if err != nil {
		c.HTML(describe(&view.Page, err), "login.html", view)
		return
	}

	if _, err := h.provider.Start(c, func(s *model.Session) { s.Tokens = pair }); err != nil {
		h.log.Error().Err(err).Msg("Start admin session failed")
		renderError(c, http.StatusInternalServerError, "Could not start a session.")
		return
	}
	c.Redirect(http.StatusSeeOther, "/staff")
}

// TeacherLoginPage godoc
// GET /login/teacher
func (h *AuthHandler) TeacherLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login_teacher.html", teacherLoginView{Page: newPage(c, "Teacher login")})
}

// TeacherLogin godoc
// POST /login/teacher
// Matches phone and password against the teacher list.
func (h *AuthHandler) TeacherLogin(c *gin.Context) {
	view := teacherLoginView{Page: newPage(c, "Teacher login"), Phone: c.PostForm("teacher_phone")}

	var req model.TeacherLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		c.HTML(invalid(&view.Page, fields), "login_teacher.html", view)
		return
	}

	identity, err := h.authService.TeacherLogin(c.Request.Context(), req)
	if err != nil {
		c.HTML(describe(&view.Page, err), "login_teacher.html", view)
		return
	}

	if _, err := h.provider.Start(c, func(s *model.Session) { s.Teacher = identity }); err != nil {
		h.log.Error().Err(err).Msg("Start teacher session failed")
		renderError(c, http.StatusInternalServerError, "Could not start a session.")
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Logout godoc
// POST /logout
// Ends the whole session and returns to the login page the session came from.
func (h *AuthHandler) Logout(c *gin.Context) {
	target := middleware.TeacherLoginPath
	if sess, err := h.provider.Current(c); err == nil && sess.Teacher == nil && sess.Tokens != nil {
		target = middleware.AdminLoginPath
	}
	if err := h.provider.End(c); err != nil {
		h.log.Warn().Err(err).Msg("Delete session failed")
	}
	c.Redirect(http.StatusSeeOther, target)
}
