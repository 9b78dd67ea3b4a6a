package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/institute-console/internal/model"
	"github.com/stemsi/institute-console/internal/response"
	"github.com/stemsi/institute-console/internal/service"
	"github.com/stemsi/institute-console/internal/session"
	"github.com/stemsi/institute-console/internal/validator"
	"github.com/stemsi/institute-console/internal/web"
)

const portalPath = "/portal"

type portalView struct {
	web.Page
	View      *service.PortalView
	StudentID string
}

// PortalHandler serves the student self-service portal.
type PortalHandler struct {
	portalService *service.PortalService
	provider      *session.Provider
	log           zerolog.Logger
	now           func() time.Time
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(portalService *service.PortalService, provider *session.Provider, log zerolog.Logger) *PortalHandler {
	return &PortalHandler{
		portalService: portalService,
		provider:      provider,
		log:           log.With().Str("component", "portal_handler").Logger(),
		now:           time.Now,
	}
}

// student returns the portal session, or nil when no student is logged in.
func (h *PortalHandler) student(c *gin.Context) *model.Session {
	sess, err := h.provider.Current(c)
	if err != nil || sess.StudentID == 0 {
		return nil
	}
	return sess
}

func (h *PortalHandler) page(sess *model.Session) portalView {
	p := web.Page{Title: "Student portal", Session: sess}
	if sess != nil && sess.StudentID != 0 {
		p.Watch = []string{service.ResourceAttendance}
	}
	return portalView{Page: p}
}

func (h *PortalHandler) month(raw string) string {
	if m := strings.TrimSpace(raw); m != "" {
		if _, err := time.Parse(service.MonthLayout, m); err == nil {
			return m
		}
	}
	return h.now().Format(service.MonthLayout)
}

// render loads the attendance view of the logged-in student into view.
func (h *PortalHandler) render(c *gin.Context, status int, sess *model.Session, view portalView, month string) {
	pv, err := h.portalService.View(c.Request.Context(), sess.StudentID, h.month(month))
	if err != nil {
		status = describe(&view.Page, err)
	}
	view.View = pv
	c.HTML(status, "portal.html", view)
}

// Home godoc
// GET /portal?month=YYYY-MM
// Shows the login form or the student's attendance for the month.
func (h *PortalHandler) Home(c *gin.Context) {
	sess := h.student(c)
	view := h.page(sess)
	if sess == nil {
		c.HTML(http.StatusOK, "portal.html", view)
		return
	}
	h.render(c, http.StatusOK, sess, view, c.Query("month"))
}

// Login godoc
// POST /portal
// Checks student_id and password on the server.
func (h *PortalHandler) Login(c *gin.Context) {
	view := h.page(nil)
	view.StudentID = c.PostForm("student_id")

	var req model.PortalLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		c.HTML(invalid(&view.Page, fields), "portal.html", view)
		return
	}

	st, err := h.portalService.Login(c.Request.Context(), req)
	if err != nil {
		c.HTML(describe(&view.Page, err), "portal.html", view)
		return
	}

	if _, err := h.provider.Start(c, func(s *model.Session) { s.StudentID = st.ID }); err != nil {
		h.log.Error().Err(err).Msg("Start portal session failed")
		renderError(c, http.StatusInternalServerError, "Could not start a session.")
		return
	}
	c.Redirect(http.StatusSeeOther, portalPath)
}

// RateLimited renders the login form with the rate limit message.
func (h *PortalHandler) RateLimited(c *gin.Context) {
	view := h.page(nil)
	view.Error = response.GetMessage(response.ErrRateLimitExceeded)
	c.HTML(http.StatusTooManyRequests, "portal.html", view)
}

// ChangePassword godoc
// POST /portal/password
func (h *PortalHandler) ChangePassword(c *gin.Context) {
	sess := h.student(c)
	if sess == nil {
		c.Redirect(http.StatusSeeOther, portalPath)
		return
	}
	view := h.page(sess)
	ctx := service.WithActor(c.Request.Context(), sess.Actor())
	c.Request = c.Request.WithContext(ctx)

	var form model.PasswordChangeForm
	if fields := validator.Bind(c, &form); fields != nil {
		status := invalid(&view.Page, fields)
		h.render(c, status, sess, view, "")
		return
	}

	if err := h.portalService.ChangePassword(ctx, sess.StudentID, form); err != nil {
		status := describe(&view.Page, err)
		h.render(c, status, sess, view, "")
		return
	}
	view.Flash = "Password changed."
	h.render(c, http.StatusOK, sess, view, "")
}

// Logout godoc
// POST /portal/logout
// Drops the portal login and keeps any staff login of the same session.
func (h *PortalHandler) Logout(c *gin.Context) {
	if err := h.provider.Forget(c, func(s *model.Session) { s.StudentID = 0 }); err != nil {
		h.log.Warn().Err(err).Msg("Forget portal login failed")
	}
	c.Redirect(http.StatusSeeOther, portalPath)
}
