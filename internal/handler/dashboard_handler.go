package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/institute-console/internal/middleware"
	"github.com/stemsi/institute-console/internal/model"
	"github.com/stemsi/institute-console/internal/web"
)

type dashboardView struct {
	web.Page
	Teacher *model.TeacherIdentity
}

// DashboardHandler serves the staff landing page.
type DashboardHandler struct{}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// Dashboard godoc
// GET /dashboard
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	view := dashboardView{Page: newPage(c, "Dashboard")}
	if sess := middleware.CurrentSession(c); sess != nil {
		view.Teacher = sess.Teacher
	}
	c.HTML(http.StatusOK, "dashboard.html", view)
}
