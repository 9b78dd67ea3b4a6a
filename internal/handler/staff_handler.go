package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/institute-console/internal/collection"
	"github.com/stemsi/institute-console/internal/middleware"
	"github.com/stemsi/institute-console/internal/model"
	"github.com/stemsi/institute-console/internal/service"
	"github.com/stemsi/institute-console/internal/validator"
	"github.com/stemsi/institute-console/internal/web"
)

const recentAuditEvents = 20

type staffView struct {
	web.Page
	Teachers collection.Snapshot[model.Teacher]
	Form     model.TeacherForm
	Audit    []model.AuditEvent
}

type staffEditView struct {
	web.Page
	ID   int
	Form model.TeacherForm
}

// StaffHandler serves teacher management. Every call carries the admin's access token.
type StaffHandler struct {
	teacherService *service.TeacherService
	auditService   *service.AuditService
	maxUpload      int64
	log            zerolog.Logger
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(teacherService *service.TeacherService, auditService *service.AuditService, maxUpload int64, log zerolog.Logger) *StaffHandler {
	return &StaffHandler{
		teacherService: teacherService,
		auditService:   auditService,
		maxUpload:      maxUpload,
		log:            log.With().Str("component", "staff_handler").Logger(),
	}
}

func bearer(c *gin.Context) string {
	if sess := middleware.CurrentSession(c); sess != nil && sess.Tokens != nil {
		return sess.Tokens.Access
	}
	return ""
}

func (h *StaffHandler) view(c *gin.Context) staffView {
	view := staffView{Page: newPage(c, "Staff", service.ResourceTeachers)}
	events, err := h.auditService.Recent(c.Request.Context(), recentAuditEvents)
	switch {
	case err == nil:
		view.Audit = events
	case !errors.Is(err, service.ErrAuditUnavailable):
		h.log.Warn().Err(err).Msg("Load recent audit events failed")
	}
	return view
}

// ListTeachers godoc
// GET /staff
func (h *StaffHandler) ListTeachers(c *gin.Context) {
	view := h.view(c)
	view.Teachers = h.teacherService.List(c.Request.Context(), bearer(c))
	c.HTML(http.StatusOK, "staff.html", view)
}

// CreateTeacher godoc
// POST /staff
func (h *StaffHandler) CreateTeacher(c *gin.Context) {
	ctx := c.Request.Context()
	view := h.view(c)

	if fields := validator.Bind(c, &view.Form); fields != nil {
		status := invalid(&view.Page, fields)
		view.Teachers = h.teacherService.List(ctx, bearer(c))
		c.HTML(status, "staff.html", view)
		return
	}

	image, err := upload(c, "image", h.maxUpload)
	if err == nil {
		var snap collection.Snapshot[model.Teacher]
		if snap, err = h.teacherService.Create(ctx, bearer(c), view.Form, image); err == nil {
			view.Teachers = snap
			view.Flash = fmt.Sprintf("Teacher %s added.", view.Form.TeacherName)
			view.Form = model.TeacherForm{}
			c.HTML(http.StatusCreated, "staff.html", view)
			return
		}
	}

	status := describe(&view.Page, err)
	view.Teachers = h.teacherService.List(ctx, bearer(c))
	c.HTML(status, "staff.html", view)
}

// EditTeacherPage godoc
// GET /staff/:id/edit
func (h *StaffHandler) EditTeacherPage(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		renderError(c, http.StatusBadRequest, "Invalid teacher ID.")
		return
	}

	view := staffEditView{Page: newPage(c, "Edit teacher"), ID: id}
	t, err := h.teacherService.Get(c.Request.Context(), bearer(c), id)
	if err != nil {
		renderError(c, describe(&view.Page, err), view.Error)
		return
	}
	view.Form = model.FormFromTeacher(*t)
	c.HTML(http.StatusOK, "staff_edit.html", view)
}

// UpdateTeacher godoc
// POST /staff/:id/edit
func (h *StaffHandler) UpdateTeacher(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		renderError(c, http.StatusBadRequest, "Invalid teacher ID.")
		return
	}

	ctx := c.Request.Context()
	edit := staffEditView{Page: newPage(c, "Edit teacher"), ID: id}
	if fields := validator.Bind(c, &edit.Form); fields != nil {
		c.HTML(invalid(&edit.Page, fields), "staff_edit.html", edit)
		return
	}

	image, err := upload(c, "image", h.maxUpload)
	if err == nil {
		var snap collection.Snapshot[model.Teacher]
		if snap, err = h.teacherService.Update(ctx, bearer(c), id, edit.Form, image); err == nil {
			view := h.view(c)
			view.Teachers = snap
			view.Flash = fmt.Sprintf("Teacher %s updated.", edit.Form.TeacherName)
			c.HTML(http.StatusOK, "staff.html", view)
			return
		}
	}
	c.HTML(describe(&edit.Page, err), "staff_edit.html", edit)
}

// ConfirmDeleteTeacher godoc
// GET /staff/:id/delete
func (h *StaffHandler) ConfirmDeleteTeacher(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		renderError(c, http.StatusBadRequest, "Invalid teacher ID.")
		return
	}

	t, err := h.teacherService.Get(c.Request.Context(), bearer(c), id)
	if err != nil {
		page := newPage(c, "")
		renderError(c, describe(&page, err), page.Error)
		return
	}
	renderConfirm(c, "teacher "+t.TeacherName, fmt.Sprintf("/staff/%d/delete", id), "/staff")
}

// DeleteTeacher godoc
// POST /staff/:id/delete
// Issues the DELETE only when the form carries confirm=yes.
func (h *StaffHandler) DeleteTeacher(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		renderError(c, http.StatusBadRequest, "Invalid teacher ID.")
		return
	}
	if !confirmed(c) {
		c.Redirect(http.StatusSeeOther, "/staff")
		return
	}

	ctx := c.Request.Context()
	view := h.view(c)
	snap, err := h.teacherService.Delete(ctx, bearer(c), id)
	if err != nil {
		status := describe(&view.Page, err)
		view.Teachers = h.teacherService.List(ctx, bearer(c))
		c.HTML(status, "staff.html", view)
		return
	}
	view.Teachers = snap
	view.Flash = "Teacher deleted."
	c.HTML(http.StatusOK, "staff.html", view)
}
