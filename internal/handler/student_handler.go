package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/institute-console/internal/collection"
	"github.com/stemsi/institute-console/internal/model"
	"github.com/stemsi/institute-console/internal/service"
	"github.com/stemsi/institute-console/internal/validator"
	"github.com/stemsi/institute-console/internal/web"
)

type studentsView struct {
	web.Page
	Students collection.Snapshot[model.Student]
	Filter   model.StudentFilter
	Form     model.StudentForm
}

type studentEditView struct {
	web.Page
	ID   int
	Form model.StudentForm
}

// StudentHandler serves the student management pages.
type StudentHandler struct {
	studentService *service.StudentService
	maxUpload      int64
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(studentService *service.StudentService, maxUpload int64) *StudentHandler {
	return &StudentHandler{studentService: studentService, maxUpload: maxUpload}
}

func (h *StudentHandler) view(c *gin.Context) studentsView {
	return studentsView{Page: newPage(c, "Students", service.ResourceStudents)}
}

// ListStudents godoc
// GET /students
// Lists students, optionally filtered by id, phone and department.
func (h *StudentHandler) ListStudents(c *gin.Context) {
	view := h.view(c)
	_ = c.ShouldBindQuery(&view.Filter)
	view.Students = h.studentService.List(c.Request.Context(), view.Filter)
	c.HTML(http.StatusOK, "students.html", view)
}

// CreateStudent godoc
// POST /students
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	ctx := c.Request.Context()
	view := h.view(c)

	fields := validator.Bind(c, &view.Form)
	if fields != nil {
		status := invalid(&view.Page, fields)
		view.Students = h.studentService.List(ctx, view.Filter)
		c.HTML(status, "students.html", view)
		return
	}

	img, err := upload(c, "img", h.maxUpload)
	if err == nil {
		var snap collection.Snapshot[model.Student]
		snap, err = h.studentService.Create(ctx, view.Form, img)
		if err == nil {
			view.Students = snap
			view.Flash = fmt.Sprintf("Student %s added.", view.Form.StudentID)
			view.Form = model.StudentForm{}
			c.HTML(http.StatusCreated, "students.html", view)
			return
		}
	}

	status := describe(&view.Page, err)
	view.Students = h.studentService.List(ctx, view.Filter)
	c.HTML(status, "students.html", view)
}

// EditStudentPage godoc
// GET /students/:id/edit
func (h *StudentHandler) EditStudentPage(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		renderError(c, http.StatusBadRequest, "Invalid student ID.")
		return
	}

	view := studentEditView{Page: newPage(c, "Edit student"), ID: id}
	st, err := h.studentService.Get(c.Request.Context(), id)
	if err != nil {
		status := describe(&view.Page, err)
		renderError(c, status, view.Error)
		return
	}
	view.Form = model.FormFromStudent(*st)
	c.HTML(http.StatusOK, "student_edit.html", view)
}

// UpdateStudent godoc
// POST /students/:id/edit
// Replaces the whole student record and shows the reloaded list.
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		renderError(c, http.StatusBadRequest, "Invalid student ID.")
		return
	}

	ctx := c.Request.Context()
	edit := studentEditView{Page: newPage(c, "Edit student"), ID: id}
	if fields := validator.Bind(c, &edit.Form); fields != nil {
		c.HTML(invalid(&edit.Page, fields), "student_edit.html", edit)
		return
	}

	img, err := upload(c, "img", h.maxUpload)
	if err == nil {
		var snap collection.Snapshot[model.Student]
		snap, err = h.studentService.Update(ctx, id, edit.Form, img)
		if err == nil {
			view := h.view(c)
			view.Students = snap
			view.Flash = fmt.Sprintf("Student %s updated.", edit.Form.StudentID)
			c.HTML(http.StatusOK, "students.html", view)
			return
		}
	}

	c.HTML(describe(&edit.Page, err), "student_edit.html", edit)
}

// ConfirmDeleteStudent godoc
// GET /students/:id/delete
func (h *StudentHandler) ConfirmDeleteStudent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		renderError(c, http.StatusBadRequest, "Invalid student ID.")
		return
	}

	st, err := h.studentService.Get(c.Request.Context(), id)
	if err != nil {
		p := newPage(c, "")
		renderError(c, describe(&p, err), p.Error)
		return
	}
	renderConfirm(c,
		fmt.Sprintf("student %s (%s)", st.Name, st.StudentID),
		fmt.Sprintf("/students/%d/delete", id),
		"/students",
	)
}

// DeleteStudent godoc
// POST /students/:id/delete
// Issues the DELETE only when the form carries confirm=yes.
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		renderError(c, http.StatusBadRequest, "Invalid student ID.")
		return
	}
	if !confirmed(c) {
		c.Redirect(http.StatusSeeOther, "/students")
		return
	}

	ctx := c.Request.Context()
	view := h.view(c)
	snap, err := h.studentService.Delete(ctx, id)
	if err != nil {
		status := describe(&view.Page, err)
		view.Students = h.studentService.List(ctx, view.Filter)
		c.HTML(status, "students.html", view)
		return
	}
	view.Students = snap
	view.Flash = "Student deleted."
	c.HTML(http.StatusOK, "students.html", view)
}
