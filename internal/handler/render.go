package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/institute-console/internal/backend"
	"github.com/stemsi/institute-console/internal/middleware"
	"github.com/stemsi/institute-console/internal/response"
	"github.com/stemsi/institute-console/internal/service"
	"github.com/stemsi/institute-console/internal/web"
)

// confirmView is the shared delete confirmation page.
type confirmView struct {
	web.Page
	Label  string
	Action string
	Back   string
}

func newPage(c *gin.Context, title string, watch ...string) web.Page {
	return web.Page{Title: title, Session: middleware.CurrentSession(c), Watch: watch}
}

// describe fills the page error from err and returns the status to answer with.
// Validation errors are shown next to their fields.
func describe(p *web.Page, err error) int {
	if ve, ok := service.AsValidationError(err); ok {
		p.Fields = ve.Fields
		p.Error = response.GetMessage(response.ErrValidation)
		return http.StatusUnprocessableEntity
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		p.Error = response.GetMessage(response.ErrNotFound)
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidCredentials):
		p.Error = response.GetMessage(response.ErrInvalidCredentials)
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrWrongPassword):
		p.Error = response.GetMessage(response.ErrWrongPassword)
		p.Fields = map[string]string{"current_password": p.Error}
		return http.StatusUnprocessableEntity
	case errors.Is(err, backend.ErrFileTooLarge):
		p.Error = response.GetMessage(response.ErrFileTooLarge)
		return http.StatusRequestEntityTooLarge
	}

	p.Error = response.MessageFor(err)
	if apiErr, ok := backend.AsAPIError(err); ok {
		if apiErr.NotFound() {
			return http.StatusNotFound
		}
		if apiErr.Status < http.StatusInternalServerError {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusBadGateway
}

// invalid renders the form errors collected by validator.Bind.
func invalid(p *web.Page, fields map[string]string) int {
	p.Fields = fields
	p.Error = response.GetMessage(response.ErrValidation)
	return http.StatusUnprocessableEntity
}

func paramID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// upload reads an optional file field, bounded by limit bytes.
func upload(c *gin.Context, field string, limit int64) (*backend.File, error) {
	var fh *multipart.FileHeader
	if f, err := c.FormFile(field); err == nil {
		fh = f
	}
	return backend.FileFromHeader(field, fh, limit)
}

// confirmed reports whether a delete form carried the explicit confirmation.
func confirmed(c *gin.Context) bool {
	return c.PostForm("confirm") == "yes"
}

func renderConfirm(c *gin.Context, label, action, back string) {
	c.HTML(http.StatusOK, "confirm_delete.html", confirmView{
		Page:   newPage(c, "Confirm delete"),
		Label:  label,
		Action: action,
		Back:   back,
	})
}

// renderError shows a bare error page.
func renderError(c *gin.Context, status int, message string) {
	p := newPage(c, http.StatusText(status))
	p.Error = message
	c.HTML(status, "error.html", p)
}

// NotFound godoc
// Fallback for unknown routes.
func NotFound(c *gin.Context) {
	renderError(c, http.StatusNotFound, "Page not found.")
}
