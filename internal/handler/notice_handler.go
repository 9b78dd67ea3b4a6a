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

type noticesView struct {
	web.Page
	Notices collection.Snapshot[model.Notice]
	Form    model.NoticeForm
}

type noticeEditView struct {
	web.Page
	ID      int
	Current *model.Notice
	Form    model.NoticeForm
}

// NoticeHandler serves the notice board pages.
type NoticeHandler struct {
	noticeService *service.NoticeService
	maxUpload     int64
}

// NewNoticeHandler creates a new NoticeHandler.
func NewNoticeHandler(noticeService *service.NoticeService, maxUpload int64) *NoticeHandler {
	return &NoticeHandler{noticeService: noticeService, maxUpload: maxUpload}
}

func (h *NoticeHandler) view(c *gin.Context) noticesView {
	return noticesView{Page: newPage(c, "Notices", service.ResourceNotices)}
}

// ListNotices godoc
// GET /notices
func (h *NoticeHandler) ListNotices(c *gin.Context) {
	view := h.view(c)
	view.Notices = h.noticeService.List(c.Request.Context())
	c.HTML(http.StatusOK, "notices.html", view)
}

// CreateNotice godoc
// POST /notices
// Publishes a notice with an optional attachment.
func (h *NoticeHandler) CreateNotice(c *gin.Context) {
	ctx := c.Request.Context()
	view := h.view(c)

	if fields := validator.Bind(c, &view.Form); fields != nil {
		status := invalid(&view.Page, fields)
		view.Notices = h.noticeService.List(ctx)
		c.HTML(status, "notices.html", view)
		return
	}

	attachment, err := upload(c, "attachment", h.maxUpload)
	if err == nil {
		var snap collection.Snapshot[model.Notice]
		if snap, err = h.noticeService.Create(ctx, view.Form, attachment); err == nil {
			view.Notices = snap
			view.Form = model.NoticeForm{}
			view.Flash = "Notice published."
			c.HTML(http.StatusCreated, "notices.html", view)
			return
		}
	}

	status := describe(&view.Page, err)
	view.Notices = h.noticeService.List(ctx)
	c.HTML(status, "notices.html", view)
}

// EditNoticePage godoc
// GET /notices/:id/edit
func (h *NoticeHandler) EditNoticePage(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		renderError(c, http.StatusBadRequest, "Invalid notice ID.")
		return
	}

	view := noticeEditView{Page: newPage(c, "Edit notice"), ID: id}
	n, err := h.noticeService.Get(c.Request.Context(), id)
	if err != nil {
		renderError(c, describe(&view.Page, err), view.Error)
		return
	}
	view.Current = n
	view.Form = model.FormFromNotice(*n)
	c.HTML(http.StatusOK, "notice_edit.html", view)
}

// UpdateNotice godoc
// POST /notices/:id/edit
func (h *NoticeHandler) UpdateNotice(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		renderError(c, http.StatusBadRequest, "Invalid notice ID.")
		return
	}

	ctx := c.Request.Context()
	edit := noticeEditView{Page: newPage(c, "Edit notice"), ID: id}
	if fields := validator.Bind(c, &edit.Form); fields != nil {
		c.HTML(invalid(&edit.Page, fields), "notice_edit.html", edit)
		return
	}

	attachment, err := upload(c, "attachment", h.maxUpload)
	if err == nil {
		var snap collection.Snapshot[model.Notice]
		if snap, err = h.noticeService.Update(ctx, id, edit.Form, attachment); err == nil {
			view := h.view(c)
			view.Notices = snap
			view.Flash = "Notice updated."
			c.HTML(http.StatusOK, "notices.html", view)
			return
		}
	}
	c.HTML(describe(&edit.Page, err), "notice_edit.html", edit)
}

// ConfirmDeleteNotice godoc
// GET /notices/:id/delete
func (h *NoticeHandler) ConfirmDeleteNotice(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		renderError(c, http.StatusBadRequest, "Invalid notice ID.")
		return
	}

	n, err := h.noticeService.Get(c.Request.Context(), id)
	if err != nil {
		page := newPage(c, "")
		renderError(c, describe(&page, err), page.Error)
		return
	}
	renderConfirm(c, fmt.Sprintf("notice %q", n.Subject), fmt.Sprintf("/notices/%d/delete", id), "/notices")
}

// DeleteNotice godoc
// POST /notices/:id/delete
// Issues the DELETE only when the form carries confirm=yes.
func (h *NoticeHandler) DeleteNotice(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		renderError(c, http.StatusBadRequest, "Invalid notice ID.")
		return
	}
	if !confirmed(c) {
		c.Redirect(http.StatusSeeOther, "/notices")
		return
	}

	ctx := c.Request.Context()
	view := h.view(c)
	snap, err := h.noticeService.Delete(ctx, id)
	if err != nil {
		status := describe(&view.Page, err)
		view.Notices = h.noticeService.List(ctx)
		c.HTML(status, "notices.html", view)
		return
	}
	view.Notices = snap
	view.Flash = "Notice deleted."
	c.HTML(http.StatusOK, "notices.html", view)
}
