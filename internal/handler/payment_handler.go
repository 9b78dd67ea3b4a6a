package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/institute-console/internal/collection"
	"github.com/stemsi/institute-console/internal/model"
	"github.com/stemsi/institute-console/internal/service"
	"github.com/stemsi/institute-console/internal/validator"
	"github.com/stemsi/institute-console/internal/web"
)

type paymentsView struct {
	web.Page
	Overview service.PaymentOverview
	Form     model.PaymentForm
}

type paymentsManageView struct {
	web.Page
	Payments collection.Snapshot[model.Payment]
	Filter   string
}

type paymentEditView struct {
	web.Page
	ID      int
	Filter  string
	Payment *model.Payment
	Form    model.PaymentUpdateForm
}

// PaymentHandler serves the payment pages.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func manageURL(filter string) string {
	if filter == "" {
		return "/payments/manage"
	}
	return "/payments/manage?student_id=" + url.QueryEscape(filter)
}

// Overview godoc
// GET /payments?student_id=
// Shows all payments and, when a student is searched, that student's payments.
func (h *PaymentHandler) Overview(c *gin.Context) {
	view := paymentsView{Page: newPage(c, "Payments", service.ResourcePayments, service.ResourceStudents)}
	view.Overview = h.paymentService.Overview(c.Request.Context(), c.Query("student_id"))
	c.HTML(http.StatusOK, "payments.html", view)
}

// AddPayment godoc
// POST /payments
// Adds a Pending payment for the searched student.
func (h *PaymentHandler) AddPayment(c *gin.Context) {
	ctx := c.Request.Context()
	code := c.PostForm("code")
	view := paymentsView{Page: newPage(c, "Payments", service.ResourcePayments, service.ResourceStudents)}

	if fields := validator.Bind(c, &view.Form); fields != nil {
		status := invalid(&view.Page, fields)
		view.Overview = h.paymentService.Overview(ctx, code)
		c.HTML(status, "payments.html", view)
		return
	}

	ov, err := h.paymentService.Add(ctx, code, view.Form)
	if err != nil {
		status := describe(&view.Page, err)
		view.Overview = h.paymentService.Overview(ctx, code)
		c.HTML(status, "payments.html", view)
		return
	}
	view.Overview = ov
	view.Form = model.PaymentForm{}
	view.Flash = "Payment added."
	c.HTML(http.StatusCreated, "payments.html", view)
}

// ManagePayments godoc
// GET /payments/manage?student_id=
// Lists payments through the backend's student filter.
func (h *PaymentHandler) ManagePayments(c *gin.Context) {
	filter := strings.TrimSpace(c.Query("student_id"))
	view := paymentsManageView{Page: newPage(c, "Manage payments", service.ResourcePayments), Filter: filter}
	view.Payments = h.paymentService.ByStudent(c.Request.Context(), filter)
	c.HTML(http.StatusOK, "payments_manage.html", view)
}

// EditPaymentPage godoc
// GET /payments/:id/edit
func (h *PaymentHandler) EditPaymentPage(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		renderError(c, http.StatusBadRequest, "Invalid payment ID.")
		return
	}

	view := paymentEditView{Page: newPage(c, "Edit payment"), ID: id, Filter: strings.TrimSpace(c.Query("student_id"))}
	p, err := h.paymentService.Get(c.Request.Context(), id)
	if err != nil {
		renderError(c, describe(&view.Page, err), view.Error)
		return
	}
	view.Payment = p
	view.Form = model.FormFromPayment(*p)
	c.HTML(http.StatusOK, "payment_edit.html", view)
}

// UpdatePayment godoc
// POST /payments/:id/edit
// Replaces amount, status and reference, then shows the filtered list.
func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		renderError(c, http.StatusBadRequest, "Invalid payment ID.")
		return
	}

	edit := paymentEditView{Page: newPage(c, "Edit payment"), ID: id, Filter: strings.TrimSpace(c.PostForm("filter"))}
	if fields := validator.Bind(c, &edit.Form); fields != nil {
		c.HTML(invalid(&edit.Page, fields), "payment_edit.html", edit)
		return
	}

	snap, err := h.paymentService.Update(c.Request.Context(), id, edit.Form, edit.Filter)
	if err != nil {
		c.HTML(describe(&edit.Page, err), "payment_edit.html", edit)
		return
	}

	view := paymentsManageView{Page: newPage(c, "Manage payments", service.ResourcePayments), Filter: edit.Filter, Payments: snap}
	view.Flash = "Payment updated."
	c.HTML(http.StatusOK, "payments_manage.html", view)
}

// ConfirmDeletePayment godoc
// GET /payments/:id/delete
func (h *PaymentHandler) ConfirmDeletePayment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		renderError(c, http.StatusBadRequest, "Invalid payment ID.")
		return
	}

	filter := strings.TrimSpace(c.Query("student_id"))
	p, err := h.paymentService.Get(c.Request.Context(), id)
	if err != nil {
		page := newPage(c, "")
		renderError(c, describe(&page, err), page.Error)
		return
	}

	action := fmt.Sprintf("/payments/%d/delete", id)
	if filter != "" {
		action += "?student_id=" + url.QueryEscape(filter)
	}
	renderConfirm(c,
		fmt.Sprintf("payment of %s for %s", p.Amount, p.Student.Name),
		action,
		manageURL(filter),
	)
}

// DeletePayment godoc
// POST /payments/:id/delete
// Issues the DELETE only when the form carries confirm=yes.
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		renderError(c, http.StatusBadRequest, "Invalid payment ID.")
		return
	}

	filter := strings.TrimSpace(c.Query("student_id"))
	if !confirmed(c) {
		c.Redirect(http.StatusSeeOther, manageURL(filter))
		return
	}

	ctx := c.Request.Context()
	view := paymentsManageView{Page: newPage(c, "Manage payments", service.ResourcePayments), Filter: filter}
	snap, err := h.paymentService.Delete(ctx, id, filter)
	if err != nil {
		status := describe(&view.Page, err)
		view.Payments = h.paymentService.ByStudent(ctx, filter)
		c.HTML(status, "payments_manage.html", view)
		return
	}
	view.Payments = snap
	view.Flash = "Payment deleted."
	c.HTML(http.StatusOK, "payments_manage.html", view)
}
