package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/institute-console/internal/collection"
	"github.com/stemsi/institute-console/internal/model"
	"github.com/stemsi/institute-console/internal/response"
	"github.com/stemsi/institute-console/internal/service"
	"github.com/stemsi/institute-console/internal/web"
)

type attendanceView struct {
	web.Page
	Students collection.Snapshot[model.Student]
	Rows     []service.RosterRow
	Filter   model.RosterFilter
	Date     string
	Report   *service.SubmitReport
}

// AttendanceHandler serves the daily attendance sheet.
type AttendanceHandler struct {
	attendanceService *service.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(attendanceService *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

// Roster godoc
// GET /attendance?department=&year=
// Shows a fresh roster with every student Absent. Changing the filter starts over.
func (h *AttendanceHandler) Roster(c *gin.Context) {
	view := attendanceView{Page: newPage(c, "Attendance", service.ResourceStudents), Date: h.attendanceService.Today()}
	_ = c.ShouldBindQuery(&view.Filter)

	roster, snap := h.attendanceService.Roster(c.Request.Context())
	view.Students = snap
	view.Rows = roster.Rows(view.Filter)
	c.HTML(http.StatusOK, "attendance.html", view)
}

// SubmitAttendance godoc
// POST /attendance
// Marks the ticked students Present and submits one row per student.
func (h *AttendanceHandler) SubmitAttendance(c *gin.Context) {
	ctx := c.Request.Context()
	view := attendanceView{Page: newPage(c, "Attendance", service.ResourceStudents)}
	view.Date = c.DefaultPostForm("date", h.attendanceService.Today())

	roster, snap := h.attendanceService.Roster(ctx)
	view.Students = snap
	if !snap.OK() {
		view.Error = snap.Message
		c.HTML(http.StatusBadGateway, "attendance.html", view)
		return
	}

	seen := make(map[int]bool)
	for _, raw := range c.PostFormArray("present") {
		id, err := strconv.Atoi(raw)
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		roster.Toggle(id)
	}

	report, err := h.attendanceService.Submit(ctx, roster, view.Date)
	if err != nil {
		view.Rows = roster.Rows(view.Filter)
		c.HTML(describe(&view.Page, err), "attendance.html", view)
		return
	}

	view.Report = &report
	view.Rows = roster.Rows(view.Filter)
	if report.OK() {
		view.Flash = "Attendance submitted."
		c.HTML(http.StatusOK, "attendance.html", view)
		return
	}
	view.Error = response.GetMessage(response.ErrAttendancePartial)
	c.HTML(http.StatusMultiStatus, "attendance.html", view)
}
