package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/institute-console/internal/collection"
	"github.com/stemsi/institute-console/internal/model"
	"github.com/stemsi/institute-console/internal/service"
	"github.com/stemsi/institute-console/internal/web"
)

type resultsView struct {
	web.Page
	Results collection.Snapshot[model.Result]
}

// ResultHandler serves the public results page.
type ResultHandler struct {
	resultService *service.ResultService
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(resultService *service.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// ListResults godoc
// GET /results
func (h *ResultHandler) ListResults(c *gin.Context) {
	view := resultsView{Page: newPage(c, "Results")}
	view.Results = h.resultService.List(c.Request.Context())
	status := http.StatusOK
	if !view.Results.OK() {
		status = http.StatusBadGateway
	}
	c.HTML(status, "results.html", view)
}
