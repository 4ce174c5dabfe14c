package handler

import (
	"errors"
	"fmt"
	"net/http"

	"stx-trader/internal/domain"
	"stx-trader/internal/present"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type pageState string

const (
	stateIdle   pageState = "idle"
	stateDone   pageState = "done"
	stateFailed pageState = "failed"
)

type page struct {
	State   pageState
	Address string
	Error   string
	View    *present.View
}

func (h *Handler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.tmpl", page{State: stateIdle})
}

// Analyze handles the form post and renders the finished run.
func (h *Handler) Analyze(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.analyze")
	defer span.End()

	address := c.PostForm("address")
	span.SetAttributes(attribute.String("stx.address", address))

	report, err := h.analyzer.Analyze(ctx, address)
	switch {
	case errors.Is(err, domain.ErrEmptyAddress):
		c.HTML(http.StatusOK, "index.tmpl", page{State: stateIdle})
		return
	case err != nil:
		span.RecordError(err)
		_ = c.Error(err)
		c.HTML(http.StatusInternalServerError, "index.tmpl", page{
			State:   stateFailed,
			Address: address,
			Error:   err.Error(),
		})
		return
	}

	view := present.Build(report)
	c.HTML(http.StatusOK, "index.tmpl", page{
		State:   stateDone,
		Address: report.Address,
		View:    &view,
	})
}

// DownloadReport godoc
// @Summary      Download an analysis report
// @Description  Returns the raw combined output of a run as a text attachment
// @Tags         reports
// @Produce      plain
// @Param        id   path  string  true  "Run ID"
// @Success      200  {string}  string
// @Failure      404  {object}  map[string]string
// @Router       /reports/{id}/download [get]
func (h *Handler) DownloadReport(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.download-report")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("run.id", id))

	report, err := h.analyzer.Report(ctx, id)
	if err != nil {
		writeReportError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", report.Filename()))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(report.Text()))
}

func writeReportError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrReportNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
