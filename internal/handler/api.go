package handler

import (
	"errors"
	"net/http"

	"stx-trader/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type analysisRequest struct {
	Address string `json:"address" binding:"required"`
}

type toolInfo struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CreateAnalysis godoc
// @Summary      Run an STX analysis
// @Description  Fetches market and wallet data, runs both agent roles and returns the report
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        request  body  analysisRequest  true  "Wallet address"
// @Success      200  {object}  domain.Report
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/analysis [post]
func (h *Handler) CreateAnalysis(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.create-analysis")
	defer span.End()

	var req analysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}
	span.SetAttributes(attribute.String("stx.address", req.Address))

	report, err := h.analyzer.Analyze(ctx, req.Address)
	if errors.Is(err, domain.ErrEmptyAddress) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		span.RecordError(err)
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetReport godoc
// @Summary      Get a stored report
// @Description  Returns a report produced by an earlier run while it is retained
// @Tags         reports
// @Produce      json
// @Param        id   path  string  true  "Run ID"
// @Success      200  {object}  domain.Report
// @Failure      404  {object}  map[string]string
// @Router       /api/reports/{id} [get]
func (h *Handler) GetReport(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-report")
	defer span.End()

	report, err := h.analyzer.Report(ctx, c.Param("id"))
	if err != nil {
		writeReportError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListTools godoc
// @Summary      List agent tools
// @Description  Returns the tools registered for agents and MCP clients
// @Tags         tools
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/tools [get]
func (h *Handler) ListTools(c *gin.Context) {
	out := []toolInfo{}
	if h.registry != nil {
		for _, t := range h.registry.List() {
			out = append(out, toolInfo{Name: t.Name, Title: t.Title, Description: t.Description})
		}
	}
	c.JSON(http.StatusOK, gin.H{"tools": out})
}
