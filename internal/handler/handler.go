package handler

import (
	"context"
	"embed"
	"html/template"

	"stx-trader/internal/domain"
	"stx-trader/internal/tools"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var templateFuncs = template.FuncMap{
	"comma": func(n int) string { return humanize.Comma(int64(n)) },
}

// Analyzer runs analyses and serves stored reports.
type Analyzer interface {
	Analyze(ctx context.Context, address string) (*domain.Report, error)
	Report(ctx context.Context, id string) (*domain.Report, error)
}

type Handler struct {
	tracer   trace.Tracer
	analyzer Analyzer
	registry *tools.Registry
}

func New(tracer trace.Tracer, analyzer Analyzer, registry *tools.Registry) *Handler {
	return &Handler{
		tracer:   tracer,
		analyzer: analyzer,
		registry: registry,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.SetHTMLTemplate(template.Must(template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.tmpl")))

	r.GET("/", h.Index)
	r.POST("/analyze", h.Analyze)
	r.GET("/reports/:id/download", h.DownloadReport)

	r.GET("/health", h.Health)
	r.POST("/api/analysis", h.CreateAnalysis)
	r.GET("/api/reports/:id", h.GetReport)
	r.GET("/api/tools", h.ListTools)
}
