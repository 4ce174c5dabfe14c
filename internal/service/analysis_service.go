package service

import (
	"context"
	"fmt"
	"time"

	"stx-trader/internal/crew"
	"stx-trader/internal/domain"
	"stx-trader/internal/errtrack"
	"stx-trader/internal/metrics"
	"stx-trader/internal/run"
	"stx-trader/pkg/logger"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type PriceSource interface {
	Latest(ctx context.Context) domain.MarketSnapshot
}

// AnalysisService drives one analysis run: eager price fetch, prompt
// construction, agent kickoff and report assembly.
type AnalysisService struct {
	tracer       trace.Tracer
	prices       PriceSource
	orchestrator crew.Orchestrator
	store        ReportStore
	tracker      errtrack.Tracker
	verbose      bool
}

func NewAnalysisService(
	tracer trace.Tracer,
	prices PriceSource,
	orchestrator crew.Orchestrator,
	store ReportStore,
	tracker errtrack.Tracker,
	verbose bool,
) *AnalysisService {
	if tracker == nil {
		tracker = errtrack.Noop{}
	}
	return &AnalysisService{
		tracer:       tracer,
		prices:       prices,
		orchestrator: orchestrator,
		store:        store,
		tracker:      tracker,
		verbose:      verbose,
	}
}

// Analyze runs the full workflow for address. Fetch failures degrade into
// report notices; only an empty address or an agent failure return an error.
func (s *AnalysisService) Analyze(ctx context.Context, address string) (*domain.Report, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.analyze")
	defer span.End()

	rc, err := run.New(address)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("run.id", rc.ID), attribute.String("stx.address", rc.Address))
	ctx = run.WithContext(ctx, rc)

	start := time.Now()
	defer func() { metrics.RunDuration.Observe(time.Since(start).Seconds()) }()

	snapshot := s.prices.Latest(ctx)
	tasks := crew.Plan(snapshot, rc.Address, s.verbose)

	out, err := s.orchestrator.Kickoff(ctx, tasks)
	if err != nil {
		span.RecordError(err)
		metrics.RunsTotal.WithLabelValues(metrics.StatusFailed).Inc()
		s.tracker.CaptureError(ctx, err, map[string]string{"run_id": rc.ID, "component": "crew"})
		logger.Get().With("run_id", rc.ID).Warnf("analysis failed: %v", err)
		return nil, fmt.Errorf("run analysis: %w", err)
	}

	results := make([]domain.TaskResult, len(out.Results))
	copy(results, out.Results)
	for i := range results {
		if results[i].Kind != domain.TaskKindBalanceReport {
			continue
		}
		if b := rc.Balance(); !b.IsEmpty() {
			results[i].Balance = &b
		}
	}

	report := &domain.Report{
		ID:        rc.ID,
		Address:   rc.Address,
		CreatedAt: rc.StartedAt,
		Snapshot:  snapshot,
		Results:   results,
		Usage:     out.Usage,
		Notices:   rc.Notices(),
	}

	metrics.RunsTotal.WithLabelValues(metrics.StatusSuccess).Inc()
	metrics.RecordTokens(out.Usage.PromptTokens, out.Usage.CompletionTokens)

	if s.store != nil {
		if err := s.store.Save(ctx, report); err != nil {
			logger.Warnf("store report %s: %v", report.ID, err)
		}
	}
	return report, nil
}

// Report returns a previously stored report.
func (s *AnalysisService) Report(ctx context.Context, id string) (*domain.Report, error) {
	_, span := s.tracer.Start(ctx, "analysis-service.report")
	defer span.End()

	if s.store == nil {
		return nil, domain.ErrReportNotFound
	}
	return s.store.Get(ctx, id)
}
