package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"loopsite/application/queries"
	"loopsite/application/rendering"
	"loopsite/application/resolution"
	"loopsite/domain/sections"
	"loopsite/pkg/observability"
)

// GetPageHandler resolves a path and renders it
type GetPageHandler struct {
	resolver *resolution.Resolver
	blocks   rendering.BlockLookup
	observer rendering.DiagnosticObserver
	metrics  observability.Recorder
	tracer   *observability.Tracer
	logger   *zap.Logger
}

// NewGetPageHandler creates a new get page handler
func NewGetPageHandler(
	resolver *resolution.Resolver,
	blocks rendering.BlockLookup,
	observer rendering.DiagnosticObserver,
	metrics observability.Recorder,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *GetPageHandler {
	if observer == nil {
		observer = rendering.DiscardDiagnostics{}
	}
	if metrics == nil {
		metrics = observability.Noop{}
	}
	return &GetPageHandler{
		resolver: resolver,
		blocks:   blocks,
		observer: observer,
		metrics:  metrics,
		tracer:   tracer,
		logger:   logger,
	}
}

// Handle executes the get page query
func (h *GetPageHandler) Handle(ctx context.Context, query queries.GetPageQuery) (*queries.RenderedPage, error) {
	start := time.Now()

	var plan *resolution.Plan
	err := h.tracer.TraceFunction(ctx, "resolve", func(ctx context.Context) error {
		var err error
		plan, err = h.resolver.Resolve(ctx, query.Path)
		return err
	})
	if err != nil {
		return nil, err
	}

	page := &queries.RenderedPage{Path: plan.Path, Kind: plan.Kind}
	var list []sections.Section
	switch plan.Kind {
	case resolution.PlanDesigned:
		page.Title = plan.Designed.Title()
		page.Description = plan.Designed.Description()
		list = plan.Designed.Build(plan.Slots)
	default:
		page.Title = plan.Page.Title
		page.Description = plan.Page.Description
		list = plan.Page.Sections
	}

	skipped := &rendering.Recorder{}
	_ = h.tracer.TraceFunction(ctx, "render", func(context.Context) error {
		renderer := rendering.NewRenderer(h.blocks, rendering.Tee{h.observer, skipped})
		page.Fragments = renderer.Render(list)
		return nil
	})
	page.Skipped = len(skipped.Diagnostics)

	h.tracer.AddAnnotation(ctx, "plan", string(plan.Kind))
	h.tracer.AddMetadata(ctx, "sections", map[string]int{
		"rendered": len(page.Fragments),
		"skipped":  page.Skipped,
	})
	h.metrics.RecordRender(string(plan.Kind), len(page.Fragments), time.Since(start))
	if page.Skipped > 0 {
		h.logger.Debug("Rendered page with skipped sections",
			zap.String("path", plan.Path),
			zap.Int("skipped", page.Skipped),
		)
	}

	return page, nil
}
