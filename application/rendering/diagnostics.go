package rendering

import (
	"go.uber.org/zap"

	"loopsite/domain/sections"
)

// DiagnosticKind names why a section was skipped.
type DiagnosticKind string

const (
	UnknownSectionType    DiagnosticKind = "unknown_section_type"
	MalformedSectionProps DiagnosticKind = "malformed_section_props"
)

// Diagnostic describes one skipped section.
type Diagnostic struct {
	Kind      DiagnosticKind
	Index     int
	SectionID string
	Type      sections.Type
	Err       error
}

// DiagnosticObserver receives every skip the renderer makes.
type DiagnosticObserver interface {
	Observe(d Diagnostic)
}

// DiscardDiagnostics drops diagnostics.
type DiscardDiagnostics struct{}

func (DiscardDiagnostics) Observe(Diagnostic) {}

// SkipCounter counts skipped sections; the prometheus collector implements it.
type SkipCounter interface {
	RecordSectionSkipped(kind, sectionType string)
}

// LogObserver logs diagnostics and counts them.
//
// Unknown types are warnings. Malformed props mean content got past the
// authoring boundary, so they are logged at DPanic: a development logger
// panics on them, a production logger records an error and carries on.
type LogObserver struct {
	logger  *zap.Logger
	counter SkipCounter
}

// NewLogObserver creates the production observer. counter may be nil.
func NewLogObserver(logger *zap.Logger, counter SkipCounter) *LogObserver {
	return &LogObserver{logger: logger, counter: counter}
}

func (o *LogObserver) Observe(d Diagnostic) {
	if o.counter != nil {
		o.counter.RecordSectionSkipped(string(d.Kind), string(d.Type))
	}

	fields := []zap.Field{
		zap.String("diagnostic", string(d.Kind)),
		zap.String("section_id", d.SectionID),
		zap.String("section_type", string(d.Type)),
		zap.Int("index", d.Index),
	}
	switch d.Kind {
	case UnknownSectionType:
		o.logger.Warn("Skipping section with unknown type", fields...)
	default:
		o.logger.DPanic("Skipping section with malformed props", append(fields, zap.Error(d.Err))...)
	}
}

// Recorder keeps diagnostics in memory, for callers that report them back.
type Recorder struct {
	Diagnostics []Diagnostic
}

func (r *Recorder) Observe(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
}

// Tee fans a diagnostic out to several observers.
type Tee []DiagnosticObserver

func (t Tee) Observe(d Diagnostic) {
	for _, o := range t {
		o.Observe(d)
	}
}
