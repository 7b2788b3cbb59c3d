package observability

import (
	"context"
	"fmt"

	"investigation-canvas/application/ports"
	"investigation-canvas/domain/core/aggregates"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Tracer provides distributed tracing capabilities
type Tracer struct {
	serviceName string
}

// NewTracer creates a new tracer instance
func NewTracer(serviceName string) *Tracer {
	return &Tracer{
		serviceName: serviceName,
	}
}

// Start opens a subsegment when ctx already carries a segment, otherwise a new segment
func (t *Tracer) Start(ctx context.Context, name string) (context.Context, *xray.Segment) {
	if xray.GetSegment(ctx) != nil {
		return xray.BeginSubsegment(ctx, name)
	}
	return xray.BeginSegment(ctx, fmt.Sprintf("%s.%s", t.serviceName, name))
}

// TraceFunction wraps a function with tracing
func (t *Tracer) TraceFunction(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, seg := t.Start(ctx, name)
	err := fn(ctx)
	if seg != nil {
		seg.Close(err)
	}
	return err
}

// AddAnnotation adds an indexed annotation to the current segment
func (t *Tracer) AddAnnotation(ctx context.Context, key string, value string) {
	if seg := xray.GetSegment(ctx); seg != nil {
		_ = seg.AddAnnotation(key, value)
	}
}

// TracingStore records a segment around every store call
type TracingStore struct {
	next   ports.SceneStore
	tracer *Tracer
}

var _ ports.SceneStore = (*TracingStore)(nil)

// NewTracingStore wraps a store with tracing
func NewTracingStore(next ports.SceneStore, tracer *Tracer) *TracingStore {
	return &TracingStore{next: next, tracer: tracer}
}

// Save implements ports.SceneStore
func (s *TracingStore) Save(ctx context.Context, scene *aggregates.Scene) error {
	return s.tracer.TraceFunction(ctx, "SceneStore.Save", func(ctx context.Context) error {
		s.tracer.AddAnnotation(ctx, "investigationID", scene.InvestigationID())
		return s.next.Save(ctx, scene)
	})
}

// Load implements ports.SceneStore
func (s *TracingStore) Load(ctx context.Context, investigationID string) (*aggregates.Scene, error) {
	var scene *aggregates.Scene
	err := s.tracer.TraceFunction(ctx, "SceneStore.Load", func(ctx context.Context) error {
		s.tracer.AddAnnotation(ctx, "investigationID", investigationID)
		var err error
		scene, err = s.next.Load(ctx, investigationID)
		return err
	})
	return scene, err
}
