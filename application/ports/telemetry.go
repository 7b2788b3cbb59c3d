package ports

import (
	"time"

	"investigation-canvas/domain/events"
)

// Telemetry receives editor measurements
type Telemetry interface {
	PointerEvent(kind string)
	FrameRendered(d time.Duration)
	SaveCompleted(d time.Duration, err error)
	DomainEvents([]events.DomainEvent)
}

// NopTelemetry discards all measurements
type NopTelemetry struct{}

func (NopTelemetry) PointerEvent(string)                {}
func (NopTelemetry) FrameRendered(time.Duration)        {}
func (NopTelemetry) SaveCompleted(time.Duration, error) {}
func (NopTelemetry) DomainEvents([]events.DomainEvent)  {}
