package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventGraphGenerated EventType = "graph_generated"
	EventStep           EventType = "step"
	EventLockdown       EventType = "lockdown"
	EventTerminated     EventType = "terminated"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp    time.Time `json:"timestamp"`
	Type         EventType `json:"type"`
	SimulationID string    `json:"sim_id,omitempty"`
}

// GraphEvent is emitted once a graph and its simulation have been created.
type GraphEvent struct {
	EventBase
	GraphID string `json:"graph_id"`
	Nodes   int    `json:"n"`
	Edges   int    `json:"m"`
	Seeded  int    `json:"seeded"`
}

// StepEvent is emitted after every simulated day.
type StepEvent struct {
	EventBase
	Snapshot
	Delta       CountsDelta   `json:"delta"`
	Transitions Transitions   `json:"transitions"`
	Lockdown    bool          `json:"policy_quarantine_on"`
	Message     string        `json:"policy_message"`
	Duration    time.Duration `json:"duration_ns"`
}

// PolicyEvent is emitted when the lockdown is imposed or the epidemic ends.
type PolicyEvent struct {
	EventBase
	Day     int    `json:"day"`
	Message string `json:"policy_message"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnGraphGenerated func(context.Context, *GraphEvent)
	OnStep           func(context.Context, *StepEvent)
	OnLockdown       func(context.Context, *PolicyEvent)
	OnTerminate      func(context.Context, *PolicyEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnGraphGenerated: chain(h.OnGraphGenerated, other.OnGraphGenerated),
		OnStep:           chain(h.OnStep, other.OnStep),
		OnLockdown:       chain(h.OnLockdown, other.OnLockdown),
		OnTerminate:      chain(h.OnTerminate, other.OnTerminate),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
