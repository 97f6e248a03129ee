// Package ids mints opaque identifiers for graphs and simulations.
package ids

import "github.com/google/uuid"

const (
	GraphPrefix      = "g_"
	SimulationPrefix = "s_"
)

// UUID implements ports.IDGenerator with random (v4) UUIDs.
type UUID struct{}

func (UUID) GraphID() string      { return GraphPrefix + uuid.NewString() }
func (UUID) SimulationID() string { return SimulationPrefix + uuid.NewString() }

