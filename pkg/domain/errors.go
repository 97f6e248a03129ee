package domain

import (
	"errors"
	"fmt"
)

// ErrGraphNotFound is returned when a graph ID cannot be found in the store.
var ErrGraphNotFound = errors.New("graph not found")

// ErrSimulationNotFound is returned when a simulation ID cannot be found in the store.
var ErrSimulationNotFound = errors.New("sim not found")

// ErrInvalidPopulation is returned when a requested population size is out of range.
var ErrInvalidPopulation = errors.New("invalid population size")

// ErrGraphMissing is returned when a stored simulation references a graph that no longer exists.
// The step is aborted before any agent is touched.
var ErrGraphMissing = errors.New("simulation references a missing graph")

// ErrGraphMismatch is returned when a graph and a simulation disagree on the population size.
var ErrGraphMismatch = errors.New("graph and simulation sizes differ")

// PopulationError reports a population size outside [Min, Max].
// It matches ErrInvalidPopulation with errors.Is.
type PopulationError struct {
	N, Min, Max int
}

func (e *PopulationError) Error() string {
	return fmt.Sprintf("n must be between %d and %d", e.Min, e.Max)
}

func (e *PopulationError) Is(target error) bool {
	return target == ErrInvalidPopulation
}
