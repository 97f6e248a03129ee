package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/epinet"
	"github.com/aretw0/epinet/internal/presentation/tui"
	"github.com/aretw0/epinet/pkg/domain"
)

// RunResult is the outcome of an in-process run.
type RunResult struct {
	Status     epinet.Status
	Simulation *domain.Simulation
	Report     tui.Report
}

// Simulate generates a population of n and steps it one day at a time until the
// epidemic ends or maxDays have passed. onDay, if set, is called after every simulated day.
func Simulate(ctx context.Context, svc *epinet.Service, n, maxDays int, onDay func(epinet.Status)) (*RunResult, error) {
	created, err := svc.Generate(ctx, n)
	if err != nil {
		return nil, err
	}

	status := created
	lockdownDay := domain.NoDay
	for status.Day < maxDays {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		prevDay := status.Day
		status, err = svc.Step(ctx, created.SimID, 1)
		if err != nil {
			return nil, fmt.Errorf("day %d: %w", prevDay, err)
		}
		if status.Lockdown && lockdownDay == domain.NoDay {
			lockdownDay = prevDay
		}
		if status.Day == prevDay {
			break
		}
		if onDay != nil {
			onDay(status)
		}
	}

	sim, err := svc.Simulation(ctx, created.SimID)
	if err != nil {
		return nil, err
	}
	g, err := svc.Graph(ctx, created.GraphID)
	if err != nil {
		return nil, err
	}

	status.GraphID = created.GraphID
	return &RunResult{
		Status:     status,
		Simulation: sim,
		Report:     tui.Summarize(sim, len(g.Edges), lockdownDay),
	}, nil
}
