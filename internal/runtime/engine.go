package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/aretw0/epinet/internal/logging"
	"github.com/aretw0/epinet/pkg/domain"
)

// Engine advances simulations one day at a time.
// It holds no per-simulation state; callers serialise steps on a given simulation.
type Engine struct {
	params domain.Params
	rng    *rand.Rand
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	now    func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// NewEngine creates an engine drawing every random number from rng.
func NewEngine(params domain.Params, rng *rand.Rand, opts ...EngineOption) *Engine {
	e := &Engine{
		params: params,
		rng:    rng,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Effective holds the per-day parameters derived from the lockdown flag.
type Effective struct {
	Contacts     int
	Transmission float64
	Isolation    float64
}

// Effective derives the contact quota, transmission and isolation probabilities.
// Isolation does not depend on the lockdown.
func (e *Engine) Effective(lockdown bool) Effective {
	factor := 0.0
	if lockdown {
		factor = e.params.LockdownStrength
	}
	contacts := int(math.RoundToEven(float64(e.params.ContactsPerDay) * math.Max(0, 1-1.15*factor)))
	return Effective{
		Contacts:     max(1, contacts),
		Transmission: clamp(e.params.BaseTransmission*math.Max(0, 1-1.08*factor), 0.001, 0.9),
		Isolation:    clamp(e.params.TestIsolateRate, 0, 0.8),
	}
}

// ReleaseDays is the number of days a quarantined agent stays in Q.
func (e *Engine) ReleaseDays() int {
	return max(4, int(math.RoundToEven(float64(e.params.QuarantineDays)*0.9)))
}

// Step simulates one day of sim over the adjacency lists adj.
// It reports whether the day counter advanced. A terminated simulation is left
// untouched apart from its end message.
func (e *Engine) Step(ctx context.Context, sim *domain.Simulation, adj [][]int) (bool, error) {
	if len(adj) != len(sim.Agents) {
		return false, fmt.Errorf("%w: %d nodes, %d agents", domain.ErrGraphMismatch, len(adj), len(sim.Agents))
	}

	if sim.Terminated() {
		if sim.Message == "" {
			e.terminate(ctx, sim)
		}
		return false, nil
	}

	start := e.now()
	day := sim.Day
	agents := sim.Agents
	before := sim.Counts()

	if !sim.Lockdown && before.I >= e.params.LockdownThreshold {
		sim.Lockdown = true
		sim.Message = fmt.Sprintf("Auto-lockdown imposed: infections reached %d (threshold %d).",
			before.I, e.params.LockdownThreshold)
		e.logger.Info("Lockdown imposed", "sim_id", sim.ID, "day", day, "infectious", before.I)
		if e.hooks.OnLockdown != nil {
			e.hooks.OnLockdown(ctx, e.policyEvent(domain.EventLockdown, sim))
		}
	}

	eff := e.Effective(sim.Lockdown)
	var tr domain.Transitions

	// E -> I
	for i := range agents {
		a := &agents[i]
		if a.State == domain.StateE && a.TExposed != domain.NoDay && day-a.TExposed >= e.params.IncubationDays {
			a.State = domain.StateI
			a.TInfected = day
			tr.Infectious++
		}
	}

	// I -> Q (testing)
	for i := range agents {
		a := &agents[i]
		if a.State == domain.StateI && e.rng.Float64() < eff.Isolation {
			a.State = domain.StateQ
			a.TQuarantined = day
			tr.Quarantined++
		}
	}

	// I -> R, Q -> R
	release := e.ReleaseDays()
	for i := range agents {
		a := &agents[i]
		switch {
		case a.State == domain.StateI && a.TInfected != domain.NoDay:
			if day-a.TInfected >= e.params.InfectiousDays {
				a.State = domain.StateR
				tr.Recovered++
			}
		case a.State == domain.StateQ && a.TQuarantined != domain.NoDay:
			if day-a.TQuarantined >= release {
				a.State = domain.StateR
				tr.Released++
			}
		}
	}

	// Transmission. Exposures are applied after the sweep so every contact
	// sees the susceptible state of the start of the sweep.
	var exposed []int
	for i := range agents {
		if agents[i].State != domain.StateI {
			continue
		}
		nbrs := adj[i]
		if len(nbrs) == 0 {
			continue
		}

		picks := nbrs
		if len(nbrs) > eff.Contacts {
			picks = sample(e.rng, nbrs, eff.Contacts)
		}

		for _, j := range picks {
			if agents[j].State != domain.StateS {
				continue
			}
			p := clamp(eff.Transmission*(0.7+0.6*e.rng.Float64()), 0, 1)
			if e.rng.Float64() < p {
				exposed = append(exposed, j)
			}
		}
	}

	for _, j := range exposed {
		b := &agents[j]
		if b.State == domain.StateS {
			b.State = domain.StateE
			b.TExposed = day
			tr.Exposed++
		}
	}

	sim.Day++
	after := sim.Counts()
	sim.Series = append(sim.Series, domain.Snapshot{Day: sim.Day, Counts: after})

	e.logger.Debug("Simulated day",
		"sim_id", sim.ID,
		"day", sim.Day,
		"S", after.S, "E", after.E, "I", after.I, "Q", after.Q, "R", after.R,
	)

	ended := after.Active() == 0 && after.R == sim.TotalEverInfected()
	if ended {
		e.terminate(ctx, sim)
	}

	if e.hooks.OnStep != nil {
		e.hooks.OnStep(ctx, &domain.StepEvent{
			EventBase:   domain.EventBase{Timestamp: e.now(), Type: domain.EventStep, SimulationID: sim.ID},
			Snapshot:    domain.Snapshot{Day: sim.Day, Counts: after},
			Delta:       domain.Diff(before, after),
			Transitions: tr,
			Lockdown:    sim.Lockdown,
			Message:     sim.Message,
			Duration:    e.now().Sub(start),
		})
	}

	return true, nil
}

func (e *Engine) terminate(ctx context.Context, sim *domain.Simulation) {
	sim.Message = fmt.Sprintf("Simulation ended: infections neutralized on day %d.", sim.Day)
	e.logger.Info("Simulation ended", "sim_id", sim.ID, "day", sim.Day, "total_infected", sim.TotalEverInfected())
	if e.hooks.OnTerminate != nil {
		e.hooks.OnTerminate(ctx, e.policyEvent(domain.EventTerminated, sim))
	}
}

func (e *Engine) policyEvent(t domain.EventType, sim *domain.Simulation) *domain.PolicyEvent {
	return &domain.PolicyEvent{
		EventBase: domain.EventBase{Timestamp: e.now(), Type: t, SimulationID: sim.ID},
		Day:       sim.Day,
		Message:   sim.Message,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
