package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/epinet/internal/logging"
	"github.com/aretw0/epinet/pkg/domain"
	"github.com/aretw0/epinet/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed replica can hold a distributed lock.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates simulation access, ensuring safe concurrent steps.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.SimulationStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager over the given simulation store.
func NewManager(store ports.SimulationStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Load retrieves a simulation from the store.
func (m *Manager) Load(ctx context.Context, id string) (*domain.Simulation, error) {
	var sim *domain.Simulation
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		sim, err = m.store.LoadSimulation(ctx, id)
		return err
	})
	return sim, err
}

// Save persists the simulation.
func (m *Manager) Save(ctx context.Context, sim *domain.Simulation) error {
	return m.WithLock(ctx, sim.ID, func(ctx context.Context) error {
		return m.store.SaveSimulation(ctx, sim)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.ListSimulations(ctx)
}

// Update loads the simulation, applies fn and saves the result, all under the lock.
// Nothing is saved if fn returns an error.
func (m *Manager) Update(ctx context.Context, id string, fn func(context.Context, *domain.Simulation) error) (*domain.Simulation, error) {
	var sim *domain.Simulation
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		loaded, err := m.store.LoadSimulation(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(ctx, loaded); err != nil {
			return err
		}
		if err := m.store.SaveSimulation(ctx, loaded); err != nil {
			return fmt.Errorf("failed to save simulation: %w", err)
		}
		sim = loaded
		return nil
	})
	return sim, err
}

// WithLock executes a function while holding the lock for the simulation.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"sim_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
