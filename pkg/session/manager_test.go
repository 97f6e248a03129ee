package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/epinet/pkg/adapters/memory"
	"github.com/aretw0/epinet/pkg/domain"
	"github.com/aretw0/epinet/pkg/ports"
	"github.com/aretw0/epinet/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore delays loads to provoke lost updates if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s SlowStore) LoadSimulation(ctx context.Context, id string) (*domain.Simulation, error) {
	time.Sleep(2 * time.Millisecond)
	return s.Store.LoadSimulation(ctx, id)
}

func TestManager_UpdateSerializes(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(SlowStore{memory.NewStore()})
	require.NoError(t, mgr.Save(ctx, &domain.Simulation{ID: "s_race"}))

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.Update(ctx, "s_race", func(_ context.Context, sim *domain.Simulation) error {
				sim.Day++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sim, err := mgr.Load(ctx, "s_race")
	require.NoError(t, err)
	assert.Equal(t, 20, sim.Day, "every update must observe the previous one")
}

func TestManager_UpdateErrorDiscards(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(memory.NewStore())
	require.NoError(t, mgr.Save(ctx, &domain.Simulation{ID: "s_1"}))

	boom := errors.New("boom")
	_, err := mgr.Update(ctx, "s_1", func(_ context.Context, sim *domain.Simulation) error {
		sim.Day = 7
		return boom
	})
	assert.ErrorIs(t, err, boom)

	sim, err := mgr.Load(ctx, "s_1")
	require.NoError(t, err)
	assert.Equal(t, 0, sim.Day)
}

func TestManager_UpdateNotFound(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	_, err := mgr.Update(context.Background(), "missing", func(context.Context, *domain.Simulation) error {
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrSimulationNotFound)
}

type countingLocker struct {
	locks   atomic.Int32
	unlocks atomic.Int32
	ttl     time.Duration
	err     error
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.ttl = ttl
	l.locks.Add(1)
	return func(context.Context) error {
		l.unlocks.Add(1)
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("Lock and Release", func(t *testing.T) {
		locker := &countingLocker{}
		mgr := session.NewManager(memory.NewStore(),
			session.WithLocker(locker),
			session.WithLockTTL(5*time.Second),
		)

		require.NoError(t, mgr.Save(ctx, &domain.Simulation{ID: "s_1"}))
		_, err := mgr.Load(ctx, "s_1")
		require.NoError(t, err)

		assert.Equal(t, int32(2), locker.locks.Load())
		assert.Equal(t, int32(2), locker.unlocks.Load())
		assert.Equal(t, 5*time.Second, locker.ttl)
	})

	t.Run("Acquire Failure", func(t *testing.T) {
		locker := &countingLocker{err: errors.New("unreachable")}
		mgr := session.NewManager(memory.NewStore(), session.WithLocker(locker))

		err := mgr.Save(ctx, &domain.Simulation{ID: "s_1"})
		assert.ErrorContains(t, err, "distributed lock")

		ids, err := mgr.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, ids, "nothing may be written without the lock")
	})
}
