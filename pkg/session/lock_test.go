package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/epinet/pkg/adapters/memory"
	"github.com/aretw0/epinet/pkg/domain"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		id := fmt.Sprintf("s_%d", i)
		_ = mgr.Save(ctx, &domain.Simulation{ID: id})
		_, _ = mgr.Update(ctx, id, func(context.Context, *domain.Simulation) error { return nil })
	}

	if lockCount := len(mgr.locks); lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Save and Update", lockCount)
	}
}
