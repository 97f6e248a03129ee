package epinet

import (
	"context"

	"github.com/aretw0/epinet/pkg/domain"
)

// pendingEvents queues the lifecycle events of one step until the simulation
// has been saved.
type pendingEvents struct {
	fire []func(context.Context)
}

type pendingKey struct{}

func withPending(ctx context.Context) (context.Context, *pendingEvents) {
	p := &pendingEvents{}
	return context.WithValue(ctx, pendingKey{}, p), p
}

// flush runs the queued hooks in order. ctx must not carry p.
func (p *pendingEvents) flush(ctx context.Context) {
	for _, f := range p.fire {
		f(ctx)
	}
	p.fire = nil
}

// deferHooks wraps h so that calls made under a pending context are queued
// instead of run.
func deferHooks(h domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnGraphGenerated: deferred(h.OnGraphGenerated),
		OnStep:           deferred(h.OnStep),
		OnLockdown:       deferred(h.OnLockdown),
		OnTerminate:      deferred(h.OnTerminate),
	}
}

func deferred[E any](fn func(context.Context, E)) func(context.Context, E) {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context, e E) {
		if p, ok := ctx.Value(pendingKey{}).(*pendingEvents); ok {
			p.fire = append(p.fire, func(ctx context.Context) { fn(ctx, e) })
			return
		}
		fn(ctx, e)
	}
}
