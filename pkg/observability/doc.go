/*
Package observability turns simulation lifecycle hooks into Prometheus metrics.

Metrics.Hooks returns domain.LifecycleHooks, so it composes with any other
hooks the caller installs:

	hooks := custom.Merge(metrics.Hooks())
*/
package observability
