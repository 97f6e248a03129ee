// Package redis provides a Redis-backed ports.DistributedLocker so that several
// epinet replicas can share simulations without interleaving their steps.
package redis
