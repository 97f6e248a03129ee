/*
Package session serializes access to simulations.

Steps mutate a simulation in place, so two concurrent steps on the same ID
would lose days. The Manager hands out one lock per simulation ID (garbage
collected by reference counting) and, when configured, also takes a
distributed lock so replicas sharing a backend do not interleave.
*/
package session
