// Package cli wires configuration into a running Service for the epinet commands.
package cli
