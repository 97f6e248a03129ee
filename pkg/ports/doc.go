/*
Package ports defines the driven ports (interfaces) of the epinet service.

These interfaces decouple the simulation core from external implementations,
allowing the service to run with in-memory state on a laptop or coordinate
steps across replicas.

# Key Interfaces

  - GraphStore: Keeps generated contact graphs.
  - SimulationStore: Keeps simulation state between steps.
  - IDGenerator: Mints graph and simulation identifiers.
  - DistributedLocker: Serializes steps on the same simulation across instances.
  - SnapshotPublisher: Streams daily snapshots to downstream consumers.
*/
package ports
